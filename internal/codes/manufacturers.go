// Package codes holds the static lookup tables for recorder manufacturers and
// event codes.
package codes

import "strings"

// ExperimentalPrefix marks codes of recorders that are not IGC-approved.
const ExperimentalPrefix = 'X'

// LookupManufacturer returns the manufacturer name for a three-letter code
// and whether the code belongs to an approved manufacturer. Unknown codes
// return an empty name; approval depends only on the code itself.
func LookupManufacturer(code string) (name string, approved bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", false
	}
	return manufacturers[code], code[0] != ExperimentalPrefix
}

// ManufacturerCount returns the number of known manufacturer codes.
func ManufacturerCount() int {
	return len(manufacturers)
}
