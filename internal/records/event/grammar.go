// Package event parses E records.
package event

import "igc_parser/internal/grammar"

// Fields defines an E record.
// Example: E120345PEV
// Example: E130212ATS102312
var Fields = []grammar.Field{
	{ID: "time", Search: `E(.{6})`, Validate: `{TIME6}`, Required: true},
	{ID: "code", Search: `({EVENT_CODE})`, Required: true},
	{ID: "data", Remainder: true},
}
