// Package ident parses the A record: recorder manufacturer and serial.
package ident

import "igc_parser/internal/grammar"

// Fields defines the A record.
// Example: ALXVK9C-FLIGHT:1
// Fields: manufacturer code, serial (stops at '-'), free text
var Fields = []grammar.Field{
	{ID: "manufacturer_id", Search: `A(.{3})`, Validate: `{TLC}`, Required: true},
	{ID: "serial_number", Search: `({SERIAL})(?:-|$)`, Validate: `{SERIAL}`},
	{ID: "additional_data", Remainder: true},
}
