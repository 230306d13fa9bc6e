// Package extdecl parses I and J records, which declare the byte ranges of
// the optional content at the end of B and K records.
package extdecl

import "igc_parser/internal/grammar"

// Fields defines both I and J records.
// Example: I033638FXA3940SIU4143ENL
var Fields = []grammar.Field{
	{ID: "count", Search: `[IJ](.{2})`, Validate: `{COUNT2}`, Required: true},
	{ID: "declarations", Remainder: true},
}
