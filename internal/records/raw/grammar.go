// Package raw parses the records kept as opaque data (K and F) and the
// records the flight ignores (G and L).
package raw

import "igc_parser/internal/grammar"

// DataFields defines a K record.
// Example: K16024800090
var DataFields = []grammar.Field{
	{ID: "time", Search: `K(.{6})`, Validate: `{TIME6}`, Required: true},
	{ID: "data", Remainder: true},
}

// ConstellationFields defines an F record: time and the ids of the
// satellites in use.
// Example: F160240040609123624221821
var ConstellationFields = []grammar.Field{
	{ID: "time", Search: `F(.{6})`, Validate: `{TIME6}`, Required: true},
	{ID: "data", Remainder: true},
}

// OpaqueFields captures everything after the leading character.
var OpaqueFields = []grammar.Field{
	{ID: "data", Search: `.(.*)`},
}
