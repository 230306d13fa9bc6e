// Package header parses H records into igc.Header values.
package header

import "igc_parser/internal/grammar"

// Local patterns for header grammars.
var Patterns = map[string]string{
	"H":   `^H{HEADER_SRC}`,
	"KEY": `[^:]*:\s*`, // long name and separator, e.g. "PILOTINCHARGE:"
}

// keyed builds the two forms of a header: with a long name and colon
// (HFPLTPILOTINCHARGE:John) and bare (HFPLTJohn).
func keyed(id, tlc string) []grammar.Field {
	return []grammar.Field{
		{ID: id, Search: `{H}` + tlc + `{KEY}(.*)`},
		{ID: id, Search: `{H}` + tlc + `(.+)`},
	}
}

func alternatives() []grammar.Field {
	alts := []grammar.Field{
		// HFDTE160701, HFDTEDATE:160701,01
		{ID: "date", Search: `{H}DTE(?:DATE:)?(\S{6})`, Validate: `{DATE6}`},
		{ID: "accuracy", Search: `{H}FXA(?:[^:\d]*:)?\s*(\S+)`, Validate: `{DIGITS}`},
		// GPSRECEIVER:u-blox before the generic GPS form.
		{ID: "gps_receiver", Search: `{H}GPS(?:RECEIVER)?:\s*(.*)`},
		{ID: "gps_receiver", Search: `{H}GPS(.+)`},
	}
	for _, k := range []struct{ id, tlc string }{
		{"pilot", "PLT"},
		{"second_pilot", "CM2"},
		{"glider_type", "GTY"},
		{"glider_id", "GID"},
		{"firmware_version", "RFW"},
		{"hardware_version", "RHW"},
		{"logger_type", "FTY"},
		{"pressure_sensor", "PRS"},
		{"competition_id", "CID"},
		{"competition_class", "CCL"},
		{"time_zone", "TZN"},
		{"site", "SIT"},
	} {
		alts = append(alts, keyed(k.id, k.tlc)...)
	}
	return alts
}

// Fields defines an H record. The header key decides which alternative
// applies, so every alternative is tried against the whole line.
// Example: HFPLTPILOTINCHARGE:John Doe
var Fields = []grammar.Field{
	{ID: "header", Alternatives: alternatives()},
	{ID: "flight_number", Alternatives: []grammar.Field{
		{ID: "flight_number", Search: `{H}DTE(?:DATE:)?\S{6},\s*(\S+)`, Validate: `{DIGITS}`},
	}},
}
