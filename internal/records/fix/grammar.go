// Package fix parses the B record: a timed position fix.
package fix

import (
	"fmt"
	"sort"
	"strings"

	"igc_parser/internal/grammar"
	"igc_parser/internal/igc"
)

// Fields defines the fixed part of a B record (35 bytes).
// Example: B1101355206343N00006198WA0058700558
// Fields: time, latitude, N/S, longitude, E/W, validity, pressure alt, GNSS alt, extensions
var Fields = []grammar.Field{
	{ID: "time", Search: `B(.{6})`, Validate: `{TIME6}`, Required: true},
	{ID: "latitude", Search: `.{7}`, Validate: `{LAT}`, Required: true},
	{ID: "latitude_hemisphere", Search: `.`, Validate: `{LAT_DIR}`, Required: true},
	{ID: "longitude", Search: `.{8}`, Validate: `{LON}`, Required: true},
	{ID: "longitude_hemisphere", Search: `.`, Validate: `{LON_DIR}`, Required: true},
	{ID: "validity", Search: `.`, Validate: `{VALIDITY}`, Required: true},
	{ID: "pressure_altitude", Search: `.{5}`, Validate: `{ALT5}`, Required: true},
	{ID: "gnss_altitude", Search: `.{5}`, Validate: `{ALT5}`, Required: true},
	{ID: "extensions", Remainder: true},
}

// fixedLength is the byte count of the fixed part; I record positions are
// 1-based, so the first extension byte is position fixedLength+1.
const fixedLength = 35

// DefaultExtensionFields read the trailing bytes of a B record when no I
// record declared them. A trailer that is not numeric leaves them unset.
var DefaultExtensionFields = []grammar.Field{
	{ID: "fxa", Search: `(\d{3})`, Validate: `\d{3}`},
	{ID: "siu", Search: `(\d{2})`, Validate: `\d{2}`},
	{ID: "enl", Search: `(\d{3})`, Validate: `\d{3}`},
}

// numericCodes are extension codes whose values must be numbers.
var numericCodes = map[string]bool{
	"FXA": true, "SIU": true, "ENL": true, "MOP": true, "RPM": true,
	"TAS": true, "IAS": true, "GSP": true, "HDT": true, "HDM": true, "TRT": true,
}

// ExtensionFields builds the field list for the extensions declared by an
// I record. Overlapping or out-of-range declarations are skipped.
func ExtensionFields(exts []igc.Extension) []grammar.Field {
	sorted := make([]igc.Extension, len(exts))
	copy(sorted, exts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var fields []grammar.Field
	cursor := fixedLength
	for _, ext := range sorted {
		start := ext.Start - 1
		width := ext.End - ext.Start + 1
		if start < cursor || width <= 0 {
			continue
		}
		f := grammar.Field{
			ID:     strings.ToLower(ext.Code),
			Search: fmt.Sprintf(`.{%d}(.{%d})`, start-cursor, width),
		}
		if numericCodes[ext.Code] {
			f.Validate = `{SIGNED_DIGITS}`
		}
		fields = append(fields, f)
		cursor = start + width
	}
	return fields
}
