// Package export renders a parsed flight as JSON, GeoJSON or KML.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"igc_parser/internal/igc"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
	FormatKML     Format = "kml"
)

// ParseFormat accepts the names above, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatGeoJSON, FormatKML:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json, geojson or kml)", s)
}

// Write encodes f to w. name titles the KML document.
func Write(w io.Writer, format Format, f *igc.Flight, name string) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, f, true)
	case FormatGeoJSON:
		return WriteGeoJSON(w, f)
	case FormatKML:
		return WriteKML(w, NewKML(name, FlightFolder(name, f)))
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteJSON writes v as JSON followed by a newline.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// altitude picks the GNSS altitude, falling back to pressure altitude for
// recorders that log zero GNSS altitude.
func altitude(fx igc.Fix) int {
	if fx.GNSSAltitude != 0 {
		return fx.GNSSAltitude
	}
	return fx.PressureAltitude
}

func waypointRole(t *igc.Task, i int) string {
	switch {
	case i == 0 && t.Start != nil && t.Start.Line == t.Waypoints[i].Line:
		return "start"
	case i == len(t.Waypoints)-1 && t.Finish != nil && t.Finish.Line == t.Waypoints[i].Line:
		return "finish"
	}
	return "turnpoint"
}
