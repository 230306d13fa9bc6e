package export

import (
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"igc_parser/internal/igc"
)

// GeoJSON builds a feature collection holding the track as a LineString
// and each usable task waypoint as a Point.
func GeoJSON(f *igc.Flight) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(f.Fixes) > 0 {
		line := make(orb.LineString, len(f.Fixes))
		for i, fx := range f.Fixes {
			line[i] = orb.Point{fx.Longitude, fx.Latitude}
		}
		track := geojson.NewFeature(line)
		track.Properties["kind"] = "track"
		track.Properties["fixes"] = len(f.Fixes)
		if f.Identification != nil {
			track.Properties["manufacturer"] = f.Identification.ManufacturerID
			track.Properties["serial"] = f.Identification.SerialNumber
		}
		if f.Header != nil {
			if f.Header.Pilot != "" {
				track.Properties["pilot"] = f.Header.Pilot
			}
			if f.Header.Date != "" {
				track.Properties["date"] = f.Header.Date
			}
		}
		if s := f.Statistics; s != nil {
			track.Properties["distance_m"] = s.TotalDistance
			track.Properties["duration_s"] = s.Duration
			track.Properties["max_speed_kmh"] = s.MaxSpeed
			if s.Bounds != nil {
				track.BBox = geojson.BBox{s.Bounds.MinLongitude, s.Bounds.MinLatitude, s.Bounds.MaxLongitude, s.Bounds.MaxLatitude}
			}
		}
		fc.Append(track)
	}

	if t := f.Task; t != nil {
		for i, wp := range t.Waypoints {
			p := geojson.NewFeature(orb.Point{wp.Longitude, wp.Latitude})
			p.Properties["kind"] = "waypoint"
			p.Properties["role"] = waypointRole(t, i)
			p.Properties["name"] = wp.Name
			p.Properties["line"] = wp.Line
			fc.Append(p)
		}
	}
	return fc
}

// WriteGeoJSON encodes GeoJSON(f) to w.
func WriteGeoJSON(w io.Writer, f *igc.Flight) error {
	data, err := GeoJSON(f).MarshalJSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
