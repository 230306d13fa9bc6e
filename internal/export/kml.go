package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"igc_parser/internal/igc"
)

// KML structures for XML marshalling.
// These follow the KML 2.2 specification: https://developers.google.com/kml/documentation/kmlreference

// KML is the root element of a KML document.
type KML struct {
	XMLName   xml.Name `xml:"kml"`
	Namespace string   `xml:"xmlns,attr"`
	Document  Document `xml:"Document"`
}

// Document contains the document metadata and one folder per flight.
type Document struct {
	Name        string   `xml:"name"`
	Description string   `xml:"description,omitempty"`
	Styles      []Style  `xml:"Style,omitempty"`
	Folders     []Folder `xml:"Folder"`
}

// Folder groups the placemarks of one flight.
type Folder struct {
	Name        string      `xml:"name"`
	Description string      `xml:"description,omitempty"`
	Placemarks  []Placemark `xml:"Placemark"`
}

// Style defines the visual appearance of features.
type Style struct {
	ID        string     `xml:"id,attr"`
	IconStyle *IconStyle `xml:"IconStyle,omitempty"`
	LineStyle *LineStyle `xml:"LineStyle,omitempty"`
}

type IconStyle struct {
	Scale float64 `xml:"scale,omitempty"`
	Icon  Icon    `xml:"Icon"`
}

type Icon struct {
	Href string `xml:"href"`
}

// LineStyle colours are aabbggrr hex.
type LineStyle struct {
	Color string  `xml:"color"`
	Width float64 `xml:"width"`
}

// Placemark carries either a Point or a LineString.
type Placemark struct {
	Name         string        `xml:"name"`
	Description  string        `xml:"description,omitempty"`
	StyleURL     string        `xml:"styleUrl,omitempty"`
	Point        *Point        `xml:"Point,omitempty"`
	LineString   *LineString   `xml:"LineString,omitempty"`
	ExtendedData *ExtendedData `xml:"ExtendedData,omitempty"`
}

type Point struct {
	Coordinates string `xml:"coordinates"` // Format: lon,lat,altitude
}

type LineString struct {
	AltitudeMode string `xml:"altitudeMode,omitempty"`
	Coordinates  string `xml:"coordinates"`
}

type ExtendedData struct {
	Data []Data `xml:"Data"`
}

type Data struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

const (
	trackStyle    = "trackStyle"
	waypointStyle = "waypointStyle"
)

// NewKML wraps folders in a document with the shared styles.
func NewKML(name string, folders ...Folder) KML {
	return KML{
		Namespace: "http://www.opengis.net/kml/2.2",
		Document: Document{
			Name:        name,
			Description: fmt.Sprintf("Generated %s.", time.Now().UTC().Format("2006-01-02 15:04:05")),
			Styles: []Style{
				{ID: trackStyle, LineStyle: &LineStyle{Color: "ff0000ff", Width: 2}},
				{
					ID: waypointStyle,
					IconStyle: &IconStyle{
						Scale: 0.8,
						Icon:  Icon{Href: "http://maps.google.com/mapfiles/kml/shapes/triangle.png"},
					},
				},
			},
			Folders: folders,
		},
	}
}

// FlightFolder renders the track and the usable task waypoints of f.
func FlightFolder(name string, f *igc.Flight) Folder {
	folder := Folder{Name: name}
	if f.Header != nil && f.Header.Pilot != "" {
		folder.Description = "Pilot: " + f.Header.Pilot
	}

	if len(f.Fixes) > 0 {
		coords := make([]string, len(f.Fixes))
		for i, fx := range f.Fixes {
			coords[i] = fmt.Sprintf("%.6f,%.6f,%d", fx.Longitude, fx.Latitude, altitude(fx))
		}
		pm := Placemark{
			Name:       "Track",
			StyleURL:   "#" + trackStyle,
			LineString: &LineString{AltitudeMode: "absolute", Coordinates: strings.Join(coords, " ")},
		}
		if s := f.Statistics; s != nil {
			pm.Description = fmt.Sprintf("Distance: %s\nDuration: %s\nMax speed: %s",
				s.TotalDistanceText, s.DurationText, s.MaxSpeedText)
			pm.ExtendedData = &ExtendedData{Data: []Data{
				{Name: "fix_count", Value: strconv.Itoa(s.FixCount)},
				{Name: "distance_m", Value: strconv.FormatFloat(s.TotalDistance, 'f', 0, 64)},
				{Name: "duration_s", Value: strconv.Itoa(s.Duration)},
			}}
		}
		folder.Placemarks = append(folder.Placemarks, pm)
	}

	if t := f.Task; t != nil {
		for i, wp := range t.Waypoints {
			role := waypointRole(t, i)
			name := wp.Name
			if name == "" {
				name = fmt.Sprintf("%s %d", role, i+1)
			}
			folder.Placemarks = append(folder.Placemarks, Placemark{
				Name:     name,
				StyleURL: "#" + waypointStyle,
				Point:    &Point{Coordinates: fmt.Sprintf("%.6f,%.6f,0", wp.Longitude, wp.Latitude)},
				ExtendedData: &ExtendedData{Data: []Data{
					{Name: "role", Value: role},
					{Name: "line", Value: strconv.Itoa(wp.Line)},
				}},
			})
		}
	}
	return folder
}

// WriteKML writes doc with the XML header.
func WriteKML(w io.Writer, doc KML) error {
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("generate KML: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
