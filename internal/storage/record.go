package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"igc_parser/internal/igc"
)

// flightNamespace scopes the name-based flight IDs.
var flightNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("igc-parser:flight"))

// FlightID derives a stable ID from the raw log bytes, so storing the same
// log twice replaces the first copy.
func FlightID(raw []byte) uuid.UUID {
	return uuid.NewSHA1(flightNamespace, raw)
}

// FlightRecord is a row of the flights table plus its child rows.
type FlightRecord struct {
	ID           uuid.UUID
	Manufacturer string
	Serial       string
	Pilot        string
	GliderID     string
	Date         string // YYYY-MM-DD, empty when unknown
	Start        *time.Time
	End          *time.Time
	FixCount     int
	DistanceM    float64
	DurationS    int
	MaxSpeed     float64
	RawJSON      string

	Fixes  []FixRow
	Events []EventRow
}

// FixRow is one accepted fix.
type FixRow struct {
	Seq         int
	Timestamp   time.Time
	Latitude    float64
	Longitude   float64
	PressureAlt int
	GNSSAlt     int
	Speed       float64
}

// EventRow is one event. Timestamp is nil when the log had no date.
type EventRow struct {
	Seq       int
	Timestamp *time.Time
	Code      string
	Category  string
	Data      string
}

// NewFlightRecord flattens a parsed flight for storage. raw is the source
// log and only feeds the ID.
func NewFlightRecord(f *igc.Flight, raw []byte) (FlightRecord, error) {
	js, err := json.Marshal(f)
	if err != nil {
		return FlightRecord{}, fmt.Errorf("marshal flight: %w", err)
	}

	rec := FlightRecord{
		ID:       FlightID(raw),
		FixCount: len(f.Fixes),
		RawJSON:  string(js),
	}
	if id := f.Identification; id != nil {
		rec.Manufacturer = id.ManufacturerID
		rec.Serial = id.SerialNumber
	}
	if h := f.Header; h != nil {
		rec.Pilot = h.Pilot
		rec.GliderID = h.GliderID
	}
	if d, ok := f.Date(); ok {
		rec.Date = d.Format(time.DateOnly)
	}
	if s := f.Statistics; s != nil {
		rec.Start, rec.End = s.Start, s.End
		rec.DistanceM = s.TotalDistance
		rec.DurationS = s.Duration
		rec.MaxSpeed = s.MaxSpeed
	}

	rec.Fixes = make([]FixRow, len(f.Fixes))
	for i, fx := range f.Fixes {
		rec.Fixes[i] = FixRow{
			Seq:         i,
			Timestamp:   fx.Timestamp,
			Latitude:    fx.Latitude,
			Longitude:   fx.Longitude,
			PressureAlt: fx.PressureAltitude,
			GNSSAlt:     fx.GNSSAltitude,
			Speed:       fx.Speed,
		}
	}
	rec.Events = make([]EventRow, len(f.Events))
	for i, ev := range f.Events {
		rec.Events[i] = EventRow{
			Seq:       i,
			Timestamp: ev.Timestamp,
			Code:      ev.Code,
			Category:  ev.Category,
			Data:      ev.Data,
		}
	}
	return rec, nil
}

// Flight decodes the stored JSON document.
func (r FlightRecord) Flight() (*igc.Flight, error) {
	var f igc.Flight
	if err := json.Unmarshal([]byte(r.RawJSON), &f); err != nil {
		return nil, fmt.Errorf("decode flight %s: %w", r.ID, err)
	}
	return &f, nil
}
