package flight

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"igc_parser/internal/geodesy"
	"igc_parser/internal/igc"
	"igc_parser/internal/registry"
)

const (
	secondsPerDay = 24 * 60 * 60
	// A fix more than this far behind the previous one is taken to be on
	// the next day.
	rolloverThreshold = 12 * 60 * 60
)

// builder folds parsed records into a Flight and keeps the running totals
// of the accepted fixes.
type builder struct {
	opts   Options
	flight *igc.Flight
	date   time.Time

	fixExtensions  []igc.Extension
	dataExtensions []igc.Extension

	// Running totals over accepted fixes.
	last          *igc.Fix
	lastAbs       int // seconds since date 00:00 of the last accepted fix
	dayOffset     int
	firstQNH      int
	totalDistance float64
	totalTime     int
	maxSpeed      float64
	rejected      int
}

func newBuilder(opts Options) *builder {
	return &builder{
		opts:   opts,
		flight: &igc.Flight{Fixes: []igc.Fix{}, Events: []igc.Event{}},
		date:   dateOnly(opts.FallbackDate),
	}
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// add routes rec by kind. Every record counts as an accepted line, a
// rejected fix included.
func (b *builder) add(rec registry.Record) {
	f := b.flight
	f.Lines++

	switch r := rec.(type) {
	case *igc.Identification:
		f.Identification = r
	case *igc.Header:
		if f.Header == nil {
			f.Header = &igc.Header{}
		}
		f.Header.Merge(*r)
		if d, ok := f.Header.FlightDate(); ok && b.last == nil {
			b.date = d
		}
	case *igc.Fix:
		b.addFix(r)
	case *igc.Declaration:
		t := b.task()
		if t.Declaration == nil {
			t.Declaration = r
		}
	case *igc.Waypoint:
		t := b.task()
		t.Declared = append(t.Declared, *r)
		if !r.IsStartFinish {
			t.Waypoints = append(t.Waypoints, *r)
		}
	case *igc.Event:
		f.Events = append(f.Events, *r)
	case *igc.ExtensionDecl:
		switch r.Kind {
		case igc.KindFixExtension:
			f.FixExtensions = append(f.FixExtensions, *r)
			b.fixExtensions = r.Extensions
		case igc.KindDataExtensionDecl:
			f.DataExtensions = append(f.DataExtensions, *r)
			b.dataExtensions = r.Extensions
		}
	case *igc.DataRecord:
		switch r.Kind {
		case igc.KindDataExtension:
			f.DataRecords = append(f.DataRecords, *r)
		case igc.KindSatelliteConstellation:
			f.Constellations = append(f.Constellations, *r)
		}
	default:
		panic(fmt.Sprintf("flight builder: unhandled record %T", rec))
	}
}

func (b *builder) task() *igc.Task {
	if b.flight.Task == nil {
		b.flight.Task = &igc.Task{Declared: []igc.Waypoint{}, Waypoints: []igc.Waypoint{}, Turnpoints: []igc.Waypoint{}}
	}
	return b.flight.Task
}

// addFix accepts or rejects a fix against the last accepted one.
func (b *builder) addFix(fix *igc.Fix) {
	abs := b.dayOffset*secondsPerDay + fix.SecondsOfDay

	if b.last == nil {
		b.firstQNH = fix.PressureAltitude
		b.accept(fix, abs, 0, 0, 0)
		return
	}

	if abs < b.lastAbs {
		if b.lastAbs-abs > rolloverThreshold {
			b.dayOffset++
			abs += secondsPerDay
		} else {
			b.reject(&igc.Rejection{Line: fix.Line, Reason: "time goes backwards"})
			return
		}
	}

	elapsed := abs - b.lastAbs
	dist := geodesy.Distance(b.last.Latitude, b.last.Longitude, fix.Latitude, fix.Longitude)
	speed := geodesy.Speed(dist, elapsed)
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		b.reject(&igc.Rejection{Line: fix.Line, Reason: "non-finite speed", Speed: speed})
		return
	}
	if speed > b.opts.MaxSpeed {
		b.reject(&igc.Rejection{Line: fix.Line, Reason: fmt.Sprintf("speed %.1f km/h above %.0f km/h", speed, b.opts.MaxSpeed), Speed: speed})
		return
	}

	b.accept(fix, abs, dist, elapsed, speed)
}

func (b *builder) accept(fix *igc.Fix, abs int, dist float64, elapsed int, speed float64) {
	fix.Timestamp = b.date.Add(time.Duration(abs) * time.Second)
	fix.Distance = dist
	fix.Elapsed = elapsed
	fix.Speed = speed
	fix.QFE = fix.PressureAltitude - b.firstQNH
	if !b.opts.WithRaw {
		fix.Raw = ""
	}

	b.totalDistance += dist
	b.totalTime += elapsed
	if speed > b.maxSpeed {
		b.maxSpeed = speed
	}

	b.flight.Fixes = append(b.flight.Fixes, *fix)
	b.last = &b.flight.Fixes[len(b.flight.Fixes)-1]
	b.lastAbs = abs
}

func (b *builder) reject(r *igc.Rejection) {
	b.rejected++
	b.opts.Logger.Debug("fix rejected",
		slog.Int("line", r.Line),
		slog.String("reason", r.Reason),
		slog.Float64("speed", r.Speed),
	)
}
