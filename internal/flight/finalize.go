package flight

import (
	"log/slog"
	"sort"
	"time"

	"igc_parser/internal/codes"
	"igc_parser/internal/geodesy"
	"igc_parser/internal/igc"
	"igc_parser/internal/units"
)

// finalize runs the post-pass steps in order. None of them fail: a missing
// input skips its section.
func (b *builder) finalize() *igc.Flight {
	f := b.flight
	fmtr := b.opts.formatter()

	finalizeTask(f.Task, fmtr)
	if f.Task != nil && len(f.Fixes) > 0 {
		f.Turnpoints = ValidateTurnpoints(f, b.opts.TurnpointRadius)
	}
	finalizeEvents(f, b.opts.FallbackDate)
	f.Statistics = b.statistics(fmtr)

	attrs := []any{slog.Int("lines", f.Lines), slog.Int("fixes", len(f.Fixes)), slog.Int("rejected", b.rejected), slog.Int("events", len(f.Events))}
	if f.Turnpoints != nil {
		attrs = append(attrs, slog.Int("turnpoints_validated", f.Turnpoints.Validated))
	}
	b.opts.Logger.Debug("flight finalized", attrs...)
	return f
}

func finalizeTask(t *igc.Task, fmtr *units.Formatter) {
	if t == nil {
		return
	}

	if n := len(t.Declared); n >= 2 {
		start, finish := t.Declared[0], t.Declared[n-1]
		t.Start, t.Finish = &start, &finish
		for _, wp := range t.Declared[1 : n-1] {
			if !wp.IsStartFinish {
				t.Turnpoints = append(t.Turnpoints, wp)
			}
		}
	}

	if len(t.Waypoints) < 2 {
		return
	}
	var total float64
	for i := 1; i < len(t.Waypoints); i++ {
		a, b := t.Waypoints[i-1], t.Waypoints[i]
		total += geodesy.Distance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	}
	km := units.Kilometres(total)
	t.Distance = &total
	t.DistanceKm = &km
	t.DistanceText = fmtr.Distance(total)
}

// eventDay returns the date events are anchored to: the first fix's date,
// the header date, then the fallback date. Fixes are dated by whatever date
// was known when they were read, which may predate a late header.
func eventDay(f *igc.Flight, fallback time.Time) (time.Time, bool) {
	if len(f.Fixes) > 0 {
		ts := f.Fixes[0].Timestamp
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
	}
	if d, ok := f.Date(); ok {
		return d, true
	}
	if !fallback.IsZero() {
		return dateOnly(fallback), true
	}
	return time.Time{}, false
}

func finalizeEvents(f *igc.Flight, fallback time.Time) {
	if len(f.Events) == 0 {
		return
	}

	if day, ok := eventDay(f, fallback); ok {
		// Events logged after midnight follow the fix track onto the next day.
		firstFix := -1
		if len(f.Fixes) > 0 {
			firstFix = f.Fixes[0].SecondsOfDay
		}
		for i := range f.Events {
			ev := &f.Events[i]
			secs := ev.SecondsOfDay
			if firstFix >= 0 && firstFix-secs > rolloverThreshold {
				secs += secondsPerDay
			}
			ts := day.Add(time.Duration(secs) * time.Second)
			ev.Timestamp = &ts
		}
	}

	sort.SliceStable(f.Events, func(i, j int) bool {
		a, b := f.Events[i].Timestamp, f.Events[j].Timestamp
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		}
		return a.Before(*b)
	})

	summary := &igc.EventSummary{}
	groupIdx := make(map[string]int)
	for i := range f.Events {
		ev := f.Events[i]
		switch codes.Category(ev.Category) {
		case codes.CategoryStart:
			if summary.FirstStart == nil {
				summary.FirstStart = &ev
			}
		case codes.CategoryFinish, codes.CategoryLanding:
			summary.LastFinish = &ev
		case codes.CategoryTakeoff:
			if summary.FirstTakeoff == nil {
				summary.FirstTakeoff = &ev
			}
		}

		gi, ok := groupIdx[ev.Category]
		if !ok {
			gi = len(summary.Groups)
			groupIdx[ev.Category] = gi
			summary.Groups = append(summary.Groups, igc.EventGroup{
				Category:    ev.Category,
				Description: codes.DescribeCategory(codes.Category(ev.Category)),
			})
		}
		g := &summary.Groups[gi]
		g.Count++
		g.Events = append(g.Events, ev)
	}
	f.EventSummary = summary
}

func (b *builder) statistics(fmtr *units.Formatter) *igc.Statistics {
	fixes := b.flight.Fixes
	if len(fixes) == 0 {
		return nil
	}

	first, last := fixes[0], fixes[len(fixes)-1]
	s := &igc.Statistics{
		FixCount:      len(fixes),
		RejectedFixes: b.rejected,
		MinQNH:        first.PressureAltitude,
		MaxQNH:        first.PressureAltitude,
		MinQFE:        first.QFE,
		MaxQFE:        first.QFE,
		MinGPS:        first.GNSSAltitude,
		MaxGPS:        first.GNSSAltitude,
		TotalDistance: b.totalDistance,
		TotalTime:     b.totalTime,
		Duration:      int(last.Timestamp.Sub(first.Timestamp) / time.Second),
		MaxSpeed:      units.Round2(b.maxSpeed),
	}

	points := make([][2]float64, 0, len(fixes))
	for _, fx := range fixes {
		s.MinQNH = min(s.MinQNH, fx.PressureAltitude)
		s.MaxQNH = max(s.MaxQNH, fx.PressureAltitude)
		s.MinQFE = min(s.MinQFE, fx.QFE)
		s.MaxQFE = max(s.MaxQFE, fx.QFE)
		s.MinGPS = min(s.MinGPS, fx.GNSSAltitude)
		s.MaxGPS = max(s.MaxGPS, fx.GNSSAltitude)
		points = append(points, [2]float64{fx.Latitude, fx.Longitude})
	}

	if b.totalTime > 0 {
		s.AverageSpeed = units.Round2(geodesy.Speed(b.totalDistance, b.totalTime))
	}
	s.TotalDistanceKm = units.Kilometres(b.totalDistance)
	s.TotalDistanceText = fmtr.Distance(b.totalDistance)
	s.DurationText = fmtr.Duration(s.Duration)
	s.AverageSpeedText = fmtr.Speed(s.AverageSpeed)
	s.MaxSpeedText = fmtr.Speed(s.MaxSpeed)

	start, end := first.Timestamp, last.Timestamp
	s.Start, s.End = &start, &end

	bound := geodesy.Bound(points)
	s.Bounds = &igc.Bounds{
		MinLatitude:  bound.Min.Lat(),
		MinLongitude: bound.Min.Lon(),
		MaxLatitude:  bound.Max.Lat(),
		MaxLongitude: bound.Max.Lon(),
	}
	return s
}
