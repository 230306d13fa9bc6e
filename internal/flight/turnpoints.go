package flight

import (
	"math"

	"igc_parser/internal/geodesy"
	"igc_parser/internal/igc"
)

// ValidateTurnpoints matches the usable task waypoints against the track
// and stores the result on f, replacing any earlier one. Waypoints are
// taken in declared order; each fix can validate at most one waypoint and a
// later waypoint is never looked at before an earlier one is reached.
// Missed waypoints report their closest approach among the fixes after the
// last match. A nil result means there is nothing to validate.
func ValidateTurnpoints(f *igc.Flight, radius float64) *igc.TurnpointValidation {
	if f == nil || f.Task == nil || len(f.Fixes) == 0 {
		return nil
	}
	if radius <= 0 {
		radius = DefaultTurnpointRadius
	}

	wps := f.Task.Waypoints
	v := &igc.TurnpointValidation{
		Radius: radius,
		Checks: make([]igc.TurnpointCheck, len(wps)),
	}
	for i, wp := range wps {
		v.Checks[i].Waypoint = wp
	}

	next, lastMatch := 0, -1
	for i := range f.Fixes {
		if next >= len(wps) {
			break
		}
		fx := &f.Fixes[i]
		wp := wps[next]
		d := geodesy.Distance(fx.Latitude, fx.Longitude, wp.Latitude, wp.Longitude)
		if d > radius {
			continue
		}
		v.Checks[next].Validated = true
		v.Checks[next].Fix = fixRef(i, fx)
		v.Checks[next].Distance = d
		v.Validated++
		next++
		lastMatch = i
	}

	for k := next; k < len(wps); k++ {
		v.Missed++
		wp := wps[k]
		best, bestIdx := math.Inf(1), -1
		for i := lastMatch + 1; i < len(f.Fixes); i++ {
			fx := &f.Fixes[i]
			if d := geodesy.Distance(fx.Latitude, fx.Longitude, wp.Latitude, wp.Longitude); d < best {
				best, bestIdx = d, i
			}
		}
		if bestIdx >= 0 {
			v.Checks[k].Fix = fixRef(bestIdx, &f.Fixes[bestIdx])
			v.Checks[k].Distance = best
		}
	}

	v.Complete = len(wps) > 0 && v.Missed == 0
	f.Turnpoints = v
	return v
}

func fixRef(i int, fx *igc.Fix) *igc.FixRef {
	return &igc.FixRef{
		Index:     i,
		Line:      fx.Line,
		Timestamp: fx.Timestamp,
		Latitude:  fx.Latitude,
		Longitude: fx.Longitude,
	}
}
