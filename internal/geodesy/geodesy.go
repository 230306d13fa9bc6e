// Package geodesy provides great-circle distance, IGC coordinate conversion
// and clock helpers.
package geodesy

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// EarthRadius is the sphere radius in metres used by Distance.
const EarthRadius = 6378137.0

// Distance returns the Haversine distance in metres between two points given
// in decimal degrees. Coincident points and degenerate input yield 0.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}
	d := geo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}

// Speed returns km/h for a distance in metres covered in the given seconds.
// Zero distance is always 0; a positive distance in no time is +Inf.
func Speed(metres float64, seconds int) float64 {
	if metres == 0 {
		return 0
	}
	if seconds <= 0 {
		return math.Inf(1)
	}
	return metres / float64(seconds) * 3.6
}

// Bound returns the bounding box of the given points (lat, lon pairs).
func Bound(points [][2]float64) orb.Bound {
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, orb.Point{p[1], p[0]})
	}
	return mp.Bound()
}
