package route

import (
	"math"

	"github.com/saviobatista/route-planner/internal/geo"
	"github.com/saviobatista/route-planner/internal/types"
)

// PlanInsertion returns the index at which a new waypoint at (lat, lon)
// should be inserted.
//
// An explicit index, when given, is clamped to [0, len] and used as is.
// Otherwise the new point goes after the first waypoint of the segment
// (a, b) minimising dist(a, new) + dist(new, b). This is greedy
// cheapest-insertion, not a global optimum: it must answer within a UI
// frame. Segments touching a calculated point are never candidates; routes
// with fewer than two points, or with no eligible segment, get an append.
func PlanInsertion(wps []types.Waypoint, lat, lon float64, explicit *int) int {
	n := len(wps)
	if n == 0 {
		return 0
	}
	if explicit != nil {
		return max(0, min(*explicit, n))
	}
	if n < 2 {
		return n
	}

	best, bestScore := n, math.Inf(1)
	for i := 0; i+1 < n; i++ {
		a, b := wps[i], wps[i+1]
		if a.Kind == types.KindCalculated || b.Kind == types.KindCalculated {
			continue
		}
		score := geo.DistanceNM(a.Latitude, a.Longitude, lat, lon) +
			geo.DistanceNM(lat, lon, b.Latitude, b.Longitude)
		// Strict comparison so ties keep the earliest segment.
		if score < bestScore {
			best, bestScore = i+1, score
		}
	}
	return best
}

// SegmentIndex returns a pointer to i, for passing an explicit insertion
// index to PlanInsertion.
func SegmentIndex(i int) *int {
	return &i
}
