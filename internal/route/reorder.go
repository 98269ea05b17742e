package route

import (
	"github.com/saviobatista/route-planner/internal/types"
)

// ValidateMove reports whether a drag-and-drop move from oldIndex to
// newIndex may be applied. Same-index and out of range moves are not
// applied.
func ValidateMove(wps []types.Waypoint, oldIndex, newIndex int) bool {
	n := len(wps)
	if oldIndex == newIndex || oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		return false
	}
	if newIndex == 0 && wps[oldIndex].Kind != types.KindAirport {
		return false
	}
	if oldIndex == 0 && wps[1].Kind != types.KindAirport {
		return false
	}
	return true
}

// Reorder applies a drag-and-drop move to the store if ValidateMove allows
// it. Rejected moves are silently ignored; the return value only tells the
// caller whether the route changed.
func Reorder(s *Store, oldIndex, newIndex int) bool {
	if !ValidateMove(s.waypoints, oldIndex, newIndex) {
		return false
	}
	return s.MoveTo(s.waypoints[oldIndex].ID, newIndex) == nil
}
