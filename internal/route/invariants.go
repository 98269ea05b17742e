package route

import (
	"github.com/saviobatista/route-planner/internal/types"
)

// FirstIsAirport reports whether the sequence is empty or starts with an
// airport.
func FirstIsAirport(wps []types.Waypoint) bool {
	return len(wps) == 0 || wps[0].Kind == types.KindAirport
}

// CanOccupy reports whether a waypoint of kind k may sit at index.
// Only position 0 is constrained.
func CanOccupy(k types.Kind, index int) bool {
	return index != 0 || k == types.KindAirport
}

// CanInsert reports whether inserting w at index keeps the sequence valid.
func CanInsert(wps []types.Waypoint, w types.Waypoint, index int) bool {
	if index < 0 || index > len(wps) {
		return false
	}
	return CanOccupy(w.Kind, index)
}

// CanMove reports whether moving the element at from to to keeps the
// sequence valid. Out of range indices are never valid.
func CanMove(wps []types.Waypoint, from, to int) bool {
	if from < 0 || from >= len(wps) || to < 0 || to >= len(wps) {
		return false
	}
	if from == to {
		return true
	}
	if to == 0 {
		return wps[from].Kind == types.KindAirport
	}
	if from == 0 {
		return wps[1].Kind == types.KindAirport
	}
	return true
}

// CanRemove reports whether removing the element at index keeps the
// sequence valid.
func CanRemove(wps []types.Waypoint, index int) bool {
	if index < 0 || index >= len(wps) {
		return false
	}
	if wps[index].Kind == types.KindCalculated {
		return false
	}
	if index == 0 && len(wps) > 1 {
		return wps[1].Kind == types.KindAirport
	}
	return true
}

// IsIntermediateAirport reports whether the element at index is an airport
// that is neither the first nor the last waypoint.
func IsIntermediateAirport(wps []types.Waypoint, index int) bool {
	if index <= 0 || index >= len(wps)-1 {
		return false
	}
	return wps[index].Kind == types.KindAirport
}

// IsComplete reports whether the route has enough waypoints for a nav-log
// calculation.
func IsComplete(wps []types.Waypoint) bool {
	return len(wps) >= 2
}

// Draggable reports whether a waypoint of kind k may be repositioned by
// dragging. Airports are placed by search and calculated points by the
// nav-log service, so only custom points qualify.
func Draggable(k types.Kind) bool {
	return k == types.KindCustom
}
