package render

import (
	"strings"

	"github.com/saviobatista/route-planner/internal/types"
)

// SegmentClass is the rendering style of the line between two waypoints.
type SegmentClass int

const (
	Cruise SegmentClass = iota
	Climb
	Descent
	FuelCritical
)

func (c SegmentClass) String() string {
	switch c {
	case Cruise:
		return "cruise"
	case Climb:
		return "climb"
	case Descent:
		return "descent"
	case FuelCritical:
		return "fuel-critical"
	default:
		return "unknown"
	}
}

// altitudeBand is the change in feet below which a segment is level.
const altitudeBand = 100.0

// Segment is one consecutive waypoint pair and its style.
type Segment struct {
	From  types.Waypoint
	To    types.Waypoint
	Class SegmentClass
}

type legKey struct {
	start, end string
}

// ClassifySegments returns a segment for each consecutive pair of points.
// Outside Preview every segment is Cruise. In Preview a segment takes its
// style from the leg joining the same two ids: negative remaining fuel
// wins over any altitude change, then a climb or descent of more than
// 100 ft.
func ClassifySegments(points []types.Waypoint, legs []types.Leg, mode types.DisplayMode) []Segment {
	if len(points) < 2 {
		return nil
	}
	segs := make([]Segment, len(points)-1)
	for i := range segs {
		segs[i] = Segment{From: points[i], To: points[i+1], Class: Cruise}
	}
	if mode != types.ModePreview {
		return segs
	}

	byPair := make(map[legKey]*types.Leg, len(legs))
	for i := range legs {
		k := legKey{legs[i].Start.ID, legs[i].End.ID}
		if _, ok := byPair[k]; !ok {
			byPair[k] = &legs[i]
		}
	}

	for i := range segs {
		segs[i].Class = classify(segs[i].From, segs[i].To, byPair[legKey{segs[i].From.ID, segs[i].To.ID}])
	}
	return segs
}

func classify(a, b types.Waypoint, leg *types.Leg) SegmentClass {
	if leg == nil {
		return Cruise
	}
	if leg.RemainingFuelGals != nil && *leg.RemainingFuelGals < 0 {
		return FuelCritical
	}
	if !a.HasAltitude() || !b.HasAltitude() {
		return Cruise
	}
	switch delta := *b.Altitude - *a.Altitude; {
	case delta > altitudeBand:
		return Climb
	case delta < -altitudeBand:
		return Descent
	}
	return Cruise
}

// PointRole marks calculated points that stand for a climb or descent
// transition.
type PointRole int

const (
	RoleNone PointRole = iota
	RoleTopOfClimb
	RoleTopOfDescent
)

func (r PointRole) String() string {
	switch r {
	case RoleTopOfClimb:
		return "toc"
	case RoleTopOfDescent:
		return "tod"
	default:
		return ""
	}
}

// ClassifyPoint identifies top-of-climb and top-of-descent markers from
// the name of a calculated point. The match is a plain case-insensitive
// substring test, so a point called "Toccoa" is a climb marker too.
//
// TODO: switch to a structured role once the nav-log service returns one
// on calculated points.
func ClassifyPoint(w types.Waypoint) PointRole {
	if w.Kind != types.KindCalculated {
		return RoleNone
	}
	name := strings.ToLower(w.Name)
	switch {
	case strings.Contains(name, "toc"), strings.Contains(name, "top of climb"):
		return RoleTopOfClimb
	case strings.Contains(name, "tod"), strings.Contains(name, "top of descent"):
		return RoleTopOfDescent
	}
	return RoleNone
}
