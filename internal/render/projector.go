package render

import (
	"fmt"
	"math"

	"github.com/saviobatista/route-planner/internal/route"
	"github.com/saviobatista/route-planner/internal/types"
)

// PointSource selects where a mode's points come from.
type PointSource int

const (
	// FromStore uses the mode's waypoint list in route order.
	FromStore PointSource = iota
	// FromLegs flattens the mode's legs, first occurrence of each id.
	FromLegs
)

// Position is where the renderer places a point. With ClampToGround set
// the renderer drapes the point on terrain and AltitudeFt is ignored.
type Position struct {
	Latitude      float64
	Longitude     float64
	AltitudeFt    float64
	ClampToGround bool
}

// PositionFunc resolves a waypoint to a render position.
type PositionFunc func(w types.Waypoint) Position

// GroundPosition ignores altitude.
func GroundPosition(w types.Waypoint) Position {
	return Position{Latitude: w.Latitude, Longitude: w.Longitude, ClampToGround: true}
}

// AltitudePosition places points with an altitude at that height, and
// the rest on the ground.
func AltitudePosition(w types.Waypoint) Position {
	if !w.HasAltitude() {
		return GroundPosition(w)
	}
	return Position{Latitude: w.Latitude, Longitude: w.Longitude, AltitudeFt: *w.Altitude}
}

// Policy is how one display mode is projected.
type Policy struct {
	Source        PointSource
	Editable      bool
	Position      PositionFunc
	Visible       func(types.Kind) bool
	AltitudeLabel bool
}

func markerKinds(k types.Kind) bool {
	// Airports are drawn by the airport layer in editable modes.
	return k == types.KindCustom || k == types.KindCalculated
}

func allKinds(types.Kind) bool { return true }

var policies = map[types.DisplayMode]Policy{
	types.ModePlanning: {Source: FromStore, Editable: true, Position: GroundPosition, Visible: markerKinds},
	types.ModeEditing:  {Source: FromStore, Editable: true, Position: GroundPosition, Visible: markerKinds},
	types.ModePreview:  {Source: FromLegs, Position: AltitudePosition, Visible: allKinds, AltitudeLabel: true},
	types.ModeViewing:  {Source: FromLegs, Position: AltitudePosition, Visible: allKinds},
}

// PolicyFor returns the projection policy of mode m. Unknown modes get a
// read-only ground policy that shows everything.
func PolicyFor(m types.DisplayMode) Policy {
	if p, ok := policies[m]; ok {
		return p
	}
	return Policy{Source: FromStore, Position: GroundPosition, Visible: allKinds}
}

// Point is a renderable marker.
type Point struct {
	Waypoint  types.Waypoint
	Position  Position
	Label     string
	Role      PointRole
	Editable  bool
	Draggable bool
}

// Project turns the points of a route into markers under mode m's policy.
// points must already be in display order; for leg-sourced modes that is
// the result of route.ExtractPoints.
func Project(points []types.Waypoint, m types.DisplayMode) []Point {
	p := PolicyFor(m)
	out := make([]Point, 0, len(points))
	for _, w := range points {
		if !p.Visible(w.Kind) {
			continue
		}
		editable := p.Editable && w.Kind != types.KindCalculated
		out = append(out, Point{
			Waypoint:  w,
			Position:  p.Position(w),
			Label:     label(w, p.AltitudeLabel),
			Role:      ClassifyPoint(w),
			Editable:  editable,
			Draggable: editable && route.Draggable(w.Kind),
		})
	}
	return out
}

func label(w types.Waypoint, withAltitude bool) string {
	if !withAltitude || !w.HasAltitude() {
		return w.Name
	}
	return fmt.Sprintf("%s\n%d ft", w.Name, int(math.Round(*w.Altitude)))
}
