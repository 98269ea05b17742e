// Package render derives the map view of a route: styled segments and
// positioned markers for the active display mode.
package render

import (
	"github.com/saviobatista/route-planner/internal/route"
	"github.com/saviobatista/route-planner/internal/types"
)

// Source is the route state a Renderer reads. *route.Session implements it.
type Source interface {
	Mode() types.DisplayMode
	Waypoints() []types.Waypoint
	Legs() []types.Leg
	ViewVersion() uint64
	LivePosition(id string) (route.LatLon, bool)
}

// View is everything the map draws for one version of the route.
type View struct {
	Mode     types.DisplayMode
	Version  uint64
	Points   []Point
	Segments []Segment
}

// Renderer caches the last computed View and rebuilds it only when the
// source version changes. Like the session, it belongs to the event loop.
type Renderer struct {
	src    Source
	cached *View
	builds int
}

func NewRenderer(src Source) *Renderer {
	return &Renderer{src: src}
}

// View returns the current view, recomputing it if the route changed since
// the last call.
func (r *Renderer) View() *View {
	v := r.src.ViewVersion()
	if r.cached != nil && r.cached.Version == v {
		return r.cached
	}

	m := r.src.Mode()
	var points []types.Waypoint
	if PolicyFor(m).Source == FromLegs {
		points = route.ExtractPoints(r.src.Legs())
	} else {
		points = r.src.Waypoints()
	}
	for i := range points {
		if p, ok := r.src.LivePosition(points[i].ID); ok {
			points[i].Latitude, points[i].Longitude = p.Lat, p.Lon
		}
	}

	r.cached = &View{
		Mode:     m,
		Version:  v,
		Points:   Project(points, m),
		Segments: ClassifySegments(points, r.src.Legs(), m),
	}
	r.builds++
	return r.cached
}

// Builds returns how many times the view has been recomputed.
func (r *Renderer) Builds() int {
	return r.builds
}
