package route

import (
	"github.com/saviobatista/route-planner/internal/types"
)

// ExtractPoints flattens legs into [start, end, start, end, ...] and keeps
// only the first occurrence of each waypoint id.
func ExtractPoints(legs []types.Leg) []types.Waypoint {
	seen := make(map[string]struct{}, len(legs)+1)
	out := make([]types.Waypoint, 0, len(legs)+1)
	add := func(w types.Waypoint) {
		if _, ok := seen[w.ID]; ok {
			return
		}
		seen[w.ID] = struct{}{}
		out = append(out, w)
	}
	for _, leg := range legs {
		add(leg.Start)
		add(leg.End)
	}
	return out
}
