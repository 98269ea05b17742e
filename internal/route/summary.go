package route

import (
	"context"

	"github.com/saviobatista/route-planner/internal/types"
	"golang.org/x/sync/errgroup"
)

// CourseService looks up true course and great-circle distance for a pair
// of positions.
type CourseService interface {
	Course(ctx context.Context, from, to LatLon) (*types.Course, error)
}

// LegSummary is the display data for one adjacent waypoint pair. Course is
// nil when the lookup failed or has not completed.
type LegSummary struct {
	From   types.Waypoint
	To     types.Waypoint
	Course *types.Course
}

// Summary is the per-leg course list and total distance of a route.
type Summary struct {
	Legs     []LegSummary
	TotalNM  float64
	Complete bool
}

const summaryConcurrency = 4

// Summarize fetches the course of every adjacent pair in wps. Lookups run
// concurrently; a failed lookup leaves that leg without data and does not
// fail the summary.
func Summarize(ctx context.Context, courses CourseService, wps []types.Waypoint) *Summary {
	sum := &Summary{Complete: true}
	if len(wps) < 2 {
		return sum
	}
	sum.Legs = make([]LegSummary, len(wps)-1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for i := range sum.Legs {
		from, to := wps[i], wps[i+1]
		sum.Legs[i] = LegSummary{From: from, To: to}
		if courses == nil {
			continue
		}
		g.Go(func() error {
			c, err := courses.Course(gctx,
				LatLon{Lat: from.Latitude, Lon: from.Longitude},
				LatLon{Lat: to.Latitude, Lon: to.Longitude})
			if err == nil {
				sum.Legs[i].Course = c
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, leg := range sum.Legs {
		if leg.Course == nil {
			sum.Complete = false
			continue
		}
		sum.TotalNM += leg.Course.DistanceNM
	}
	return sum
}
