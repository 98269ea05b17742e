package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/saviobatista/route-planner/internal/log"
	"github.com/saviobatista/route-planner/internal/route"
	"github.com/saviobatista/route-planner/internal/types"
)

const (
	lruSize = 512
	lruTTL  = 30 * time.Minute
)

// ErrRateLimited is returned instead of calling upstream when the request
// budget for the current window is spent.
var ErrRateLimited = errors.New("course: rate limit exceeded")

// Lookuper fetches a course from upstream. Client satisfies it.
type Lookuper interface {
	Lookup(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (*types.Course, error)
}

// SharedCache is a cross-process course cache. The redis client satisfies it.
type SharedCache interface {
	GetCourse(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (*types.Course, error)
	StoreCourse(ctx context.Context, fromLat, fromLon, toLat, toLon float64, c *types.Course) error
}

// Service answers course lookups from an in-process LRU, then the shared
// cache, then upstream under a rate limit. It satisfies route.CourseService.
type Service struct {
	next   Lookuper
	limit  *RateLimit
	shared SharedCache
	lru    *expirable.LRU[string, types.Course]
	lg     *log.Logger
}

// NewService builds a Service. shared, limit and lg may be nil.
func NewService(next Lookuper, limit *RateLimit, shared SharedCache, lg *log.Logger) *Service {
	return &Service{
		next:   next,
		limit:  limit,
		shared: shared,
		lru:    expirable.NewLRU[string, types.Course](lruSize, nil, lruTTL),
		lg:     lg,
	}
}

func lruKey(from, to route.LatLon) string {
	return fmt.Sprintf("%.5f,%.5f:%.5f,%.5f", from.Lat, from.Lon, to.Lat, to.Lon)
}

func (s *Service) Course(ctx context.Context, from, to route.LatLon) (*types.Course, error) {
	key := lruKey(from, to)
	if c, ok := s.lru.Get(key); ok {
		return &c, nil
	}

	if s.shared != nil {
		c, err := s.shared.GetCourse(ctx, from.Lat, from.Lon, to.Lat, to.Lon)
		if err != nil {
			s.lg.Warn("course cache read failed", "error", err)
		} else if c != nil {
			s.lru.Add(key, *c)
			return c, nil
		}
	}

	if s.limit != nil && !s.limit.Take() {
		s.lg.Debug("course lookup rate limited", "wait", s.limit.WaitDuration().String())
		return nil, ErrRateLimited
	}

	c, err := s.next.Lookup(ctx, from.Lat, from.Lon, to.Lat, to.Lon)
	if err != nil {
		return nil, err
	}
	s.lru.Add(key, *c)
	if s.shared != nil {
		if err := s.shared.StoreCourse(ctx, from.Lat, from.Lon, to.Lat, to.Lon, c); err != nil {
			s.lg.Warn("course cache write failed", "error", err)
		}
	}
	return c, nil
}
