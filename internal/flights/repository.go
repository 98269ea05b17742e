// Package flights is the persisted-flight service used by route sessions.
package flights

import (
	"context"
	"errors"
	"fmt"

	"github.com/saviobatista/route-planner/internal/db"
	"github.com/saviobatista/route-planner/internal/log"
	"github.com/saviobatista/route-planner/internal/types"
)

// ErrNotFound is returned when no flight has the requested id.
var ErrNotFound = errors.New("flight not found")

// Store is the system of record. *db.Client satisfies it.
type Store interface {
	SaveFlight(ctx context.Context, f *types.Flight) error
	GetFlight(ctx context.Context, id string) (*types.Flight, error)
	ListFlights(ctx context.Context, limit int) ([]db.FlightSummary, error)
	DeleteFlight(ctx context.Context, id string) error
}

// Cache holds recently used flights. *redis.Client satisfies it.
type Cache interface {
	StoreFlight(ctx context.Context, f *types.Flight) error
	GetFlight(ctx context.Context, id string) (*types.Flight, error)
	DeleteFlight(ctx context.Context, id string) error
}

// Repository reads through the cache and writes to the store first.
// Cache errors are logged and never fail an operation.
type Repository struct {
	store Store
	cache Cache
	lg    *log.Logger
}

// New creates a Repository. cache may be nil.
func New(store Store, cache Cache, lg *log.Logger) *Repository {
	return &Repository{store: store, cache: cache, lg: lg}
}

// SaveFlight persists f and refreshes the cached copy.
func (r *Repository) SaveFlight(ctx context.Context, f *types.Flight) error {
	if err := r.store.SaveFlight(ctx, f); err != nil {
		return fmt.Errorf("failed to save flight %s: %w", f.ID, err)
	}
	if r.cache != nil {
		if err := r.cache.StoreFlight(ctx, f); err != nil {
			r.lg.Warn("failed to cache flight", "id", f.ID, "error", err)
		}
	}
	return nil
}

// GetFlight returns the flight with id, or ErrNotFound.
func (r *Repository) GetFlight(ctx context.Context, id string) (*types.Flight, error) {
	if r.cache != nil {
		f, err := r.cache.GetFlight(ctx, id)
		if err != nil {
			r.lg.Warn("failed to read cached flight", "id", id, "error", err)
		} else if f != nil {
			return f, nil
		}
	}

	f, err := r.store.GetFlight(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load flight %s: %w", id, err)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if r.cache != nil {
		if err := r.cache.StoreFlight(ctx, f); err != nil {
			r.lg.Warn("failed to cache flight", "id", id, "error", err)
		}
	}
	return f, nil
}

// ListFlights returns the most recent flights
func (r *Repository) ListFlights(ctx context.Context, limit int) ([]db.FlightSummary, error) {
	return r.store.ListFlights(ctx, limit)
}

// DeleteFlight removes a flight from the store and the cache
func (r *Repository) DeleteFlight(ctx context.Context, id string) error {
	if err := r.store.DeleteFlight(ctx, id); err != nil {
		return fmt.Errorf("failed to delete flight %s: %w", id, err)
	}
	if r.cache != nil {
		if err := r.cache.DeleteFlight(ctx, id); err != nil {
			r.lg.Warn("failed to evict cached flight", "id", id, "error", err)
		}
	}
	return nil
}
