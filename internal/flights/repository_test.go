package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saviobatista/route-planner/internal/db"
	"github.com/saviobatista/route-planner/internal/testutils"
	"github.com/saviobatista/route-planner/internal/types"
)

type memoryStore struct {
	flights map[string]*types.Flight
	reads   int
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{flights: make(map[string]*types.Flight)}
}

func (m *memoryStore) SaveFlight(ctx context.Context, f *types.Flight) error {
	if m.err != nil {
		return m.err
	}
	m.flights[f.ID] = f
	return nil
}

func (m *memoryStore) GetFlight(ctx context.Context, id string) (*types.Flight, error) {
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	return m.flights[id], nil
}

func (m *memoryStore) ListFlights(ctx context.Context, limit int) ([]db.FlightSummary, error) {
	var out []db.FlightSummary
	for _, f := range m.flights {
		out = append(out, db.FlightSummary{ID: f.ID, Name: f.Name})
	}
	return out, nil
}

func (m *memoryStore) DeleteFlight(ctx context.Context, id string) error {
	delete(m.flights, id)
	return nil
}

type memoryCache struct {
	flights map[string]*types.Flight
	err     error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{flights: make(map[string]*types.Flight)}
}

func (m *memoryCache) StoreFlight(ctx context.Context, f *types.Flight) error {
	if m.err != nil {
		return m.err
	}
	m.flights[f.ID] = f
	return nil
}

func (m *memoryCache) GetFlight(ctx context.Context, id string) (*types.Flight, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.flights[id], nil
}

func (m *memoryCache) DeleteFlight(ctx context.Context, id string) error {
	delete(m.flights, id)
	return m.err
}

func flight(id string) *types.Flight {
	return &types.Flight{
		ID:            id,
		Name:          "JFK-BOS",
		DepartureTime: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Legs: testutils.Legs(
			testutils.Airport("KJFK", 40.6413, -73.7781),
			testutils.Airport("KBOS", 42.3656, -71.0096),
		),
	}
}

func TestRepository_ReadThrough(t *testing.T) {
	store, cache := newMemoryStore(), newMemoryCache()
	store.flights["f1"] = flight("f1")
	repo := New(store, cache, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f, err := repo.GetFlight(ctx, "f1")
		if err != nil {
			t.Fatalf("GetFlight() failed: %v", err)
		}
		if f.Name != "JFK-BOS" {
			t.Errorf("Unexpected flight %+v", f)
		}
	}
	if store.reads != 1 {
		t.Errorf("Expected 1 store read, got %d", store.reads)
	}
	if cache.flights["f1"] == nil {
		t.Error("Expected the flight to be cached")
	}
}

func TestRepository_NotFound(t *testing.T) {
	repo := New(newMemoryStore(), newMemoryCache(), nil)
	if _, err := repo.GetFlight(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRepository_Save(t *testing.T) {
	store, cache := newMemoryStore(), newMemoryCache()
	repo := New(store, cache, nil)

	if err := repo.SaveFlight(context.Background(), flight("f1")); err != nil {
		t.Fatalf("SaveFlight() failed: %v", err)
	}
	if store.flights["f1"] == nil || cache.flights["f1"] == nil {
		t.Error("Expected the flight in both store and cache")
	}

	store.err = errors.New("connection refused")
	if err := repo.SaveFlight(context.Background(), flight("f2")); err == nil {
		t.Error("Expected store error to propagate")
	}
	if cache.flights["f2"] != nil {
		t.Error("A failed save should not be cached")
	}
}

func TestRepository_CacheFailuresAreNotFatal(t *testing.T) {
	store, cache := newMemoryStore(), newMemoryCache()
	store.flights["f1"] = flight("f1")
	cache.err = errors.New("redis down")
	repo := New(store, cache, nil)
	ctx := context.Background()

	if _, err := repo.GetFlight(ctx, "f1"); err != nil {
		t.Errorf("GetFlight() should fall back to the store: %v", err)
	}
	if err := repo.SaveFlight(ctx, flight("f2")); err != nil {
		t.Errorf("SaveFlight() should ignore cache errors: %v", err)
	}
	if err := repo.DeleteFlight(ctx, "f1"); err != nil {
		t.Errorf("DeleteFlight() should ignore cache errors: %v", err)
	}
}

func TestRepository_NoCache(t *testing.T) {
	store := newMemoryStore()
	repo := New(store, nil, nil)
	ctx := context.Background()

	if err := repo.SaveFlight(ctx, flight("f1")); err != nil {
		t.Fatalf("SaveFlight() failed: %v", err)
	}
	if _, err := repo.GetFlight(ctx, "f1"); err != nil {
		t.Fatalf("GetFlight() failed: %v", err)
	}
	list, err := repo.ListFlights(ctx, 10)
	if err != nil || len(list) != 1 {
		t.Errorf("ListFlights() = %v, %v", list, err)
	}
	if err := repo.DeleteFlight(ctx, "f1"); err != nil {
		t.Fatalf("DeleteFlight() failed: %v", err)
	}
	if _, err := repo.GetFlight(ctx, "f1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}
