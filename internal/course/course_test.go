package course

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/saviobatista/route-planner/internal/geo"
	"github.com/saviobatista/route-planner/internal/route"
	"github.com/saviobatista/route-planner/internal/types"
)

var (
	jfk = route.LatLon{Lat: 40.6413, Lon: -73.7781}
	bos = route.LatLon{Lat: 42.3656, Lon: -71.0096}
)

func TestClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/course" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("from_lat") != "40.641300" || q.Get("to_lon") != "-71.009600" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(types.Course{TrueCourse: 52.3, DistanceNM: 161.2})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "").Lookup(context.Background(), jfk.Lat, jfk.Lon, bos.Lat, bos.Lon)
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if c.TrueCourse != 52.3 || c.DistanceNM != 161.2 {
		t.Errorf("Unexpected course %+v", c)
	}
}

func TestClient_Lookup_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream timeout", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "").Lookup(context.Background(), 0, 0, 1, 1); err == nil {
		t.Error("Expected error, got none")
	}
}

// geoLookuper answers from the local great-circle math and counts calls.
type geoLookuper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *geoLookuper) Lookup(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (*types.Course, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &types.Course{
		TrueCourse: geo.InitialCourse(fromLat, fromLon, toLat, toLon),
		DistanceNM: geo.DistanceNM(fromLat, fromLon, toLat, toLon),
	}, nil
}

type memoryShared struct {
	data map[[4]float64]*types.Course
}

func (m *memoryShared) GetCourse(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (*types.Course, error) {
	return m.data[[4]float64{fromLat, fromLon, toLat, toLon}], nil
}

func (m *memoryShared) StoreCourse(ctx context.Context, fromLat, fromLon, toLat, toLon float64, c *types.Course) error {
	m.data[[4]float64{fromLat, fromLon, toLat, toLon}] = c
	return nil
}

func TestService_CachesInProcess(t *testing.T) {
	next := &geoLookuper{}
	svc := NewService(next, nil, nil, nil)

	for i := 0; i < 3; i++ {
		c, err := svc.Course(context.Background(), jfk, bos)
		if err != nil {
			t.Fatalf("Course() failed: %v", err)
		}
		if c.DistanceNM < 160 || c.DistanceNM > 163 {
			t.Errorf("Unexpected distance %v", c.DistanceNM)
		}
	}
	if next.calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", next.calls)
	}

	if _, err := svc.Course(context.Background(), bos, jfk); err != nil {
		t.Fatalf("Course() failed: %v", err)
	}
	if next.calls != 2 {
		t.Errorf("Expected the reverse direction to miss, got %d calls", next.calls)
	}
}

func TestService_SharedCache(t *testing.T) {
	shared := &memoryShared{data: make(map[[4]float64]*types.Course)}

	first := NewService(&geoLookuper{}, nil, shared, nil)
	if _, err := first.Course(context.Background(), jfk, bos); err != nil {
		t.Fatalf("Course() failed: %v", err)
	}
	if len(shared.data) != 1 {
		t.Fatalf("Expected the lookup to be shared, got %d entries", len(shared.data))
	}

	next := &geoLookuper{}
	second := NewService(next, nil, shared, nil)
	if _, err := second.Course(context.Background(), jfk, bos); err != nil {
		t.Fatalf("Course() failed: %v", err)
	}
	if next.calls != 0 {
		t.Errorf("Expected a shared-cache hit, got %d upstream calls", next.calls)
	}
}

func TestService_RateLimited(t *testing.T) {
	next := &geoLookuper{}
	svc := NewService(next, NewRateLimit(1, time.Minute), nil, nil)

	if _, err := svc.Course(context.Background(), jfk, bos); err != nil {
		t.Fatalf("Course() failed: %v", err)
	}
	if _, err := svc.Course(context.Background(), bos, jfk); !errors.Is(err, ErrRateLimited) {
		t.Errorf("Expected ErrRateLimited, got %v", err)
	}
	// Cached pairs are still answered.
	if _, err := svc.Course(context.Background(), jfk, bos); err != nil {
		t.Errorf("Expected cached answer under rate limit, got %v", err)
	}
}

func TestService_UpstreamErrorNotCached(t *testing.T) {
	next := &geoLookuper{err: errors.New("boom")}
	svc := NewService(next, nil, nil, nil)

	if _, err := svc.Course(context.Background(), jfk, bos); err == nil {
		t.Fatal("Expected error, got none")
	}
	next.err = nil
	if _, err := svc.Course(context.Background(), jfk, bos); err != nil {
		t.Fatalf("Course() failed after recovery: %v", err)
	}
	if next.calls != 2 {
		t.Errorf("Expected a retry upstream, got %d calls", next.calls)
	}
}

func TestService_Summarize(t *testing.T) {
	wps := []types.Waypoint{
		{ID: "a", Kind: types.KindAirport, Latitude: jfk.Lat, Longitude: jfk.Lon},
		{ID: "b", Kind: types.KindCustom, Latitude: 41.5, Longitude: -72.5},
		{ID: "c", Kind: types.KindAirport, Latitude: bos.Lat, Longitude: bos.Lon},
	}

	sum := route.Summarize(context.Background(), NewService(&geoLookuper{}, nil, nil, nil), wps)
	if !sum.Complete || len(sum.Legs) != 2 {
		t.Fatalf("Unexpected summary %+v", sum)
	}
	if sum.TotalNM <= geo.DistanceNM(jfk.Lat, jfk.Lon, bos.Lat, bos.Lon) {
		t.Errorf("Expected the dogleg to be longer than direct, got %v", sum.TotalNM)
	}
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimit(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Take() || !rl.Take() {
		t.Fatal("Expected the first two requests to be allowed")
	}
	if rl.Take() {
		t.Error("Expected the third request to be refused")
	}
	if rl.Remaining() != 0 {
		t.Errorf("Expected 0 remaining, got %d", rl.Remaining())
	}
	if got := rl.WaitDuration(); got != time.Minute {
		t.Errorf("Expected 1m wait, got %v", got)
	}

	now = now.Add(61 * time.Second)
	if rl.Remaining() != 2 || rl.WaitDuration() != 0 {
		t.Errorf("Expected the window to reset, got %d remaining", rl.Remaining())
	}
	if !rl.Take() {
		t.Error("Expected request to be allowed after the window")
	}
}
