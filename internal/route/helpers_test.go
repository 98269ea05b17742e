package route

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/saviobatista/route-planner/internal/types"
)

type fakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeScheduler is a manual clock. Timers only fire from Advance.
type fakeScheduler struct {
	now    time.Duration
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.now += d
	for i := 0; i < len(s.timers); i++ {
		t := s.timers[i]
		if t.stopped || t.fired || t.at > s.now {
			continue
		}
		t.fired = true
		t.fn()
	}
}

func (s *fakeScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// leakyScheduler hands out timers that cannot be stopped, the way a
// time.AfterFunc callback that has already been posted to the loop
// cannot be recalled.
type leakyScheduler struct {
	fns []func()
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (s *leakyScheduler) AfterFunc(_ time.Duration, fn func()) Timer {
	s.fns = append(s.fns, fn)
	return leakyTimer{}
}

type countingRecorder struct {
	mutations map[string]int
	rejected  map[string]int
	commits   int
	discarded int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		mutations: make(map[string]int),
		rejected:  make(map[string]int),
	}
}

func (r *countingRecorder) RecordMutation(op string) { r.mutations[op]++ }
func (r *countingRecorder) RecordRejected(op string) { r.rejected[op]++ }
func (r *countingRecorder) RecordCommit()            { r.commits++ }
func (r *countingRecorder) RecordDiscardedCommit()   { r.discarded++ }

// eventLog collects edit events from a store or session.
type eventLog struct {
	events []types.EditEvent
}

func (l *eventLog) add(ev types.EditEvent) {
	l.events = append(l.events, ev)
}

func (l *eventLog) ofKind(k types.EditKind) []types.EditEvent {
	var out []types.EditEvent
	for _, ev := range l.events {
		if ev.Kind == k {
			out = append(out, ev)
		}
	}
	return out
}

// fakeNavLog returns one leg per adjacent pair and adds a top-of-climb
// point after the departure airport.
type fakeNavLog struct {
	err      error
	requests []*types.NavLogRequest
}

func (f *fakeNavLog) Calculate(_ context.Context, req *types.NavLogRequest) (*types.NavLog, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	wps := req.Waypoints
	alt := req.CruiseAltitude
	toc := types.Waypoint{
		ID:        "toc-" + wps[0].ID,
		Kind:      types.KindCalculated,
		Name:      "TOC",
		Latitude:  wps[0].Latitude + 0.1,
		Longitude: wps[0].Longitude + 0.1,
		Altitude:  &alt,
	}
	points := append([]types.Waypoint{wps[0], toc}, wps[1:]...)

	nl := &types.NavLog{CalculatedAt: time.Now().UTC()}
	for i := 0; i+1 < len(points); i++ {
		nl.Legs = append(nl.Legs, types.Leg{Start: points[i], End: points[i+1]})
	}
	return nl, nil
}

type fakeFlights struct {
	mu      sync.Mutex
	flights map[string]*types.Flight
	saves   int
	err     error
}

func newFakeFlights() *fakeFlights {
	return &fakeFlights{flights: make(map[string]*types.Flight)}
}

func (f *fakeFlights) GetFlight(_ context.Context, id string) (*types.Flight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flights[id], nil
}

func (f *fakeFlights) SaveFlight(_ context.Context, flight *types.Flight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saves++
	f.flights[flight.ID] = flight
	return nil
}

var errUnavailable = errors.New("service unavailable")

func ids(wps []types.Waypoint) []string {
	out := make([]string, len(wps))
	for i, w := range wps {
		out[i] = w.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
