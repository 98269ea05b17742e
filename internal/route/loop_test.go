package route

import (
	"context"
	"testing"
	"time"
)

func TestLoop_RunsInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLoop(16)
	go l.Run(ctx)

	var got []int
	for i := 0; i < 5; i++ {
		l.Post(func() { got = append(got, i) })
	}
	if !l.Do(func() {}) {
		t.Fatal("Do returned false on a running loop")
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("Expected in-order execution, got %v", got)
		}
	}
	if len(got) != 5 {
		t.Errorf("Expected 5 calls, got %d", len(got))
	}
}

func TestLoop_StoppedLoopRejectsPosts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLoop(0)
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	if l.Post(func() {}) {
		t.Error("Post succeeded after the loop stopped")
	}
	if l.Do(func() {}) {
		t.Error("Do succeeded after the loop stopped")
	}
}

func TestLoopScheduler_FiresOnLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLoop(4)
	go l.Run(ctx)
	sched := NewLoopScheduler(l)

	fired := make(chan struct{})
	sched.AfterFunc(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Timer callback never ran")
	}

	stopped := sched.AfterFunc(time.Hour, func() { t.Error("Stopped timer fired") })
	if !stopped.Stop() {
		t.Error("Expected Stop to cancel a pending timer")
	}
}

// A session driven through the loop commits a drag after the real debounce
// window, with the timer callback serialised with other loop work.
func TestLoopScheduler_DebouncedDrag(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLoop(16)
	go l.Run(ctx)
	s := NewSession(Options{Scheduler: NewLoopScheduler(l), Debounce: 20 * time.Millisecond})

	var id string
	l.Do(func() {
		s.AddAirport("KJFK", 40.6413, -73.7781, nil)
		w, _ := s.AddCustom("", 41.5, -72.5, nil)
		id = w.ID
		s.BeginDrag(id)
		s.DragMove(id, 41.6, -72.6)
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var lat float64
		l.Do(func() {
			w, _ := s.Store().Get(id)
			lat = w.Latitude
		})
		if lat == 41.6 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Debounced commit never reached the store")
}
