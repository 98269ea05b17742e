package route

import (
	"context"
	"time"
)

// Loop runs posted functions one at a time on a single goroutine. It is the
// only writer of a session's stores; timers and input readers post onto it
// instead of mutating state themselves.
type Loop struct {
	events chan func()
	done   chan struct{}
}

// NewLoop creates a loop with the given event buffer size
func NewLoop(buffer int) *Loop {
	return &Loop{
		events: make(chan func(), buffer),
		done:   make(chan struct{}),
	}
}

// Post queues fn. It returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do queues fn and waits for it to run.
func (l *Loop) Do(fn func()) bool {
	ran := make(chan struct{})
	if !l.Post(func() {
		fn()
		close(ran)
	}) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.done:
		return false
	}
}

// Run executes queued functions until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.events:
			fn()
		}
	}
}

// Timer is a pending scheduled call
type Timer interface {
	Stop() bool
}

// Scheduler arranges for fn to be called after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// LoopScheduler fires timers by posting onto a Loop, so timer callbacks are
// serialised with user gestures.
type LoopScheduler struct {
	loop *Loop
}

// NewLoopScheduler creates a scheduler that delivers onto loop
func NewLoopScheduler(loop *Loop) *LoopScheduler {
	return &LoopScheduler{loop: loop}
}

func (s *LoopScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() {
		s.loop.Post(fn)
	})
}
