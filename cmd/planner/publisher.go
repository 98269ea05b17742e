package main

import (
	"context"

	"github.com/saviobatista/route-planner/internal/log"
	"github.com/saviobatista/route-planner/internal/types"
)

// EditPublisher interface for testability
type EditPublisher interface {
	PublishEdit(ev *types.EditEvent) error
}

// editForwarder hands session edit events to a publisher on its own
// goroutine. Enqueue never blocks the loop; when the buffer is full the
// event is dropped and logged.
type editForwarder struct {
	pub     EditPublisher
	events  chan types.EditEvent
	lg      *log.Logger
	dropped uint64
}

func newEditForwarder(pub EditPublisher, buffer int, lg *log.Logger) *editForwarder {
	return &editForwarder{
		pub:    pub,
		events: make(chan types.EditEvent, buffer),
		lg:     lg,
	}
}

// Enqueue is a session edit listener
func (f *editForwarder) Enqueue(ev types.EditEvent) {
	select {
	case f.events <- ev:
	default:
		f.dropped++
		f.lg.Warn("edit event dropped, publisher is behind", "event", ev.ID, "kind", string(ev.Kind), "dropped", f.dropped)
	}
}

// Run publishes queued events until ctx is cancelled, then drains what is
// already queued.
func (f *editForwarder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case ev := <-f.events:
					f.publish(ev)
				default:
					return
				}
			}
		case ev := <-f.events:
			f.publish(ev)
		}
	}
}

func (f *editForwarder) publish(ev types.EditEvent) {
	if err := f.pub.PublishEdit(&ev); err != nil {
		f.lg.Warn("failed to publish edit event", "event", ev.ID, "error", err)
	}
}
