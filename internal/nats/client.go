package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/saviobatista/route-planner/internal/log"
	"github.com/saviobatista/route-planner/internal/types"
)

const (
	SubjectRouteEdits = "route.edits"
	StreamRouteEdits  = "ROUTE_EDITS"
)

// Client publishes and consumes waypoint edit events over JetStream
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	lg   *log.Logger
}

// New creates a new NATS client and makes sure the edit stream exists.
// lg may be nil.
func New(url string, lg *log.Logger) (*Client, error) {
	nc, err := nats.Connect(url, nats.Name("route-planner"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     StreamRouteEdits,
		Subjects: []string{SubjectRouteEdits},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil && !strings.Contains(err.Error(), "stream name already in use") {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{
		conn: nc,
		js:   js,
		lg:   lg,
	}, nil
}

// PublishEdit publishes an edit event. The event id doubles as the
// JetStream message id so redelivered publishes are deduplicated.
func (c *Client) PublishEdit(ev *types.EditEvent) error {
	if ev == nil {
		return fmt.Errorf("nil edit event")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal edit event: %w", err)
	}

	if _, err := c.js.Publish(SubjectRouteEdits, data, nats.MsgId(ev.ID)); err != nil {
		return fmt.Errorf("failed to publish edit event: %w", err)
	}
	return nil
}

// SubscribeEdits delivers edit events to handler using a durable consumer,
// so a restarted subscriber resumes where it left off. An event whose
// handler fails is negatively acknowledged and redelivered.
func (c *Client) SubscribeEdits(durable string, handler func(*types.EditEvent) error) error {
	if handler == nil {
		return fmt.Errorf("nil handler")
	}
	_, err := c.js.Subscribe(SubjectRouteEdits, func(msg *nats.Msg) {
		var ev types.EditEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			c.lg.Warn("dropping malformed edit event", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(&ev); err != nil {
			c.lg.Warn("edit event handler failed", "event", ev.ID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, nats.Durable(durable), nats.ManualAck(), nats.DeliverAll())
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c != nil && c.conn != nil {
		c.conn.Close()
	}
}
