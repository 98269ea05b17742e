// Package navlog talks to the remote nav-log calculation service.
package navlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saviobatista/route-planner/internal/log"
	"github.com/saviobatista/route-planner/internal/types"
)

const timeoutSec = 30

// ErrTooFewWaypoints is returned before any request is made when the
// route cannot form a leg.
var ErrTooFewWaypoints = errors.New("navlog: at least two waypoints are required")

// Client is a typed HTTP client for the nav-log service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a nav-log client. apiKey may be empty.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeoutSec * time.Second,
		},
	}
}

// doRequest POSTs body as JSON and decodes the JSON response into dest.
func (c *Client) doRequest(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("navlog: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("navlog: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("navlog: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("navlog: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("navlog: decoding response: %w", err)
	}
	return nil
}

// Calculate submits a route and returns its computed legs.
func (c *Client) Calculate(ctx context.Context, r *types.NavLogRequest) (*types.NavLog, error) {
	if len(r.Waypoints) < 2 {
		return nil, ErrTooFewWaypoints
	}
	var out types.NavLog
	if err := c.doRequest(ctx, "/navlog", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Calculator computes nav-logs. Client satisfies it.
type Calculator interface {
	Calculate(ctx context.Context, r *types.NavLogRequest) (*types.NavLog, error)
}

// Cache stores nav-logs by request. The redis client satisfies it.
type Cache interface {
	GetNavLog(ctx context.Context, r *types.NavLogRequest) (*types.NavLog, error)
	StoreNavLog(ctx context.Context, r *types.NavLogRequest, n *types.NavLog) error
}

// Cached serves repeated previews of an unchanged route from a cache.
// Cache failures are logged and fall through to the calculator.
type Cached struct {
	next  Calculator
	cache Cache
	lg    *log.Logger
}

// NewCached wraps next with cache.
func NewCached(next Calculator, cache Cache, lg *log.Logger) *Cached {
	return &Cached{next: next, cache: cache, lg: lg}
}

func (c *Cached) Calculate(ctx context.Context, r *types.NavLogRequest) (*types.NavLog, error) {
	if hit, err := c.cache.GetNavLog(ctx, r); err != nil {
		c.lg.Warn("nav-log cache read failed", "error", err)
	} else if hit != nil {
		c.lg.Debug("nav-log cache hit", "waypoints", len(r.Waypoints))
		return hit, nil
	}

	n, err := c.next.Calculate(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := c.cache.StoreNavLog(ctx, r, n); err != nil {
		c.lg.Warn("nav-log cache write failed", "error", err)
	}
	return n, nil
}
