// Package course looks up true course and great-circle distance between
// two positions from the remote bearing/distance service.
package course

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/saviobatista/route-planner/internal/types"
)

const timeoutSec = 10

// Client is a typed HTTP client for the bearing/distance service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new client. apiKey may be empty.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeoutSec * time.Second,
		},
	}
}

// doRequest performs a GET request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, dest any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("course: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("course: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("course: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("course: decoding response: %w", err)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Lookup fetches the course from one position to another.
func (c *Client) Lookup(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (*types.Course, error) {
	params := url.Values{
		"from_lat": {formatCoord(fromLat)},
		"from_lon": {formatCoord(fromLon)},
		"to_lat":   {formatCoord(toLat)},
		"to_lon":   {formatCoord(toLon)},
	}
	var out types.Course
	if err := c.doRequest(ctx, "/course", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
