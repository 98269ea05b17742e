package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saviobatista/route-planner/internal/types"
)

const (
	flightTTL = 24 * time.Hour
	navLogTTL = time.Hour
	courseTTL = 24 * time.Hour
)

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Client caches flights, nav-log previews and course lookups
type Client struct {
	client RedisClientInterface
}

// New creates a new Redis client
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) setData(ctx context.Context, key string, value interface{}, ttl time.Duration, dataType string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s data: %w", dataType, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// getData retrieves data from Redis and unmarshals it into the target.
// It reports false when the key does not exist.
func (c *Client) getData(ctx context.Context, key string, target interface{}, dataType string) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s data: %w", dataType, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s data: %w", dataType, err)
	}
	return true, nil
}

func flightKey(id string) string {
	return "flight:" + id
}

// StoreFlight caches a saved flight
func (c *Client) StoreFlight(ctx context.Context, flight *types.Flight) error {
	return c.setData(ctx, flightKey(flight.ID), flight, flightTTL, "flight")
}

// GetFlight returns a cached flight, or nil when it is not cached
func (c *Client) GetFlight(ctx context.Context, id string) (*types.Flight, error) {
	var flight types.Flight
	found, err := c.getData(ctx, flightKey(id), &flight, "flight")
	if err != nil || !found {
		return nil, err
	}
	return &flight, nil
}

// DeleteFlight evicts a cached flight
func (c *Client) DeleteFlight(ctx context.Context, id string) error {
	return c.client.Del(ctx, flightKey(id)).Err()
}

// NavLogKey derives the cache key of a nav-log request from its content.
func NavLogKey(req *types.NavLogRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal nav-log request: %w", err)
	}
	sum := sha256.Sum256(data)
	return "navlog:" + hex.EncodeToString(sum[:]), nil
}

// StoreNavLog caches the result of a nav-log calculation
func (c *Client) StoreNavLog(ctx context.Context, req *types.NavLogRequest, navLog *types.NavLog) error {
	key, err := NavLogKey(req)
	if err != nil {
		return err
	}
	return c.setData(ctx, key, navLog, navLogTTL, "nav-log")
}

// GetNavLog returns a cached nav-log for an identical request, or nil
func (c *Client) GetNavLog(ctx context.Context, req *types.NavLogRequest) (*types.NavLog, error) {
	key, err := NavLogKey(req)
	if err != nil {
		return nil, err
	}
	var navLog types.NavLog
	found, err := c.getData(ctx, key, &navLog, "nav-log")
	if err != nil || !found {
		return nil, err
	}
	return &navLog, nil
}

func courseKey(fromLat, fromLon, toLat, toLon float64) string {
	return fmt.Sprintf("course:%.5f,%.5f:%.5f,%.5f", fromLat, fromLon, toLat, toLon)
}

// StoreCourse caches a course lookup between two positions
func (c *Client) StoreCourse(ctx context.Context, fromLat, fromLon, toLat, toLon float64, course *types.Course) error {
	return c.setData(ctx, courseKey(fromLat, fromLon, toLat, toLon), course, courseTTL, "course")
}

// GetCourse returns a cached course lookup, or nil
func (c *Client) GetCourse(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (*types.Course, error) {
	var course types.Course
	found, err := c.getData(ctx, courseKey(fromLat, fromLon, toLat, toLon), &course, "course")
	if err != nil || !found {
		return nil, err
	}
	return &course, nil
}
