package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/saviobatista/route-planner/internal/types"
)

// Airport creates an airport waypoint whose id is its name
func Airport(name string, lat, lon float64) types.Waypoint {
	return types.Waypoint{
		ID:        name,
		Kind:      types.KindAirport,
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
	}
}

// Custom creates a custom waypoint with the given id
func Custom(id string, lat, lon float64) types.Waypoint {
	return types.Waypoint{
		ID:        id,
		Kind:      types.KindCustom,
		Name:      id,
		Latitude:  lat,
		Longitude: lon,
	}
}

// Calculated creates a calculated waypoint at the given altitude
func Calculated(id, name string, lat, lon, alt float64) types.Waypoint {
	return types.Waypoint{
		ID:        id,
		Kind:      types.KindCalculated,
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		Altitude:  &alt,
	}
}

// WithAltitude returns a copy of w at the given altitude in feet.
func WithAltitude(w types.Waypoint, alt float64) types.Waypoint {
	w.Altitude = &alt
	return w
}

// Legs chains wps into consecutive legs, one hour apart, starting at 12:00 UTC.
func Legs(wps ...types.Waypoint) []types.Leg {
	if len(wps) < 2 {
		return nil
	}
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	legs := make([]types.Leg, 0, len(wps)-1)
	for i := 0; i+1 < len(wps); i++ {
		legs = append(legs, types.Leg{
			Start:     wps[i],
			End:       wps[i+1],
			StartTime: start.Add(time.Duration(i) * time.Hour),
			EndTime:   start.Add(time.Duration(i+1) * time.Hour),
		})
	}
	return legs
}

// Fuel returns a pointer to gallons, for Leg.RemainingFuelGals
func Fuel(gallons float64) *float64 {
	return &gallons
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
