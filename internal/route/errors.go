package route

import (
	"errors"
	"fmt"
)

// Reasons a route mutation is rejected. A rejection leaves the store
// untouched and is an expected outcome of interaction, not a fault.
var (
	ErrAirportFirst           = errors.New("first waypoint must be an airport")
	ErrDuplicateID            = errors.New("waypoint id already in route")
	ErrDuplicateAirport       = errors.New("airport already in route")
	ErrUnknownWaypoint        = errors.New("waypoint not in route")
	ErrCalculatedPoint        = errors.New("calculated points are not editable")
	ErrReadOnly               = errors.New("route is read-only in this mode")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrNotIntermediateAirport = errors.New("refuel applies only to intermediate airports")
	ErrInvalidKind            = errors.New("invalid waypoint kind")
)

// ErrInvalidTransition is returned when a mode change is not allowed from
// the current mode.
var ErrInvalidTransition = errors.New("invalid mode transition")

// ErrIncompleteRoute is returned when a calculation is requested for a
// route with fewer than two waypoints.
var ErrIncompleteRoute = errors.New("route needs at least two waypoints")

// RejectedError reports a validation no-op.
type RejectedError struct {
	Op     string
	ID     string
	Reason error
}

func (e *RejectedError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s rejected: %v", e.Op, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s rejected: %v", e.Op, e.Reason)
}

func (e *RejectedError) Unwrap() error {
	return e.Reason
}

func reject(op, id string, reason error) error {
	return &RejectedError{Op: op, ID: id, Reason: reason}
}

// IsRejected reports whether err is a validation rejection rather than a
// failure.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}
