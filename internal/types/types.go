package types

import (
	"time"
)

// Kind classifies a waypoint. The set is closed.
type Kind string

const (
	KindAirport    Kind = "airport"
	KindCustom     Kind = "custom"
	KindCalculated Kind = "calculated"
)

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	switch k {
	case KindAirport, KindCustom, KindCalculated:
		return true
	}
	return false
}

// Refuel holds refueling metadata for an intermediate airport stop
type Refuel struct {
	IsStop     bool     `json:"is_stop"`
	ToFull     bool     `json:"to_full"`
	RefuelGals *float64 `json:"refuel_gals,omitempty"`
}

// Waypoint represents a single point of a route
type Waypoint struct {
	ID        string   `json:"id"`
	Kind      Kind     `json:"kind"`
	Name      string   `json:"name"`
	Named     bool     `json:"named"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Refuel    *Refuel  `json:"refuel,omitempty"`
}

// HasAltitude reports whether the waypoint carries an altitude
func (w Waypoint) HasAltitude() bool {
	return w.Altitude != nil
}

// Leg is a computed route segment as returned by the nav-log service
type Leg struct {
	Start             Waypoint  `json:"leg_start_point"`
	End               Waypoint  `json:"leg_end_point"`
	DistanceNM        float64   `json:"distance_nm"`
	GroundSpeed       float64   `json:"ground_speed"`
	TrueCourse        float64   `json:"true_course"`
	MagneticCourse    float64   `json:"magnetic_course"`
	WindDirection     float64   `json:"wind_direction"`
	WindSpeed         float64   `json:"wind_speed"`
	RemainingFuelGals *float64  `json:"remaining_fuel_gals,omitempty"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Altitude          *float64  `json:"altitude,omitempty"`
}

// NavLogRequest is submitted to the nav-log calculation service
type NavLogRequest struct {
	Waypoints         []Waypoint `json:"waypoints"`
	AircraftProfileID string     `json:"aircraft_profile_id"`
	CruiseAltitude    float64    `json:"cruise_altitude"`
	DepartureTime     time.Time  `json:"departure_time"`
}

// NavLog is the nav-log calculation result
type NavLog struct {
	Legs         []Leg     `json:"legs"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// Flight represents a persisted, calculated flight
type Flight struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	AircraftProfileID string    `json:"aircraft_profile_id"`
	CruiseAltitude    float64   `json:"cruise_altitude"`
	DepartureTime     time.Time `json:"departure_time"`
	Legs              []Leg     `json:"legs"`
	CreatedAt         time.Time `json:"created_at"`
}

// Course is a bearing/distance lookup result for one waypoint pair
type Course struct {
	TrueCourse float64 `json:"true_course"`
	DistanceNM float64 `json:"distance_nm"`
}

// DisplayMode selects which route variant is authoritative and how it renders
type DisplayMode int

const (
	ModePlanning DisplayMode = iota
	ModeEditing
	ModePreview
	ModeViewing
)

func (m DisplayMode) String() string {
	switch m {
	case ModePlanning:
		return "planning"
	case ModeEditing:
		return "editing"
	case ModePreview:
		return "preview"
	case ModeViewing:
		return "viewing"
	}
	return "unknown"
}

// Editable reports whether waypoints may be changed in this mode
func (m DisplayMode) Editable() bool {
	return m == ModePlanning || m == ModeEditing
}

// EditKind names the mutation carried by an EditEvent
type EditKind string

const (
	EditInsert     EditKind = "insert"
	EditRemove     EditKind = "remove"
	EditRename     EditKind = "rename"
	EditMove       EditKind = "move"
	EditReposition EditKind = "reposition"
	EditRefuel     EditKind = "refuel"
	EditClear      EditKind = "clear"
)

// EditEvent describes one successful waypoint store mutation
type EditEvent struct {
	ID         string      `json:"id"`
	Kind       EditKind    `json:"kind"`
	Mode       DisplayMode `json:"mode"`
	WaypointID string      `json:"waypoint_id,omitempty"`
	Name       string      `json:"name,omitempty"`
	Index      int         `json:"index"`
	Latitude   float64     `json:"latitude,omitempty"`
	Longitude  float64     `json:"longitude,omitempty"`
	Version    uint64      `json:"version"`
	Timestamp  time.Time   `json:"timestamp"`
}

// EditKinds lists every EditKind in a fixed order, used to lay out
// per-kind counters.
var EditKinds = []EditKind{EditInsert, EditRemove, EditRename, EditMove, EditReposition, EditRefuel, EditClear}

// EditStats is a snapshot of route editing counters.
type EditStats struct {
	Time             time.Time
	Mutations        []uint64 // indexed like EditKinds
	Rejected         []uint64 // indexed like EditKinds
	Commits          uint64
	DiscardedCommits uint64
	Uptime           time.Duration
}
