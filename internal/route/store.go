package route

import (
	"time"

	"github.com/brunoga/deep"
	"github.com/google/uuid"
	"github.com/saviobatista/route-planner/internal/types"
)

// Store holds the ordered waypoint sequence for one display mode.
//
// A Store is not safe for concurrent use; all calls are expected to come
// from the event loop that owns the session.
type Store struct {
	mode      types.DisplayMode
	readOnly  bool
	waypoints []types.Waypoint
	version   uint64
	listeners []func(types.EditEvent)
}

// NewStore creates an empty store for the given mode. Stores for modes that
// are not editable reject every user mutation.
func NewStore(mode types.DisplayMode) *Store {
	return &Store{
		mode:     mode,
		readOnly: !mode.Editable(),
	}
}

// NewWaypoint creates a waypoint with a fresh unique id.
func NewWaypoint(kind types.Kind, name string, lat, lon float64) types.Waypoint {
	return types.Waypoint{
		ID:        uuid.New().String(),
		Kind:      kind,
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
	}
}

// Mode returns the display mode this store backs
func (s *Store) Mode() types.DisplayMode {
	return s.mode
}

// ReadOnly reports whether user mutations are rejected
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// Version increases on every successful mutation.
func (s *Store) Version() uint64 {
	return s.version
}

// Len returns the number of waypoints
func (s *Store) Len() int {
	return len(s.waypoints)
}

// Waypoints returns a deep copy of the ordered sequence. Changing the
// result, including its altitude and refuel fields, never touches the store.
func (s *Store) Waypoints() []types.Waypoint {
	out := make([]types.Waypoint, len(s.waypoints))
	for i, w := range s.waypoints {
		out[i] = deep.MustCopy(w)
	}
	return out
}

// At returns the waypoint at index
func (s *Store) At(index int) (types.Waypoint, bool) {
	if index < 0 || index >= len(s.waypoints) {
		return types.Waypoint{}, false
	}
	return deep.MustCopy(s.waypoints[index]), true
}

// IndexOf returns the index of the waypoint with the given id, or -1.
func (s *Store) IndexOf(id string) int {
	for i := range s.waypoints {
		if s.waypoints[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the waypoint with the given id
func (s *Store) Get(id string) (types.Waypoint, bool) {
	if i := s.IndexOf(id); i >= 0 {
		return deep.MustCopy(s.waypoints[i]), true
	}
	return types.Waypoint{}, false
}

// Subscribe registers fn to receive an event for every successful mutation.
func (s *Store) Subscribe(fn func(types.EditEvent)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Store) commit(ev types.EditEvent) {
	s.version++
	ev.ID = uuid.New().String()
	ev.Mode = s.mode
	ev.Version = s.version
	ev.Timestamp = time.Now().UTC()
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// Insert places w at index. The insertion is rejected if the id is already
// present, the index is out of range, or w would break the airport-first
// rule.
func (s *Store) Insert(w types.Waypoint, index int) error {
	const op = "insert"
	switch {
	case s.readOnly:
		return reject(op, w.ID, ErrReadOnly)
	case !w.Kind.Valid():
		return reject(op, w.ID, ErrInvalidKind)
	case s.IndexOf(w.ID) >= 0:
		return reject(op, w.ID, ErrDuplicateID)
	case index < 0 || index > len(s.waypoints):
		return reject(op, w.ID, ErrIndexOutOfRange)
	case !CanInsert(s.waypoints, w, index):
		return reject(op, w.ID, ErrAirportFirst)
	}

	s.waypoints = append(s.waypoints, types.Waypoint{})
	copy(s.waypoints[index+1:], s.waypoints[index:])
	s.waypoints[index] = w

	s.commit(types.EditEvent{
		Kind:       types.EditInsert,
		WaypointID: w.ID,
		Name:       w.Name,
		Index:      index,
		Latitude:   w.Latitude,
		Longitude:  w.Longitude,
	})
	return nil
}

// RemoveByID deletes the waypoint with the given id. Calculated points
// cannot be removed, nor can the first airport when its successor is not
// an airport.
func (s *Store) RemoveByID(id string) error {
	const op = "remove"
	if s.readOnly {
		return reject(op, id, ErrReadOnly)
	}
	i := s.IndexOf(id)
	if i < 0 {
		return reject(op, id, ErrUnknownWaypoint)
	}
	if s.waypoints[i].Kind == types.KindCalculated {
		return reject(op, id, ErrCalculatedPoint)
	}
	if !CanRemove(s.waypoints, i) {
		return reject(op, id, ErrAirportFirst)
	}

	w := s.waypoints[i]
	s.waypoints = append(s.waypoints[:i], s.waypoints[i+1:]...)

	s.commit(types.EditEvent{
		Kind:       types.EditRemove,
		WaypointID: id,
		Name:       w.Name,
		Index:      i,
	})
	return nil
}

// RenameByID changes the display name. Renaming a custom waypoint marks it
// as user-named.
func (s *Store) RenameByID(id, name string) error {
	const op = "rename"
	if s.readOnly {
		return reject(op, id, ErrReadOnly)
	}
	i := s.IndexOf(id)
	if i < 0 {
		return reject(op, id, ErrUnknownWaypoint)
	}
	w := &s.waypoints[i]
	if w.Kind == types.KindCalculated {
		return reject(op, id, ErrCalculatedPoint)
	}

	w.Name = name
	if w.Kind == types.KindCustom {
		w.Named = true
	}

	s.commit(types.EditEvent{
		Kind:       types.EditRename,
		WaypointID: id,
		Name:       name,
		Index:      i,
	})
	return nil
}

// MoveTo moves the waypoint with the given id to newIndex, shifting the
// others. Moving to the current index is a successful no-op.
func (s *Store) MoveTo(id string, newIndex int) error {
	const op = "move"
	if s.readOnly {
		return reject(op, id, ErrReadOnly)
	}
	old := s.IndexOf(id)
	if old < 0 {
		return reject(op, id, ErrUnknownWaypoint)
	}
	if newIndex < 0 || newIndex >= len(s.waypoints) {
		return reject(op, id, ErrIndexOutOfRange)
	}
	if old == newIndex {
		return nil
	}
	if !CanMove(s.waypoints, old, newIndex) {
		return reject(op, id, ErrAirportFirst)
	}

	w := s.waypoints[old]
	s.waypoints = append(s.waypoints[:old], s.waypoints[old+1:]...)
	s.waypoints = append(s.waypoints, types.Waypoint{})
	copy(s.waypoints[newIndex+1:], s.waypoints[newIndex:])
	s.waypoints[newIndex] = w

	s.commit(types.EditEvent{
		Kind:       types.EditMove,
		WaypointID: id,
		Name:       w.Name,
		Index:      newIndex,
	})
	return nil
}

// SetPosition moves the waypoint with the given id to a new lat/long.
func (s *Store) SetPosition(id string, lat, lon float64) error {
	const op = "reposition"
	if s.readOnly {
		return reject(op, id, ErrReadOnly)
	}
	i := s.IndexOf(id)
	if i < 0 {
		return reject(op, id, ErrUnknownWaypoint)
	}
	w := &s.waypoints[i]
	if w.Kind == types.KindCalculated {
		return reject(op, id, ErrCalculatedPoint)
	}

	w.Latitude, w.Longitude = lat, lon

	s.commit(types.EditEvent{
		Kind:       types.EditReposition,
		WaypointID: id,
		Name:       w.Name,
		Index:      i,
		Latitude:   lat,
		Longitude:  lon,
	})
	return nil
}

// SetRefuel sets or clears the refueling metadata of an intermediate
// airport.
func (s *Store) SetRefuel(id string, refuel *types.Refuel) error {
	const op = "refuel"
	if s.readOnly {
		return reject(op, id, ErrReadOnly)
	}
	i := s.IndexOf(id)
	if i < 0 {
		return reject(op, id, ErrUnknownWaypoint)
	}
	if !IsIntermediateAirport(s.waypoints, i) {
		return reject(op, id, ErrNotIntermediateAirport)
	}

	if refuel != nil {
		r := *refuel
		s.waypoints[i].Refuel = &r
	} else {
		s.waypoints[i].Refuel = nil
	}

	s.commit(types.EditEvent{
		Kind:       types.EditRefuel,
		WaypointID: id,
		Name:       s.waypoints[i].Name,
		Index:      i,
	})
	return nil
}

// Clear removes every waypoint.
func (s *Store) Clear() error {
	if s.readOnly {
		return reject("clear", "", ErrReadOnly)
	}
	s.waypoints = nil
	s.commit(types.EditEvent{Kind: types.EditClear})
	return nil
}

// load replaces the contents wholesale, bypassing read-only and ordering
// checks. It is used to populate stores from server-computed legs.
func (s *Store) load(wps []types.Waypoint) {
	s.waypoints = make([]types.Waypoint, len(wps))
	copy(s.waypoints, wps)
	s.version++
}
