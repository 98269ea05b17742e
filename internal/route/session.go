package route

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brunoga/deep"
	"github.com/google/uuid"
	"github.com/saviobatista/route-planner/internal/log"
	"github.com/saviobatista/route-planner/internal/types"
)

// NavLogService computes legs for a route
type NavLogService interface {
	Calculate(ctx context.Context, req *types.NavLogRequest) (*types.NavLog, error)
}

// FlightService loads and saves persisted flights
type FlightService interface {
	GetFlight(ctx context.Context, id string) (*types.Flight, error)
	SaveFlight(ctx context.Context, flight *types.Flight) error
}

// Options configures a Session. Every field is optional.
type Options struct {
	NavLog    NavLogService
	Flights   FlightService
	Scheduler Scheduler
	Debounce  time.Duration
	Recorder  Recorder
	Logger    *log.Logger
}

// Session is the route context: one Store per display mode, the active
// mode, and the leg data behind the read-only modes. Callers pass the
// session explicitly; there is no package-level route state.
type Session struct {
	mode   types.DisplayMode
	stores map[types.DisplayMode]*Store
	legs   map[types.DisplayMode][]types.Leg

	request    *types.NavLogRequest
	flight     *types.Flight
	editedFrom string

	viewVersion uint64
	customSeq   int
	listeners   []func(types.EditEvent)

	navlog   NavLogService
	flights  FlightService
	dragger  *Dragger
	recorder Recorder
	lg       *log.Logger
}

// NewSession creates a session in Planning mode with empty stores.
func NewSession(opts Options) *Session {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	s := &Session{
		mode:     types.ModePlanning,
		stores:   make(map[types.DisplayMode]*Store),
		legs:     make(map[types.DisplayMode][]types.Leg),
		navlog:   opts.NavLog,
		flights:  opts.Flights,
		recorder: recorder,
		lg:       opts.Logger,
	}
	s.dragger = NewDragger(opts.Scheduler, opts.Debounce, recorder)

	for _, m := range []types.DisplayMode{types.ModePlanning, types.ModeEditing, types.ModePreview, types.ModeViewing} {
		st := NewStore(m)
		st.Subscribe(s.onEdit)
		s.stores[m] = st
	}
	return s
}

func (s *Session) onEdit(ev types.EditEvent) {
	s.viewVersion++
	s.recorder.RecordMutation(string(ev.Kind))
	switch ev.Kind {
	case types.EditRemove:
		s.dragger.Cancel(ev.WaypointID)
	case types.EditClear:
		if id := s.dragger.Active(); id != "" {
			s.dragger.Cancel(id)
		}
	}
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// Subscribe registers fn for edit events from every store in the session.
func (s *Session) Subscribe(fn func(types.EditEvent)) {
	s.listeners = append(s.listeners, fn)
}

// Mode returns the active display mode
func (s *Session) Mode() types.DisplayMode {
	return s.mode
}

// Store returns the store for the active mode.
func (s *Session) Store() *Store {
	return s.stores[s.mode]
}

// StoreFor returns the store backing mode m
func (s *Session) StoreFor(m types.DisplayMode) *Store {
	return s.stores[m]
}

// Waypoints returns the active mode's ordered waypoints.
func (s *Session) Waypoints() []types.Waypoint {
	return s.Store().Waypoints()
}

// Legs returns the leg data for the active mode; nil in editable modes.
func (s *Session) Legs() []types.Leg {
	return s.legs[s.mode]
}

// Flight returns the flight shown in Viewing mode, if any
func (s *Session) Flight() *types.Flight {
	return s.flight
}

// ViewVersion changes whenever anything a renderer derives from the session
// may have changed.
func (s *Session) ViewVersion() uint64 {
	return s.viewVersion
}

func (s *Session) setMode(m types.DisplayMode) {
	if id := s.dragger.Active(); id != "" {
		s.dragger.Cancel(id)
	}
	if s.mode != m {
		s.lg.Debug("mode change", "from", s.mode.String(), "to", m.String())
	}
	s.mode = m
	s.viewVersion++
}

func (s *Session) rejected(err error) error {
	var re *RejectedError
	if errors.As(err, &re) {
		s.recorder.RecordRejected(re.Op)
		s.lg.Debug("route mutation rejected", "op", re.Op, "waypoint", re.ID, "reason", re.Reason.Error())
	}
	return err
}

// Add inserts w into the active route at the index chosen by
// PlanInsertion and returns that index.
func (s *Session) Add(w types.Waypoint, explicit *int) (int, error) {
	st := s.Store()
	if st.ReadOnly() {
		return -1, s.rejected(reject("insert", w.ID, ErrReadOnly))
	}
	idx := PlanInsertion(st.waypoints, w.Latitude, w.Longitude, explicit)
	if err := st.Insert(w, idx); err != nil {
		return -1, s.rejected(err)
	}
	return idx, nil
}

// AddAirport inserts an airport picked from search. An airport whose name is
// already on the route is rejected.
func (s *Session) AddAirport(name string, lat, lon float64, explicit *int) (types.Waypoint, error) {
	for _, w := range s.Store().waypoints {
		if w.Kind == types.KindAirport && strings.EqualFold(w.Name, name) {
			return types.Waypoint{}, s.rejected(reject("insert", w.ID, ErrDuplicateAirport))
		}
	}
	w := NewWaypoint(types.KindAirport, name, lat, lon)
	if _, err := s.Add(w, explicit); err != nil {
		return types.Waypoint{}, err
	}
	return w, nil
}

// AddCustom inserts a custom point from a map click. An empty name gets a
// generated "WaypointN" label.
func (s *Session) AddCustom(name string, lat, lon float64, explicit *int) (types.Waypoint, error) {
	if name == "" {
		name = fmt.Sprintf("Waypoint%d", s.customSeq+1)
	}
	w := NewWaypoint(types.KindCustom, name, lat, lon)
	if _, err := s.Add(w, explicit); err != nil {
		return types.Waypoint{}, err
	}
	s.customSeq++
	return w, nil
}

// Remove deletes a waypoint from the active route.
func (s *Session) Remove(id string) error {
	if err := s.Store().RemoveByID(id); err != nil {
		return s.rejected(err)
	}
	return nil
}

// Rename changes a waypoint's display name in the active route.
func (s *Session) Rename(id, name string) error {
	if err := s.Store().RenameByID(id, name); err != nil {
		return s.rejected(err)
	}
	return nil
}

// SetRefuel updates refueling metadata on an intermediate airport.
func (s *Session) SetRefuel(id string, refuel *types.Refuel) error {
	if err := s.Store().SetRefuel(id, refuel); err != nil {
		return s.rejected(err)
	}
	return nil
}

// Reorder applies a drag-and-drop list move. A rejected move leaves the
// route unchanged and returns false.
func (s *Session) Reorder(oldIndex, newIndex int) bool {
	st := s.Store()
	if st.ReadOnly() {
		return false
	}
	if Reorder(st, oldIndex, newIndex) {
		return true
	}
	if oldIndex != newIndex {
		s.recorder.RecordRejected("move")
	}
	return false
}

// BeginDrag starts a drag of id in the active route
func (s *Session) BeginDrag(id string) bool {
	return s.dragger.Begin(s.Store(), id)
}

// DragMove updates the live position of the dragged waypoint.
func (s *Session) DragMove(id string, lat, lon float64) {
	s.dragger.Move(id, lat, lon)
	s.viewVersion++
}

// DragEnd commits the final drag position.
func (s *Session) DragEnd(id string, lat, lon float64) error {
	if err := s.dragger.End(id, lat, lon); err != nil {
		return s.rejected(err)
	}
	return nil
}

// LivePosition returns the uncommitted drag position of id, if it is being
// dragged.
func (s *Session) LivePosition(id string) (LatLon, bool) {
	return s.dragger.Live(id)
}

// Calculate submits the active editable route to the nav-log service and
// switches to Preview. Calculated points are left out of the request; the
// service derives them again. A failed calculation leaves the session
// untouched.
func (s *Session) Calculate(ctx context.Context, aircraftProfileID string, cruiseAltitude float64, departure time.Time) error {
	if !s.mode.Editable() {
		return fmt.Errorf("calculate from %s: %w", s.mode, ErrInvalidTransition)
	}
	if s.navlog == nil {
		return fmt.Errorf("no nav-log service configured")
	}

	var wps []types.Waypoint
	for _, w := range s.Store().waypoints {
		if w.Kind != types.KindCalculated {
			wps = append(wps, w)
		}
	}
	if !IsComplete(wps) {
		return ErrIncompleteRoute
	}

	req := &types.NavLogRequest{
		Waypoints:         deep.MustCopy(wps),
		AircraftProfileID: aircraftProfileID,
		CruiseAltitude:    cruiseAltitude,
		DepartureTime:     departure,
	}
	nl, err := s.navlog.Calculate(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to calculate nav-log: %w", err)
	}

	if s.mode == types.ModeEditing && s.flight != nil {
		s.editedFrom = s.flight.ID
	} else {
		s.editedFrom = ""
	}
	s.request = req
	s.setLegs(types.ModePreview, nl.Legs)
	s.setMode(types.ModePreview)
	s.lg.Info("nav-log calculated", "legs", len(nl.Legs), "waypoints", len(wps))
	return nil
}

// Save persists the previewed nav-log as a flight and switches to Viewing.
// A preview calculated from Editing overwrites the flight being edited.
func (s *Session) Save(ctx context.Context, name string) (*types.Flight, error) {
	if s.mode != types.ModePreview {
		return nil, fmt.Errorf("save from %s: %w", s.mode, ErrInvalidTransition)
	}
	if s.flights == nil {
		return nil, fmt.Errorf("no flight service configured")
	}

	id := s.editedFrom
	if id == "" {
		id = uuid.New().String()
	}
	flight := &types.Flight{
		ID:                id,
		Name:              name,
		AircraftProfileID: s.request.AircraftProfileID,
		CruiseAltitude:    s.request.CruiseAltitude,
		DepartureTime:     s.request.DepartureTime,
		Legs:              deep.MustCopy(s.legs[types.ModePreview]),
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.flights.SaveFlight(ctx, flight); err != nil {
		return nil, fmt.Errorf("failed to save flight: %w", err)
	}

	s.view(flight)
	s.lg.Info("flight saved", "flight", flight.ID, "legs", len(flight.Legs))
	return flight, nil
}

// Open loads a persisted flight and switches to Viewing.
func (s *Session) Open(ctx context.Context, flightID string) error {
	if s.flights == nil {
		return fmt.Errorf("no flight service configured")
	}
	flight, err := s.flights.GetFlight(ctx, flightID)
	if err != nil {
		return fmt.Errorf("failed to load flight %s: %w", flightID, err)
	}
	if flight == nil {
		return fmt.Errorf("flight %s not found", flightID)
	}
	s.view(flight)
	return nil
}

func (s *Session) view(flight *types.Flight) {
	s.flight = flight
	s.setLegs(types.ModeViewing, flight.Legs)
	s.setMode(types.ModeViewing)
}

// Edit clones the viewed flight's waypoints into the Editing store.
func (s *Session) Edit() error {
	if s.mode != types.ModeViewing {
		return fmt.Errorf("edit from %s: %w", s.mode, ErrInvalidTransition)
	}
	clone, err := deep.Copy(s.stores[types.ModeViewing].waypoints)
	if err != nil {
		return fmt.Errorf("failed to clone route: %w", err)
	}
	s.stores[types.ModeEditing].load(clone)
	s.setMode(types.ModeEditing)
	return nil
}

// LeaveEditing discards nothing and returns to Viewing.
func (s *Session) LeaveEditing() error {
	if s.mode != types.ModeEditing {
		return fmt.Errorf("leave editing from %s: %w", s.mode, ErrInvalidTransition)
	}
	s.setMode(types.ModeViewing)
	return nil
}

// StartOver clears the draft and returns to Planning.
func (s *Session) StartOver() {
	s.setMode(types.ModePlanning)
	if s.stores[types.ModePlanning].Len() > 0 {
		_ = s.stores[types.ModePlanning].Clear()
	}
	s.request = nil
	s.flight = nil
	s.editedFrom = ""
	s.customSeq = 0
	s.setLegs(types.ModePreview, nil)
	s.setLegs(types.ModeViewing, nil)
	s.stores[types.ModeEditing].load(nil)
}

func (s *Session) setLegs(m types.DisplayMode, legs []types.Leg) {
	s.legs[m] = legs
	s.stores[m].load(ExtractPoints(legs))
	s.viewVersion++
}
