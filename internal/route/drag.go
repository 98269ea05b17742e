package route

import (
	"time"
)

// DefaultDebounce is the inactivity window before a drag position is
// committed to the store.
const DefaultDebounce = 500 * time.Millisecond

// LatLon is a bare position
type LatLon struct {
	Lat float64
	Lon float64
}

type pendingCommit struct {
	id    string
	pos   LatLon
	gen   uint64
	timer Timer
}

// Dragger splits a drag into two slots: a live position updated on every
// move event, and a committed position written to the store once the
// pointer has been still for the debounce window, or at drag end.
type Dragger struct {
	scheduler Scheduler
	window    time.Duration
	recorder  Recorder

	store   *Store
	active  string
	live    map[string]LatLon
	pending *pendingCommit
	gen     uint64
}

// NewDragger creates a dragger. A zero window uses DefaultDebounce. With a
// nil scheduler positions are only committed at drag end.
func NewDragger(scheduler Scheduler, window time.Duration, recorder Recorder) *Dragger {
	if scheduler == nil {
		scheduler = idleScheduler{}
	}
	if window <= 0 {
		window = DefaultDebounce
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Dragger{
		scheduler: scheduler,
		window:    window,
		recorder:  recorder,
		live:      make(map[string]LatLon),
	}
}

// Active returns the id of the waypoint being dragged, or "".
func (d *Dragger) Active() string {
	return d.active
}

// Live returns the last visual position for id during a drag
func (d *Dragger) Live(id string) (LatLon, bool) {
	p, ok := d.live[id]
	return p, ok
}

// Begin starts dragging id in s. Only one drag may be active, and only
// waypoints the store would let move can be dragged.
func (d *Dragger) Begin(s *Store, id string) bool {
	if d.active != "" || s.ReadOnly() {
		return false
	}
	w, ok := s.Get(id)
	if !ok || !Draggable(w.Kind) {
		return false
	}
	d.store = s
	d.active = id
	d.live[id] = LatLon{Lat: w.Latitude, Lon: w.Longitude}
	return true
}

// Move records a new live position and restarts the debounce window.
func (d *Dragger) Move(id string, lat, lon float64) {
	if id == "" || id != d.active {
		return
	}
	pos := LatLon{Lat: lat, Lon: lon}
	d.live[id] = pos

	if d.pending != nil {
		d.pending.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = &pendingCommit{id: id, pos: pos, gen: gen}
	d.pending.timer = d.scheduler.AfterFunc(d.window, func() { d.fire(gen) })
}

// End commits the final position immediately and finishes the drag.
func (d *Dragger) End(id string, lat, lon float64) error {
	if id == "" || id != d.active {
		return nil
	}
	d.stopPending()
	s := d.store
	d.active, d.store = "", nil
	delete(d.live, id)

	if err := s.SetPosition(id, lat, lon); err != nil {
		return err
	}
	d.recorder.RecordCommit()
	return nil
}

// Cancel drops any drag state for id, including a pending commit. It is
// called when the waypoint is deleted so a late commit cannot resurrect it.
func (d *Dragger) Cancel(id string) {
	if d.pending != nil && d.pending.id == id {
		d.stopPending()
		d.recorder.RecordDiscardedCommit()
	}
	delete(d.live, id)
	if d.active == id {
		d.active, d.store = "", nil
	}
}

func (d *Dragger) stopPending() {
	if d.pending != nil {
		d.pending.timer.Stop()
		d.pending = nil
	}
}

func (d *Dragger) fire(gen uint64) {
	p := d.pending
	if p == nil || p.gen != gen || d.store == nil {
		// Superseded or cancelled after the timer already fired.
		return
	}
	d.pending = nil
	if err := d.store.SetPosition(p.id, p.pos.Lat, p.pos.Lon); err != nil {
		d.recorder.RecordDiscardedCommit()
		return
	}
	d.recorder.RecordCommit()
}

type idleScheduler struct{}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

func (idleScheduler) AfterFunc(time.Duration, func()) Timer { return idleTimer{} }
