package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kr/pretty"
	"github.com/saviobatista/route-planner/internal/db"
	"github.com/saviobatista/route-planner/internal/log"
	"github.com/saviobatista/route-planner/internal/parser"
	"github.com/saviobatista/route-planner/internal/render"
	"github.com/saviobatista/route-planner/internal/route"
	"github.com/saviobatista/route-planner/internal/search"
	"github.com/saviobatista/route-planner/internal/types"
)

var errLoopStopped = errors.New("planner loop stopped")

// AirportSearcher interface for testability
type AirportSearcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// FlightLister interface for testability
type FlightLister interface {
	ListFlights(ctx context.Context, limit int) ([]db.FlightSummary, error)
}

// Services are the optional collaborators of a Planner. A nil field turns
// the commands that need it into errors.
type Services struct {
	Courses route.CourseService
	Search  AirportSearcher
	Flights FlightLister
}

// Planner executes parsed commands against a route session. Session state is
// only touched on the loop goroutine.
type Planner struct {
	loop     *route.Loop
	session  *route.Session
	renderer *render.Renderer
	svc      Services
	out      io.Writer
	lg       *log.Logger
}

// NewPlanner creates a planner writing its output to out
func NewPlanner(loop *route.Loop, session *route.Session, svc Services, out io.Writer, lg *log.Logger) *Planner {
	return &Planner{
		loop:     loop,
		session:  session,
		renderer: render.NewRenderer(session),
		svc:      svc,
		out:      out,
		lg:       lg,
	}
}

// Execute runs one command
func (p *Planner) Execute(ctx context.Context, cmd *parser.Command) error {
	switch cmd.Type {
	case parser.CmdSearch:
		return p.searchAirport(ctx, cmd)
	case parser.CmdSummary:
		return p.summary(ctx)
	case parser.CmdList:
		return p.list(ctx, cmd.Limit)
	}

	var err error
	if !p.loop.Do(func() { err = p.apply(ctx, cmd) }) {
		return errLoopStopped
	}
	return err
}

// apply runs on the loop
func (p *Planner) apply(ctx context.Context, cmd *parser.Command) error {
	s := p.session
	switch cmd.Type {
	case parser.CmdAirport:
		w, err := s.AddAirport(cmd.Name, cmd.Latitude, cmd.Longitude, cmd.Index)
		if err != nil {
			return err
		}
		p.printf("added %s at #%d\n", w.Name, s.Store().IndexOf(w.ID))

	case parser.CmdAdd:
		w, err := s.AddCustom(cmd.Name, cmd.Latitude, cmd.Longitude, cmd.Index)
		if err != nil {
			return err
		}
		p.printf("added %s at #%d\n", w.Name, s.Store().IndexOf(w.ID))

	case parser.CmdRemove:
		id, err := p.resolve(cmd.Ref)
		if err != nil {
			return err
		}
		return s.Remove(id)

	case parser.CmdRename:
		id, err := p.resolve(cmd.Ref)
		if err != nil {
			return err
		}
		return s.Rename(id, cmd.Name)

	case parser.CmdMove:
		if !s.Reorder(cmd.From, cmd.To) {
			return fmt.Errorf("move #%d to #%d rejected", cmd.From, cmd.To)
		}

	case parser.CmdDrag:
		id, err := p.resolve(cmd.Ref)
		if err != nil {
			return err
		}
		if _, dragging := s.LivePosition(id); !dragging && !s.BeginDrag(id) {
			return fmt.Errorf("waypoint %s cannot be dragged", cmd.Ref)
		}
		s.DragMove(id, cmd.Latitude, cmd.Longitude)

	case parser.CmdDrop:
		id, err := p.resolve(cmd.Ref)
		if err != nil {
			return err
		}
		if _, dragging := s.LivePosition(id); !dragging {
			return fmt.Errorf("waypoint %s is not being dragged", cmd.Ref)
		}
		return s.DragEnd(id, cmd.Latitude, cmd.Longitude)

	case parser.CmdRefuel:
		id, err := p.resolve(cmd.Ref)
		if err != nil {
			return err
		}
		return s.SetRefuel(id, cmd.Refuel)

	case parser.CmdCalc:
		if err := s.Calculate(ctx, cmd.AircraftProfileID, cmd.CruiseAltitude, cmd.DepartureTime); err != nil {
			return err
		}
		p.printf("calculated %d legs\n", len(s.Legs()))

	case parser.CmdSave:
		f, err := s.Save(ctx, cmd.Name)
		if err != nil {
			return err
		}
		p.printf("saved flight %s\n", f.ID)

	case parser.CmdOpen:
		if err := s.Open(ctx, cmd.FlightID); err != nil {
			return err
		}
		p.printf("opened flight %s\n", cmd.FlightID)

	case parser.CmdEdit:
		return s.Edit()

	case parser.CmdDone:
		return s.LeaveEditing()

	case parser.CmdReset:
		s.StartOver()

	case parser.CmdView:
		p.printView(p.renderer.View())

	case parser.CmdDump:
		if f := s.Flight(); f != nil && s.Mode() == types.ModeViewing {
			_, err := pretty.Fprintf(p.out, "%# v\n", f)
			return err
		}
		_, err := pretty.Fprintf(p.out, "%# v\n", s.Waypoints())
		return err

	default:
		return fmt.Errorf("unsupported command: %s", cmd.Type)
	}
	return nil
}

// resolve turns "#<index>" or a waypoint id into an id in the active route.
func (p *Planner) resolve(ref string) (string, error) {
	st := p.session.Store()
	if i, ok := parser.RefIndex(ref); ok {
		w, ok := st.At(i)
		if !ok {
			return "", fmt.Errorf("no waypoint at %s", ref)
		}
		return w.ID, nil
	}
	if _, ok := st.Get(ref); !ok {
		return "", fmt.Errorf("unknown waypoint %s", ref)
	}
	return ref, nil
}

func (p *Planner) searchAirport(ctx context.Context, cmd *parser.Command) error {
	if p.svc.Search == nil {
		return fmt.Errorf("airport search is not configured")
	}
	results, err := p.svc.Search.Search(ctx, cmd.Query)
	if err != nil {
		return fmt.Errorf("failed to search %q: %w", cmd.Query, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no airport found for %q", cmd.Query)
	}
	for _, r := range results[1:] {
		p.lg.Debug("alternative search result", "name", r.Name, "address", r.Address)
	}

	best := results[0]
	return p.Execute(ctx, &parser.Command{
		Type:      parser.CmdAirport,
		Name:      best.Name,
		Latitude:  best.Latitude,
		Longitude: best.Longitude,
		Index:     cmd.Index,
	})
}

// summary snapshots the route on the loop and fetches courses off it, so
// slow lookups never hold up drags.
func (p *Planner) summary(ctx context.Context) error {
	var wps []types.Waypoint
	if !p.loop.Do(func() { wps = p.session.Waypoints() }) {
		return errLoopStopped
	}

	sum := route.Summarize(ctx, p.svc.Courses, wps)
	for _, leg := range sum.Legs {
		if leg.Course == nil {
			p.printf("%s -> %s: no data\n", leg.From.Name, leg.To.Name)
			continue
		}
		p.printf("%s -> %s: %03.0f° %.1f nm\n", leg.From.Name, leg.To.Name, leg.Course.TrueCourse, leg.Course.DistanceNM)
	}
	total := fmt.Sprintf("%.1f nm", sum.TotalNM)
	if !sum.Complete {
		total += " (incomplete)"
	}
	p.printf("total: %s\n", total)
	return nil
}

func (p *Planner) list(ctx context.Context, limit int) error {
	if p.svc.Flights == nil {
		return fmt.Errorf("flight storage is not configured")
	}
	flights, err := p.svc.Flights.ListFlights(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list flights: %w", err)
	}
	for _, f := range flights {
		p.printf("%s  %-20s %s  %s\n", f.ID, f.Name, f.DepartureTime.Format("2006-01-02 15:04Z"), strings.Join(f.RouteIDs, "-"))
	}
	return nil
}

func (p *Planner) printView(v *render.View) {
	p.printf("mode: %s (version %d)\n", v.Mode, v.Version)
	for i, pt := range v.Points {
		flags := ""
		if pt.Editable {
			flags += "e"
		}
		if pt.Draggable {
			flags += "d"
		}
		if pt.Role != render.RoleNone {
			flags += " " + pt.Role.String()
		}
		p.printf("#%d %-24s %9.4f %10.4f %s\n", i, pt.Label, pt.Position.Latitude, pt.Position.Longitude, flags)
	}
	for _, seg := range v.Segments {
		p.printf("%s -> %s [%s]\n", seg.From.Name, seg.To.Name, seg.Class)
	}
}

func (p *Planner) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}
