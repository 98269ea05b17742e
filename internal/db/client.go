package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/saviobatista/route-planner/internal/types"
)

// Client is the Postgres store of record for flights and the edit journal.
type Client struct {
	db *sql.DB
}

// New creates a new database client
func New(connStr string) (*Client, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// Ping verifies the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// DB exposes the underlying handle, for the migrator.
func (c *Client) DB() *sql.DB {
	return c.db
}

// FlightSummary is a row of the flight list
type FlightSummary struct {
	ID            string
	Name          string
	DepartureTime time.Time
	RouteIDs      []string
}

// SaveFlight inserts or replaces a flight together with its waypoints and
// legs.
func (c *Client) SaveFlight(ctx context.Context, flight *types.Flight) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	points := distinctPoints(flight.Legs)
	routeIDs := make([]string, len(points))
	for i, w := range points {
		routeIDs[i] = w.ID
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO flights (
			id, name, aircraft_profile_id, cruise_altitude, departure_time,
			route_ids, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			aircraft_profile_id = EXCLUDED.aircraft_profile_id,
			cruise_altitude = EXCLUDED.cruise_altitude,
			departure_time = EXCLUDED.departure_time,
			route_ids = EXCLUDED.route_ids,
			updated_at = NOW()
	`,
		flight.ID, flight.Name, flight.AircraftProfileID, flight.CruiseAltitude, flight.DepartureTime,
		pq.Array(routeIDs), flight.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert flight: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM flight_legs WHERE flight_id = $1`, flight.ID); err != nil {
		return fmt.Errorf("failed to clear legs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM flight_waypoints WHERE flight_id = $1`, flight.ID); err != nil {
		return fmt.Errorf("failed to clear waypoints: %w", err)
	}

	for i, w := range points {
		var stop, full sql.NullBool
		var gals sql.NullFloat64
		if w.Refuel != nil {
			stop = sql.NullBool{Bool: w.Refuel.IsStop, Valid: true}
			full = sql.NullBool{Bool: w.Refuel.ToFull, Valid: true}
			gals = nullFloat(w.Refuel.RefuelGals)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO flight_waypoints (
				flight_id, seq, waypoint_id, kind, name, named,
				latitude, longitude, altitude,
				refuel_stop, refuel_to_full, refuel_gals
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			flight.ID, i, w.ID, string(w.Kind), w.Name, w.Named,
			w.Latitude, w.Longitude, nullFloat(w.Altitude),
			stop, full, gals,
		); err != nil {
			return fmt.Errorf("failed to store waypoint %s: %w", w.ID, err)
		}
	}

	for i, leg := range flight.Legs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO flight_legs (
				flight_id, leg_index, start_id, end_id,
				distance_nm, ground_speed, true_course, magnetic_course,
				wind_direction, wind_speed, remaining_fuel_gals,
				start_time, end_time, altitude
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`,
			flight.ID, i, leg.Start.ID, leg.End.ID,
			leg.DistanceNM, leg.GroundSpeed, leg.TrueCourse, leg.MagneticCourse,
			leg.WindDirection, leg.WindSpeed, nullFloat(leg.RemainingFuelGals),
			leg.StartTime, leg.EndTime, nullFloat(leg.Altitude),
		); err != nil {
			return fmt.Errorf("failed to store leg %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetFlight loads a flight with its legs. It returns nil, nil when the
// flight does not exist.
func (c *Client) GetFlight(ctx context.Context, id string) (*types.Flight, error) {
	f := &types.Flight{ID: id}
	err := c.db.QueryRowContext(ctx, `
		SELECT name, aircraft_profile_id, cruise_altitude, departure_time, created_at
		FROM flights
		WHERE id = $1
	`, id).Scan(&f.Name, &f.AircraftProfileID, &f.CruiseAltitude, &f.DepartureTime, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	points, err := c.flightWaypoints(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT start_id, end_id, distance_nm, ground_speed, true_course, magnetic_course,
			wind_direction, wind_speed, remaining_fuel_gals, start_time, end_time, altitude
		FROM flight_legs
		WHERE flight_id = $1
		ORDER BY leg_index
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			leg            types.Leg
			startID, endID string
			fuel, alt      sql.NullFloat64
		)
		if err := rows.Scan(
			&startID, &endID, &leg.DistanceNM, &leg.GroundSpeed, &leg.TrueCourse, &leg.MagneticCourse,
			&leg.WindDirection, &leg.WindSpeed, &fuel, &leg.StartTime, &leg.EndTime, &alt,
		); err != nil {
			return nil, err
		}
		start, ok := points[startID]
		if !ok {
			return nil, fmt.Errorf("leg references unknown waypoint %s", startID)
		}
		end, ok := points[endID]
		if !ok {
			return nil, fmt.Errorf("leg references unknown waypoint %s", endID)
		}
		leg.Start, leg.End = start, end
		leg.RemainingFuelGals = floatPtr(fuel)
		leg.Altitude = floatPtr(alt)
		f.Legs = append(f.Legs, leg)
	}
	return f, rows.Err()
}

func (c *Client) flightWaypoints(ctx context.Context, flightID string) (map[string]types.Waypoint, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT waypoint_id, kind, name, named, latitude, longitude, altitude,
			refuel_stop, refuel_to_full, refuel_gals
		FROM flight_waypoints
		WHERE flight_id = $1
		ORDER BY seq
	`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make(map[string]types.Waypoint)
	for rows.Next() {
		var (
			w          types.Waypoint
			kind       string
			alt, gals  sql.NullFloat64
			stop, full sql.NullBool
		)
		if err := rows.Scan(
			&w.ID, &kind, &w.Name, &w.Named, &w.Latitude, &w.Longitude, &alt,
			&stop, &full, &gals,
		); err != nil {
			return nil, err
		}
		w.Kind = types.Kind(kind)
		w.Altitude = floatPtr(alt)
		if stop.Valid {
			w.Refuel = &types.Refuel{IsStop: stop.Bool, ToFull: full.Bool, RefuelGals: floatPtr(gals)}
		}
		points[w.ID] = w
	}
	return points, rows.Err()
}

// ListFlights returns the most recent flights by departure time
func (c *Client) ListFlights(ctx context.Context, limit int) ([]FlightSummary, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, departure_time, route_ids
		FROM flights
		ORDER BY departure_time DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []FlightSummary
	for rows.Next() {
		var f FlightSummary
		if err := rows.Scan(&f.ID, &f.Name, &f.DepartureTime, pq.Array(&f.RouteIDs)); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

// DeleteFlight removes a flight; waypoints and legs cascade.
func (c *Client) DeleteFlight(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM flights WHERE id = $1`, id)
	return err
}

// StoreEditEvent journals a waypoint edit. Replayed events are ignored.
func (c *Client) StoreEditEvent(ctx context.Context, ev *types.EditEvent) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO waypoint_edits (
			event_id, time, kind, mode, waypoint_id, name,
			idx, latitude, longitude, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (event_id) DO NOTHING
	`,
		ev.ID, ev.Timestamp, string(ev.Kind), ev.Mode.String(), ev.WaypointID, ev.Name,
		ev.Index, ev.Latitude, ev.Longitude, int64(ev.Version),
	)
	return err
}

// StoreEditStats stores a snapshot of the editing counters
func (c *Client) StoreEditStats(ctx context.Context, s *types.EditStats) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO edit_stats (
			time, mutations, rejected, commits, discarded_commits, uptime_seconds
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		s.Time,
		pq.Array(toInt64s(s.Mutations)),
		pq.Array(toInt64s(s.Rejected)),
		int64(s.Commits),
		int64(s.DiscardedCommits),
		int64(s.Uptime.Seconds()),
	)
	return err
}

// GetEditStats retrieves editing statistics for a time range
func (c *Client) GetEditStats(ctx context.Context, start, end time.Time) ([]*types.EditStats, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT time, mutations, rejected, commits, discarded_commits, uptime_seconds
		FROM edit_stats
		WHERE time BETWEEN $1 AND $2
		ORDER BY time DESC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.EditStats
	for rows.Next() {
		var (
			s                   types.EditStats
			mutations, rejected []int64
			commits, discarded  int64
			uptimeSeconds       int64
		)
		if err := rows.Scan(
			&s.Time, pq.Array(&mutations), pq.Array(&rejected),
			&commits, &discarded, &uptimeSeconds,
		); err != nil {
			return nil, err
		}
		s.Mutations = toUint64s(mutations)
		s.Rejected = toUint64s(rejected)
		s.Commits = uint64(commits)
		s.DiscardedCommits = uint64(discarded)
		s.Uptime = time.Duration(uptimeSeconds) * time.Second
		out = append(out, &s)
	}
	return out, rows.Err()
}

// distinctPoints flattens legs into their waypoints, keeping the first
// occurrence of each id.
func distinctPoints(legs []types.Leg) []types.Waypoint {
	seen := make(map[string]bool)
	var out []types.Waypoint
	for _, leg := range legs {
		for _, w := range [2]types.Waypoint{leg.Start, leg.End} {
			if !seen[w.ID] {
				seen[w.ID] = true
				out = append(out, w)
			}
		}
	}
	return out
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func toInt64s(in []uint64) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func toUint64s(in []int64) []uint64 {
	out := make([]uint64, len(in))
	for i, v := range in {
		out[i] = uint64(v)
	}
	return out
}
