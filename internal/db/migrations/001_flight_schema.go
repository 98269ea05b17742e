package migrations

// FlightSchema creates the persisted flight tables.
var FlightSchema = &Migration{
	Name: "001_flight_schema",
	UpSQL: `
		CREATE TABLE IF NOT EXISTS flights (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			aircraft_profile_id TEXT NOT NULL,
			cruise_altitude DOUBLE PRECISION NOT NULL,
			departure_time TIMESTAMPTZ NOT NULL,
			route_ids TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_flights_departure_time ON flights (departure_time DESC);

		-- One row per distinct waypoint of a flight, in first-seen leg order
		CREATE TABLE IF NOT EXISTS flight_waypoints (
			flight_id TEXT NOT NULL REFERENCES flights (id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			waypoint_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			named BOOLEAN NOT NULL DEFAULT FALSE,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			altitude DOUBLE PRECISION,
			refuel_stop BOOLEAN,
			refuel_to_full BOOLEAN,
			refuel_gals DOUBLE PRECISION,
			PRIMARY KEY (flight_id, waypoint_id)
		);

		CREATE TABLE IF NOT EXISTS flight_legs (
			flight_id TEXT NOT NULL REFERENCES flights (id) ON DELETE CASCADE,
			leg_index INTEGER NOT NULL,
			start_id TEXT NOT NULL,
			end_id TEXT NOT NULL,
			distance_nm DOUBLE PRECISION NOT NULL,
			ground_speed DOUBLE PRECISION NOT NULL,
			true_course DOUBLE PRECISION NOT NULL,
			magnetic_course DOUBLE PRECISION NOT NULL,
			wind_direction DOUBLE PRECISION NOT NULL,
			wind_speed DOUBLE PRECISION NOT NULL,
			remaining_fuel_gals DOUBLE PRECISION,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			altitude DOUBLE PRECISION,
			PRIMARY KEY (flight_id, leg_index)
		);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS flight_legs;
		DROP TABLE IF EXISTS flight_waypoints;
		DROP TABLE IF EXISTS flights;
	`,
}
