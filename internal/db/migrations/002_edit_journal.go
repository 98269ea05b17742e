package migrations

// EditJournal creates the waypoint edit journal and the editing
// statistics table.
var EditJournal = &Migration{
	Name: "002_edit_journal",
	UpSQL: `
		CREATE TABLE IF NOT EXISTS waypoint_edits (
			event_id TEXT PRIMARY KEY,
			time TIMESTAMPTZ NOT NULL,
			kind TEXT NOT NULL,
			mode TEXT NOT NULL,
			waypoint_id TEXT,
			name TEXT,
			idx INTEGER NOT NULL,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			version BIGINT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_waypoint_edits_time ON waypoint_edits (time DESC);
		CREATE INDEX IF NOT EXISTS idx_waypoint_edits_waypoint_id ON waypoint_edits (waypoint_id);

		-- Counter arrays are indexed by edit kind:
		-- insert, remove, rename, move, reposition, refuel, clear
		CREATE TABLE IF NOT EXISTS edit_stats (
			time TIMESTAMPTZ NOT NULL,
			mutations BIGINT[] NOT NULL,
			rejected BIGINT[] NOT NULL,
			commits BIGINT NOT NULL,
			discarded_commits BIGINT NOT NULL,
			uptime_seconds BIGINT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_edit_stats_time ON edit_stats (time DESC);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS edit_stats;
		DROP TABLE IF EXISTS waypoint_edits;
	`,
}
