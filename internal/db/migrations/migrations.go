package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saviobatista/route-planner/internal/log"
)

// Migration is one versioned schema change
type Migration struct {
	Name    string
	UpSQL   string
	DownSQL string
}

// All returns every migration in apply order.
func All() []*Migration {
	return []*Migration{
		FlightSchema,
		EditJournal,
	}
}

// Migrator applies and rolls back migrations, tracking them in the
// schema_migrations table.
type Migrator struct {
	db *sql.DB
	lg *log.Logger
}

// New creates a new Migrator. lg may be nil.
func New(db *sql.DB, lg *log.Logger) *Migrator {
	return &Migrator{db: db, lg: lg}
}

// Initialize creates the tracking table if it doesn't exist
func (m *Migrator) Initialize(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// Applied returns the names of applied migrations
func (m *Migrator) Applied(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT name FROM schema_migrations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			m.lg.Warnf("error closing rows: %v", cerr)
		}
	}()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// Pending returns the migrations in list that have not been applied yet.
func (m *Migrator) Pending(ctx context.Context, list []*Migration) ([]*Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	var pending []*Migration
	for _, mig := range list {
		if !applied[mig.Name] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// run executes a schema change and its bookkeeping statement in one
// transaction.
func (m *Migrator) run(ctx context.Context, mig *Migration, schemaSQL, recordSQL string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			m.lg.Warnf("failed to rollback transaction: %v", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", mig.Name, err)
	}
	if _, err := tx.ExecContext(ctx, recordSQL, mig.Name); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", mig.Name, err)
	}
	return tx.Commit()
}

// Apply applies a single migration
func (m *Migrator) Apply(ctx context.Context, mig *Migration) error {
	return m.run(ctx, mig, mig.UpSQL, "INSERT INTO schema_migrations (name) VALUES ($1)")
}

// Revert rolls back a single migration
func (m *Migrator) Revert(ctx context.Context, mig *Migration) error {
	return m.run(ctx, mig, mig.DownSQL, "DELETE FROM schema_migrations WHERE name = $1")
}

// Migrate applies all pending migrations in order and returns how many
// were applied.
func (m *Migrator) Migrate(ctx context.Context, list []*Migration) (int, error) {
	if err := m.Initialize(ctx); err != nil {
		return 0, fmt.Errorf("failed to initialize migrations: %w", err)
	}
	pending, err := m.Pending(ctx, list)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for i, mig := range pending {
		if err := m.Apply(ctx, mig); err != nil {
			return i, fmt.Errorf("failed to apply migration %s: %w", mig.Name, err)
		}
		m.lg.Info("applied migration", "name", mig.Name)
	}
	return len(pending), nil
}

// Rollback reverts the most recently applied migration in list.
func (m *Migrator) Rollback(ctx context.Context, list []*Migration) (*Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	var last *Migration
	for i := len(list) - 1; i >= 0; i-- {
		if applied[list[i].Name] {
			last = list[i]
			break
		}
	}
	if last == nil {
		return nil, fmt.Errorf("no migrations to rollback")
	}

	if err := m.Revert(ctx, last); err != nil {
		return nil, fmt.Errorf("failed to rollback migration %s: %w", last.Name, err)
	}
	m.lg.Info("rolled back migration", "name", last.Name)
	return last, nil
}
