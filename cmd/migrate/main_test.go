package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/saviobatista/route-planner/internal/db/migrations"
)

func TestRunMigration(t *testing.T) {
	tests := []struct {
		name         string
		rollback     bool
		setupMock    func(sqlmock.Sqlmock)
		wantError    bool
		errorPattern string
	}{
		{
			name: "successful migration",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing()
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT name FROM schema_migrations ORDER BY id`).
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
				for _, m := range migrations.All() {
					mock.ExpectBegin()
					mock.ExpectExec(`.+`).WillReturnResult(sqlmock.NewResult(0, 0))
					mock.ExpectExec(`INSERT INTO schema_migrations \(name\) VALUES \(\$1\)`).
						WithArgs(m.Name).
						WillReturnResult(sqlmock.NewResult(1, 1))
					mock.ExpectCommit()
				}
			},
		},
		{
			name: "already up to date",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing()
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				rows := sqlmock.NewRows([]string{"name"})
				for _, m := range migrations.All() {
					rows.AddRow(m.Name)
				}
				mock.ExpectQuery(`SELECT name FROM schema_migrations ORDER BY id`).WillReturnRows(rows)
			},
		},
		{
			name:     "successful rollback",
			rollback: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing()
				mock.ExpectQuery(`SELECT name FROM schema_migrations ORDER BY id`).
					WillReturnRows(sqlmock.NewRows([]string{"name"}).
						AddRow(migrations.FlightSchema.Name).
						AddRow(migrations.EditJournal.Name))
				mock.ExpectBegin()
				mock.ExpectExec(`DROP TABLE IF EXISTS edit_stats`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`DELETE FROM schema_migrations WHERE name = \$1`).
					WithArgs(migrations.EditJournal.Name).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "database ping failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing().WillReturnError(fmt.Errorf("connection failed"))
			},
			wantError:    true,
			errorPattern: "connection failed",
		},
		{
			name: "migration initialization failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing()
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
					WillReturnError(fmt.Errorf("table creation failed"))
			},
			wantError:    true,
			errorPattern: "table creation failed",
		},
		{
			name:     "nothing to roll back",
			rollback: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing()
				mock.ExpectQuery(`SELECT name FROM schema_migrations ORDER BY id`).
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
			},
			wantError:    true,
			errorPattern: "no migrations to rollback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			if err != nil {
				t.Fatalf("Failed to create mock database: %v", err)
			}
			defer db.Close()

			tt.setupMock(mock)

			err = runMigration(context.Background(), db, tt.rollback, nil)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error, got nil")
				} else if tt.errorPattern != "" && !strings.Contains(err.Error(), tt.errorPattern) {
					t.Errorf("Expected error containing %q, got %q", tt.errorPattern, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unmet mock expectations: %v", err)
			}
		})
	}
}

func TestPrintStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT name FROM schema_migrations ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(migrations.FlightSchema.Name))

	if err := printStatus(context.Background(), db, nil); err != nil {
		t.Errorf("printStatus() failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet mock expectations: %v", err)
	}
}

func TestRun_InvalidConnection(t *testing.T) {
	if err := run("postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1", false, false, nil); err == nil {
		t.Error("Expected error for unreachable database")
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("ROUTE_PLANNER_TEST_KEY", "")
	if got := envOr("ROUTE_PLANNER_TEST_KEY", "fallback"); got != "fallback" {
		t.Errorf("envOr() = %q, want fallback", got)
	}
	t.Setenv("ROUTE_PLANNER_TEST_KEY", "set")
	if got := envOr("ROUTE_PLANNER_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("envOr() = %q, want set", got)
	}
}
