package report

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the sqlite connection holding run history.
type DB struct {
	*sql.DB
}

// Run is one training/evaluation cycle.
type Run struct {
	ID           string
	TrainFlights []string
	NumRows      int
	R2           float64
	CreatedAt    time.Time
}

// NewRun allocates a run record with a fresh ID.
func NewRun(trainFlights []string, numRows int, r2 float64) Run {
	return Run{
		ID:           uuid.NewString(),
		TrainFlights: trainFlights,
		NumRows:      numRows,
		R2:           r2,
	}
}

// OpenDB opens (creating if needed) the run-history database and applies
// pending migrations.
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results db: %w", err)
	}
	db := &DB{conn}
	if err := db.MigrateUp(migrationsFS); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// MigrateUp runs all pending migrations from the given filesystem, which
// must contain a migrations/ directory. Returns nil when already current.
func (db *DB) MigrateUp(fsys fs.FS) error {
	m, err := db.newMigrate(fsys)
	if err != nil {
		return err
	}
	// Not closing m: that would close the underlying DB connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func (db *DB) MigrateDown(fsys fs.FS) error {
	m, err := db.newMigrate(fsys)
	if err != nil {
		return err
	}
	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

func (db *DB) newMigrate(fsys fs.FS) (*migrate.Migrate, error) {
	src, err := iofs.New(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations source: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// InsertRun records a completed run.
func (db *DB) InsertRun(run Run) error {
	_, err := db.Exec(
		`INSERT INTO runs (id, train_flights, num_rows, r2) VALUES (?, ?, ?, ?)`,
		run.ID, strings.Join(run.TrainFlights, ","), run.NumRows, run.R2,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}
	return nil
}

// InsertMapStats records the per-crop statistics of a run.
func (db *DB) InsertMapStats(runID string, stats []MapStats) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO map_stats
		(run_id, flight, crop, name, veg_pixels,
		 me_before, mae_before, std_before, mad_before,
		 me_after, mae_after, std_after, mad_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stats {
		_, err := stmt.Exec(runID, s.Flight, s.Crop, s.Name, s.VegPixels,
			s.MEBefore, s.MAEBefore, s.StdBefore, s.MADBefore,
			s.MEAfter, s.MAEAfter, s.StdAfter, s.MADAfter)
		if err != nil {
			return fmt.Errorf("failed to insert stats for %s crop %d: %w", s.Flight, s.Crop, err)
		}
	}
	return tx.Commit()
}

// MapStatsForRun returns the stored statistics of one run, ordered by flight
// then crop.
func (db *DB) MapStatsForRun(runID string) ([]MapStats, error) {
	rows, err := db.Query(`SELECT flight, crop, name, veg_pixels,
		me_before, mae_before, std_before, mad_before,
		me_after, mae_after, std_after, mad_after
		FROM map_stats WHERE run_id = ? ORDER BY flight, crop`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query map stats: %w", err)
	}
	defer rows.Close()

	var out []MapStats
	for rows.Next() {
		var s MapStats
		err := rows.Scan(&s.Flight, &s.Crop, &s.Name, &s.VegPixels,
			&s.MEBefore, &s.MAEBefore, &s.StdBefore, &s.MADBefore,
			&s.MEAfter, &s.MAEAfter, &s.StdAfter, &s.MADAfter)
		if err != nil {
			return nil, fmt.Errorf("failed to scan map stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Runs lists all recorded runs, newest first.
func (db *DB) Runs() ([]Run, error) {
	rows, err := db.Query(`SELECT id, train_flights, num_rows, r2, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var flights string
		if err := rows.Scan(&r.ID, &flights, &r.NumRows, &r.R2, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if flights != "" {
			r.TrainFlights = strings.Split(flights, ",")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
