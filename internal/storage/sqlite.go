// Package storage keeps a log of aircraft sightings in SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/skyboard/internal/flight"
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for the sightings log.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Sighting is one recorded observation of a flight.
type Sighting struct {
	ID           int64
	Callsign     string
	Hex          string
	AircraftType string
	Origin       string
	Destination  string
	Altitude     int
	DistanceKm   float64
	SeenAt       time.Time
}

// CallsignCount is a callsign and how many times it was seen.
type CallsignCount struct {
	Callsign string
	Count    int
	LastSeen time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithNow sets the clock used to stamp sightings.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer; the flight worker and CLI queries never need more.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sightings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			callsign TEXT NOT NULL,
			hex TEXT NOT NULL DEFAULT '',
			aircraft_type TEXT NOT NULL DEFAULT '',
			origin TEXT NOT NULL DEFAULT '',
			destination TEXT NOT NULL DEFAULT '',
			altitude INTEGER NOT NULL DEFAULT 0,
			distance_km REAL NOT NULL DEFAULT 0,
			seen_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sightings_callsign ON sightings(callsign);
		CREATE INDEX IF NOT EXISTS idx_sightings_seen_at ON sightings(seen_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordSightings stores one row per flight in a single transaction.
func (s *Store) RecordSightings(ctx context.Context, flights []flight.Flight) error {
	if len(flights) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sightings
		 (callsign, hex, aircraft_type, origin, destination, altitude, distance_km, seen_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot prepare insert: %w", err)
	}
	defer stmt.Close()

	seenAt := s.now().UTC().Format(timeLayout)
	for _, f := range flights {
		if _, err := stmt.ExecContext(ctx,
			f.Key(), f.Hex, f.AircraftType, f.Origin, f.Destination, f.Altitude, f.DistanceKm, seenAt,
		); err != nil {
			return fmt.Errorf("storage: cannot record sighting %s: %w", f.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit sightings: %w", err)
	}
	return nil
}

// RecentSightings returns the latest sightings, newest first.
func (s *Store) RecentSightings(ctx context.Context, limit int) ([]Sighting, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, callsign, hex, aircraft_type, origin, destination, altitude, distance_km, seen_at
		 FROM sightings
		 ORDER BY seen_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sightings: %w", err)
	}
	defer rows.Close()

	var out []Sighting
	for rows.Next() {
		var e Sighting
		var seenAt string
		if err := rows.Scan(&e.ID, &e.Callsign, &e.Hex, &e.AircraftType, &e.Origin,
			&e.Destination, &e.Altitude, &e.DistanceKm, &seenAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.SeenAt = parseTime(seenAt)
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// TopCallsigns returns the most frequently seen callsigns.
func (s *Store) TopCallsigns(ctx context.Context, limit int) ([]CallsignCount, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT callsign, COUNT(*), MAX(seen_at)
		 FROM sightings
		 GROUP BY callsign
		 ORDER BY COUNT(*) DESC, callsign ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query callsigns: %w", err)
	}
	defer rows.Close()

	var out []CallsignCount
	for rows.Next() {
		var c CallsignCount
		var lastSeen string
		if err := rows.Scan(&c.Callsign, &c.Count, &lastSeen); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		c.LastSeen = parseTime(lastSeen)
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

var _ flight.Recorder = (*Store)(nil)
