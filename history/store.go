/*package history keeps computed ion fraction histories in a SQLite file so
figures can be redrawn without re-reading every snapshot.*/
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/abatten/TOPAZ/stats"
)

// ErrNotFound is returned when no series has the requested name.
var ErrNotFound = errors.New("history: series not found")

var schema = []string{`
CREATE TABLE IF NOT EXISTS series (
	name       TEXT PRIMARY KEY,
	ion        TEXT NOT NULL,
	weighting  INTEGER NOT NULL,
	run_id     TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS points (
	name     TEXT NOT NULL REFERENCES series(name) ON DELETE CASCADE,
	seq      INTEGER NOT NULL,
	redshift REAL NOT NULL,
	value    REAL NOT NULL,
	PRIMARY KEY (name, seq)
)`,
}

// Store is a SQLite-backed collection of named time series.
type Store struct {
	db *sql.DB
}

// Entry describes a stored series without its points.
type Entry struct {
	Name      string
	Ion       string
	Weighting stats.Weighting
	RunID     uuid.UUID
	Created   time.Time
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil { return nil, fmt.Errorf("open sqlite db: %w", err) }
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{ db: db }, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil { return nil }
	return s.db.Close()
}

// Put stores ts under name, replacing any series already there, and returns
// the run ID it was stored with. Points keep their order.
func (s *Store) Put(
	ctx context.Context, name string, ts *stats.TimeSeries,
) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" { return uuid.Nil, fmt.Errorf("series name is required") }
	if ts == nil { return uuid.Nil, fmt.Errorf("series %s is nil", name) }
	if err := ts.Validate(); err != nil { return uuid.Nil, err }

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil { return uuid.Nil, err }
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM points WHERE name = ?`, name); err != nil {
		return uuid.Nil, fmt.Errorf("clear %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM series WHERE name = ?`, name); err != nil {
		return uuid.Nil, fmt.Errorf("clear %s: %w", name, err)
	}

	run := uuid.New()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO series (name, ion, weighting, run_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		name, ts.Ion, int(ts.Weighting), run.String(),
		time.Now().UTC().UnixMilli())
	if err != nil { return uuid.Nil, fmt.Errorf("insert %s: %w", name, err) }

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO points (name, seq, redshift, value) VALUES (?, ?, ?, ?)`)
	if err != nil { return uuid.Nil, err }
	defer stmt.Close()

	for i := range ts.Redshift {
		_, err := stmt.ExecContext(ctx, name, i, ts.Redshift[i], ts.Value[i])
		if err != nil { return uuid.Nil, fmt.Errorf("insert point %d: %w", i, err) }
	}

	if err := tx.Commit(); err != nil { return uuid.Nil, err }
	return run, nil
}

// Get returns the series stored under name.
func (s *Store) Get(ctx context.Context, name string) (*stats.TimeSeries, error) {
	e, err := s.entry(ctx, name)
	if err != nil { return nil, err }

	rows, err := s.db.QueryContext(ctx,
		`SELECT redshift, value FROM points WHERE name = ? ORDER BY seq`, name)
	if err != nil { return nil, err }
	defer rows.Close()

	ts := &stats.TimeSeries{
		Ion: e.Ion, Weighting: e.Weighting,
		Redshift: []float64{}, Value: []float64{},
	}
	for rows.Next() {
		var z, val float64
		if err := rows.Scan(&z, &val); err != nil { return nil, err }
		ts.Redshift = append(ts.Redshift, z)
		ts.Value = append(ts.Value, val)
	}
	if err := rows.Err(); err != nil { return nil, err }

	return ts, nil
}

// Info returns the description of the series stored under name.
func (s *Store) Info(ctx context.Context, name string) (*Entry, error) {
	return s.entry(ctx, name)
}

func (s *Store) entry(ctx context.Context, name string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, ion, weighting, run_id, created_at
		 FROM series WHERE name = ?`, name)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*Entry, error) {
	e := &Entry{}
	var w int
	var run string
	var created int64
	if err := row.Scan(&e.Name, &e.Ion, &w, &run, &created); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(run)
	if err != nil { return nil, fmt.Errorf("series %s: bad run id: %w", e.Name, err) }
	e.RunID = id
	e.Weighting = stats.Weighting(w)
	e.Created = time.UnixMilli(created).UTC()
	return e, nil
}

// List returns every stored series, sorted by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, ion, weighting, run_id, created_at
		 FROM series ORDER BY name`)
	if err != nil { return nil, err }
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil { return nil, err }
		out = append(out, *e)
	}
	return out, rows.Err()
}
