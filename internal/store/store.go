// Package store is the record store: an append-only, row-oriented tabular
// store holding the activity log and the schedule. The core needs exactly
// two operations per table — append one row (positional values in a fixed
// column order) and scan all rows back as column-name keyed records. No
// update or delete path exists; corrections happen out of band.
package store

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Table names of the two logical tables.
const (
	TableActivityLog = "activity_log"
	TableSchedule    = "schedule"
)

// ErrUnavailable wraps I/O failures of the backing database. Callers treat
// it as "store unreachable", distinct from bad data inside a reachable
// store.
var ErrUnavailable = errors.New("record store unavailable")

// ErrUnknownTable is returned for a table name the store does not hold.
var ErrUnknownTable = errors.New("unknown table")

// tableDef maps a logical table to its SQL columns and the record column
// names rows are keyed by on the way out.
type tableDef struct {
	sqlColumns    []string
	recordColumns []string
}

var tables = map[string]tableDef{
	TableActivityLog: {
		sqlColumns:    []string{"timestamp", "priority", "description", "duration", "remarks"},
		recordColumns: []string{"Timestamp", "Priority", "Activity_Description", "Duration", "Remarks"},
	},
	TableSchedule: {
		sqlColumns:    []string{"date", "time", "priority", "planned_activity", "planned_duration", "recurrence", "status", "batch_id"},
		recordColumns: []string{"Date", "Time", "Priority", "Planned_Activity", "Planned_Duration", "Recurrence", "Status", "Batch_ID"},
	},
}

// Store wraps a SQLite database holding the two append-only tables.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used
// by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "priotrack.db")
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", ErrUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: pinging database: %v", ErrUnavailable, err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Concurrent external writers (e.g. two open tabs of the tool) wait
	// briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the applied migration versions in ascending
// order.
func (s *Store) AppliedMigrations() ([]int, error) {
	var versions []int
	if err := s.db.Select(&versions, "SELECT version FROM schema_version ORDER BY version ASC"); err != nil {
		return nil, err
	}
	return versions, nil
}

// Append inserts one row into the named table. Values are positional in
// the table's fixed column order and must match the column count exactly.
func (s *Store) Append(table string, values []string) error {
	def, ok := tables[table]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	if len(values) != len(def.sqlColumns) {
		return fmt.Errorf("table %s expects %d values, got %d", table, len(def.sqlColumns), len(values))
	}

	placeholders := strings.TrimPrefix(strings.Repeat(",?", len(values)), ",")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(def.sqlColumns, ", "), placeholders)

	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("%w: appending to %s: %v", ErrUnavailable, table, err)
	}
	return nil
}

// Records scans all rows of the named table in insertion order, returning
// one column-name keyed map per row. No filtering is pushed down; callers
// filter in memory.
func (s *Store) Records(table string) ([]map[string]string, error) {
	def, ok := tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid ASC",
		strings.Join(def.sqlColumns, ", "), table)

	rows, err := s.db.Queryx(query)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %v", ErrUnavailable, table, err)
	}
	defer rows.Close()

	var records []map[string]string
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("%w: scanning %s row: %v", ErrUnavailable, table, err)
		}
		rec := make(map[string]string, len(def.sqlColumns))
		for i, col := range def.sqlColumns {
			rec[def.recordColumns[i]] = stringValue(raw[col])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %v", ErrUnavailable, table, err)
	}
	return records, nil
}

// Count returns the number of rows in the named table.
func (s *Store) Count(table string) (int, error) {
	if _, ok := tables[table]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	var n int
	if err := s.db.Get(&n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
		return 0, fmt.Errorf("%w: counting %s: %v", ErrUnavailable, table, err)
	}
	return n, nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
