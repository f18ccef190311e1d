// Package catalog records conversion runs in a SQLite database so the CLI can
// report what was converted, from which input, and how each run ended.
package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"skl2pmml/internal/logging"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("conversion not found")

// Store manages the conversion history database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewStore creates or opens the history database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:     db,
		dbPath: path,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.CatalogDebug("Opened conversion catalog at %s", path)
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversions (
		id TEXT PRIMARY KEY,
		input TEXT NOT NULL,
		digest TEXT NOT NULL,
		model_name TEXT,
		algorithm TEXT,
		function TEXT,
		fields_json TEXT,
		status TEXT NOT NULL,
		error_kind TEXT,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversions_created ON conversions(created_at);
	CREATE INDEX IF NOT EXISTS idx_conversions_digest ON conversions(digest);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores one conversion run. A zero CreatedAt is set to the current time.
func (s *Store) Record(c *Conversion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		return fmt.Errorf("conversion has no id")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	fieldsJSON, err := json.Marshal(c.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO conversions (id, input, digest, model_name, algorithm, function,
			fields_json, status, error_kind, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Input, c.Digest, c.ModelName, c.Algorithm, c.Function,
		string(fieldsJSON), string(c.Status), c.ErrorKind, c.Error, c.Duration.Milliseconds(), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record conversion: %w", err)
	}

	logging.CatalogDebug("Recorded conversion %s (%s) of %s", c.ID, c.Status, c.Input)
	return nil
}

const selectColumns = `id, input, digest, model_name, algorithm, function, fields_json,
	status, error_kind, error, duration_ms, created_at`

// Recent lists the latest runs, newest first.
func (s *Store) Recent(limit int) ([]Conversion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT `+selectColumns+`
		FROM conversions
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Get loads a single run.
func (s *Store) Get(id string) (*Conversion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM conversions WHERE id = ?`, id)
	c, err := scanConversion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, err
}

// Stats counts runs per status.
func (s *Store) Stats() (map[Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM conversions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[Status(status)] = n
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversion(r scanner) (*Conversion, error) {
	var c Conversion
	var modelName, algorithm, function, fieldsJSON, errorKind, errMsg sql.NullString
	var status string
	var durationMS int64
	if err := r.Scan(&c.ID, &c.Input, &c.Digest, &modelName, &algorithm, &function, &fieldsJSON,
		&status, &errorKind, &errMsg, &durationMS, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.ModelName = modelName.String
	c.Algorithm = algorithm.String
	c.Function = function.String
	c.Status = Status(status)
	c.ErrorKind = errorKind.String
	c.Error = errMsg.String
	c.Duration = time.Duration(durationMS) * time.Millisecond
	if fieldsJSON.Valid && fieldsJSON.String != "" {
		if err := json.Unmarshal([]byte(fieldsJSON.String), &c.Fields); err != nil {
			logging.CatalogWarn("Conversion %s has unreadable fields: %v", c.ID, err)
		}
	}
	return &c, nil
}
