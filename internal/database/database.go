// Package database persists ideas, profiles, settings, and generation runs in
// a local SQLite file. Nested run data is stored as JSON text columns since it
// is always read and written as a whole aggregate.
package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// toJSON serializes v for a TEXT column. nil slices and maps become "null".
func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("serializing %T: %v", v, err)
		return "null"
	}
	return string(data)
}

// fromJSON deserializes a TEXT column into dst, tolerating empty columns.
func fromJSON(data string, dst any) {
	if data == "" || data == "null" {
		return
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		log.Printf("deserializing %T: %v", dst, err)
	}
}

// parseTime decodes an RFC3339 column; unparseable values become zero times.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtrToStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
