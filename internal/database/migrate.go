package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Schema evolution is tracked through PRAGMA user_version: every migration
// bumps it by one, and opening a database replays whatever lies above the
// stored version.

func schemaVersion(conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func setSchemaVersion(conn *sql.DB, version int) error {
	if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("setting schema version %d: %w", version, err)
	}
	return nil
}

// hasUnversionedSchema reports whether the idea queue exists while
// user_version is still 0, meaning the file predates version tracking.
func hasUnversionedSchema(conn *sql.DB) (bool, error) {
	var count int
	err := conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='ideas'",
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("probing for untracked schema: %w", err)
	}
	return count > 0, nil
}

// migrate replays any migrations the database has not seen yet.
func migrate(conn *sql.DB) error {
	current, err := schemaVersion(conn)
	if err != nil {
		return err
	}

	// A populated file with version 0 was created before tracking existed;
	// its schema matches migration 1, so record that instead of re-running it.
	if current == 0 {
		untracked, err := hasUnversionedSchema(conn)
		if err != nil {
			return err
		}
		if untracked {
			log.Printf("database predates schema tracking, recording version 1")
			if err := setSchemaVersion(conn, 1); err != nil {
				return err
			}
			current = 1
		}
	}

	if current >= latestVersion() {
		return nil
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		log.Printf("applying migration %d: %s", m.Version, m.Description)

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}

		// The driver rejects PRAGMA user_version inside a transaction. The
		// DDL is idempotent, so a crash between commit and the bump only
		// causes a harmless replay on the next open.
		if err := setSchemaVersion(conn, m.Version); err != nil {
			return err
		}
	}

	return nil
}
