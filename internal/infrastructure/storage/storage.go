// Package storage provides SQLite-based persistence for save slots.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for save persistence.
type Store struct {
	db *sql.DB
}

// SlotEntry describes one save slot.
type SlotEntry struct {
	Slot      string
	Blob      string
	UpdatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS saves (
			slot TEXT PRIMARY KEY,
			blob TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
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

// Put writes a save blob into a slot, replacing any previous content.
func (s *Store) Put(slot, blob string) error {
	_, err := s.db.Exec(
		`INSERT INTO saves (slot, blob, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(slot) DO UPDATE SET blob = excluded.blob, updated_at = CURRENT_TIMESTAMP`,
		slot, blob,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot put save: %w", err)
	}
	return nil
}

// Load reads the blob in a slot. ok is false when the slot is empty.
func (s *Store) Load(slot string) (blob string, ok bool, err error) {
	err = s.db.QueryRow("SELECT blob FROM saves WHERE slot = ?", slot).Scan(&blob)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot load save: %w", err)
	}
	return blob, true, nil
}

// Clear deletes a slot. Clearing an empty slot is not an error.
func (s *Store) Clear(slot string) error {
	_, err := s.db.Exec("DELETE FROM saves WHERE slot = ?", slot)
	if err != nil {
		return fmt.Errorf("storage: cannot clear save: %w", err)
	}
	return nil
}

// List returns every occupied slot, most recently written first.
func (s *Store) List() ([]SlotEntry, error) {
	rows, err := s.db.Query(
		"SELECT slot, blob, updated_at FROM saves ORDER BY updated_at DESC, slot",
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query saves: %w", err)
	}
	defer rows.Close()

	var entries []SlotEntry
	for rows.Next() {
		var e SlotEntry
		var updatedAt any
		if err := rows.Scan(&e.Slot, &e.Blob, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		// Parse the datetime - handle both time.Time and string
		switch v := updatedAt.(type) {
		case time.Time:
			e.UpdatedAt = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				e.UpdatedAt = parsed
			}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}
