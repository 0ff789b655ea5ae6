package index

import (
	"database/sql"
	"errors"
	"fmt"
)

// Settings is a string key-value store in the settings table. It satisfies
// selection.Store.
type Settings struct {
	conn *sql.DB
}

// Settings returns the key-value store sharing this database.
func (db *DB) Settings() *Settings {
	return &Settings{conn: db.conn}
}

// Get returns the value under key. ok is false when the key is absent.
func (s *Settings) Get(key string) (string, bool, error) {
	var v string
	err := s.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("index: get setting %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key.
func (s *Settings) Set(key, value string) error {
	_, err := s.conn.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("index: set setting %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Settings) Delete(key string) error {
	if _, err := s.conn.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("index: delete setting %s: %w", key, err)
	}
	return nil
}
