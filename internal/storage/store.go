// Package storage provides the JSON key-value store that backs all persisted
// progress state. Values are opaque JSON documents; a value that fails to
// parse is treated as absent so that corrupted state resets instead of
// crashing the app.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"soundsteps/internal/database"
)

// Store is the persistence contract used by the progress and leaderboard
// services. Get unmarshals the stored JSON into dest and reports whether a
// usable value was found.
type Store interface {
	Get(key string, dest interface{}) (bool, error)
	Set(key string, value interface{}) error
	Remove(key string) error
}

// SQLStore persists values in the kv table
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a store over the database kv table
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Get reads and unmarshals the value for key into dest.
// A missing row or a corrupt value both report found=false; corruption is
// logged but never surfaced as an error to the caller.
func (s *SQLStore) Get(key string, dest interface{}) (bool, error) {
	var raw string
	err := s.db.QueryRow("SELECT value FROM kv WHERE name = ?", key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read key %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Printf("Corrupt value for key %s, treating as absent: %v", key, err)
		return false, nil
	}

	return true, nil
}

// Set marshals value and upserts it under key
func (s *SQLStore) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if _, err := s.db.Exec(s.db.Dialect.UpsertKVQuery(), key, string(raw)); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Remove deletes the value for key. Removing an absent key is not an error.
func (s *SQLStore) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE name = ?", key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}
