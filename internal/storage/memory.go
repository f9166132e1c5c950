package storage

import (
	"encoding/json"
	"log"
	"sync"
)

// MemoryStore is an in-memory Store. It backs tests and keeps the app usable
// for the rest of the session when the database is unavailable.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get unmarshals the stored value for key into dest
func (s *MemoryStore) Get(key string, dest interface{}) (bool, error) {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("Corrupt value for key %s, treating as absent: %v", key, err)
		return false, nil
	}
	return true, nil
}

// Set marshals and stores value under key
func (s *MemoryStore) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
	return nil
}

// Remove deletes the value for key
func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// SetRaw stores a raw byte value without marshalling (used by tests to
// simulate corrupted state)
func (s *MemoryStore) SetRaw(key string, raw []byte) {
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
}
