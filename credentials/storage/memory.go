package storage

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-admin-console/credentials"
)

var _ credentials.Storage = (*SessionStorage)(nil)

// SessionStorage keeps values in memory for the life of the process
type SessionStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSessionStorage creates an empty in-memory store
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		values: make(map[string]string),
	}
}

func (s *SessionStorage) Name() string {
	return "session"
}

func (s *SessionStorage) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

// Set stores value; ttl is ignored
func (s *SessionStorage) Set(key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *SessionStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key) // Already doesn't exist, no error
	return nil
}
