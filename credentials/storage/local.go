package storage

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-admin-console/credentials"
)

var _ credentials.Storage = (*LocalStorage)(nil)

// LocalStorage is a durable key/value file with no expiry
type LocalStorage struct {
	mu   sync.Mutex
	file jsonFile
}

// NewLocalStorage creates a key/value store persisted at path
func NewLocalStorage(path string, sealer *Sealer) *LocalStorage {
	return &LocalStorage{file: jsonFile{path: path, sealer: sealer}}
}

func (l *LocalStorage) Name() string {
	return "local"
}

func (l *LocalStorage) Get(key string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	values, err := l.load()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set stores value; ttl is ignored
func (l *LocalStorage) Set(key, value string, _ time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	values, err := l.load()
	if err != nil {
		return err
	}
	values[key] = value
	return l.file.write(values)
}

func (l *LocalStorage) Remove(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	values, err := l.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return l.file.write(values)
}

func (l *LocalStorage) load() (map[string]string, error) {
	values := map[string]string{}
	if err := l.file.read(&values); err != nil {
		return nil, err
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}
