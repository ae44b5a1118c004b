package storagefake

import (
	"errors"
	"time"

	"github.com/jrsteele09/go-admin-console/credentials"
)

var (
	_ credentials.Storage = (*Unavailable)(nil)
	_ credentials.Storage = (*Flaky)(nil)
)

// ErrUnavailable is returned by every operation of an Unavailable backend
var ErrUnavailable = errors.New("storage unavailable")

// Unavailable is a backend that rejects every operation, like a browser with
// storage disabled.
type Unavailable struct {
	Label string
}

func (u Unavailable) Name() string {
	if u.Label == "" {
		return "unavailable"
	}
	return u.Label
}

func (Unavailable) Get(string) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) Set(string, string, time.Duration) error {
	return ErrUnavailable
}

func (Unavailable) Remove(string) error {
	return ErrUnavailable
}

// Flaky wraps a backend and fails Set for one key
type Flaky struct {
	Inner      credentials.Storage
	FailSetKey string
}

func (f *Flaky) Name() string {
	return "flaky-" + f.Inner.Name()
}

func (f *Flaky) Get(key string) (string, error) {
	return f.Inner.Get(key)
}

func (f *Flaky) Set(key, value string, ttl time.Duration) error {
	if key == f.FailSetKey {
		return ErrUnavailable
	}
	return f.Inner.Set(key, value, ttl)
}

func (f *Flaky) Remove(key string) error {
	return f.Inner.Remove(key)
}
