package storage

import (
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/pkg/errors"
)

var _ credentials.Storage = (*CookieStorage)(nil)

// CookieStorage is the durable cookie jar. Every token is kept as a cookie
// with Path "/", SameSite=Strict, an absolute expiry, and the Secure flag in
// production. The jar is persisted as JSON so it outlives the process.
type CookieStorage struct {
	mu     sync.Mutex
	file   jsonFile
	secure bool
	now    func() time.Time
}

// NewCookieStorage creates a cookie jar persisted at path
func NewCookieStorage(path string, secure bool, sealer *Sealer) *CookieStorage {
	return &CookieStorage{
		file:   jsonFile{path: path, sealer: sealer},
		secure: secure,
		now:    time.Now,
	}
}

// WithClock overrides the clock used for expiry. It is intended for tests.
func (c *CookieStorage) WithClock(now func() time.Time) *CookieStorage {
	c.now = now
	return c
}

func (c *CookieStorage) Name() string {
	return "cookie"
}

// Get returns the cookie value, or "" when it is missing or expired
func (c *CookieStorage) Get(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	jar, err := c.load()
	if err != nil {
		return "", err
	}
	for _, cookie := range jar {
		if cookie.Name == key {
			return cookie.Value, nil
		}
	}
	return "", nil
}

// Set stores value as a cookie expiring after ttl
func (c *CookieStorage) Set(key, value string, ttl time.Duration) error {
	cookie := &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		Expires:  c.now().Add(ttl).UTC(),
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
	if err := cookie.Valid(); err != nil {
		return errors.Wrapf(err, "invalid cookie %s", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	jar, err := c.load()
	if err != nil {
		return err
	}
	jar = append(without(jar, key), cookie)
	return c.file.write(jar)
}

// Remove deletes the cookie. Removing a missing cookie is not an error.
func (c *CookieStorage) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	jar, err := c.load()
	if err != nil {
		return err
	}
	pruned := without(jar, key)
	if len(pruned) == len(jar) {
		return nil
	}
	return c.file.write(pruned)
}

// Cookies returns the unexpired cookies in the jar
func (c *CookieStorage) Cookies() ([]*http.Cookie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// load reads the jar and drops expired cookies
func (c *CookieStorage) load() ([]*http.Cookie, error) {
	var jar []*http.Cookie
	if err := c.file.read(&jar); err != nil {
		return nil, err
	}
	now := c.now()
	live := jar[:0]
	for _, cookie := range jar {
		if cookie == nil {
			continue
		}
		if !cookie.Expires.IsZero() && !now.Before(cookie.Expires) {
			continue
		}
		live = append(live, cookie)
	}
	return live, nil
}

func without(jar []*http.Cookie, name string) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(jar))
	for _, cookie := range jar {
		if cookie.Name != name {
			out = append(out, cookie)
		}
	}
	return out
}
