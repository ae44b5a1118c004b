package credentials

import "time"

// Keys under which the token pair is persisted in every backend
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Credential is the access/refresh token pair of one authenticated session.
// Both tokens are always written together and cleared together.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Valid reports whether both tokens are present
func (c Credential) Valid() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// Storage is one persistence backend for the token pair. Implementations
// must treat Remove of a missing key as success.
type Storage interface {
	Name() string
	Get(key string) (string, error)
	Set(key, value string, ttl time.Duration) error
	Remove(key string) error
}

// SessionState is the part of the session the store keeps in step with what
// it persists.
type SessionState interface {
	Authenticate()
	Logout()
}
