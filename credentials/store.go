package credentials

import (
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/rs/zerolog/log"
)

// Store is the single source of truth for the token pair. It replicates the
// pair to every backend, in priority order, so that losing any one backend
// does not lose the session. The first backend is the durable cookie store.
type Store struct {
	mu         sync.RWMutex
	backends   []Storage
	accessTTL  time.Duration
	refreshTTL time.Duration
	session    SessionState
}

// NewStore creates a store over the given backends, highest priority first
func NewStore(session SessionState, accessTTL, refreshTTL time.Duration, backends ...Storage) *Store {
	return &Store{
		backends:   backends,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		session:    session,
	}
}

// SetCredential persists both tokens to every backend and marks the session
// authenticated. An incomplete pair is refused and leaves storage untouched.
// A backend that fails part way is rolled back so it never holds half a pair.
func (s *Store) SetCredential(accessToken, refreshToken string) error {
	cred := Credential{AccessToken: accessToken, RefreshToken: refreshToken}
	if !cred.Valid() {
		log.Error().
			Bool("has_access_token", accessToken != "").
			Bool("has_refresh_token", refreshToken != "").
			Msg("Refusing to store incomplete credential")
		return apperrors.ErrInvalidCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := 0
	for _, backend := range s.backends {
		if err := s.writePair(backend, cred); err != nil {
			log.Warn().Err(err).Str("backend", backend.Name()).Msg("Failed to persist credential")
			continue
		}
		stored++
	}
	if stored == 0 {
		return apperrors.ErrStorageUnavailable
	}

	s.session.Authenticate()
	return nil
}

func (s *Store) writePair(backend Storage, cred Credential) error {
	if err := backend.Set(AccessTokenKey, cred.AccessToken, s.accessTTL); err != nil {
		removePair(backend)
		return err
	}
	if err := backend.Set(RefreshTokenKey, cred.RefreshToken, s.refreshTTL); err != nil {
		removePair(backend)
		return err
	}
	return nil
}

// Token returns the first access token found, walking the backends in
// priority order. Backend errors read as absent; it never fails.
func (s *Store) Token() string {
	return s.lookup(AccessTokenKey)
}

// RefreshToken returns the first refresh token found, in the same order as Token
func (s *Store) RefreshToken() string {
	return s.lookup(RefreshTokenKey)
}

// Credential returns the pair from the highest priority backend holding both
func (s *Store) Credential() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, backend := range s.backends {
		access, err := backend.Get(AccessTokenKey)
		if err != nil || access == "" {
			continue
		}
		refresh, err := backend.Get(RefreshTokenKey)
		if err != nil || refresh == "" {
			continue
		}
		return Credential{AccessToken: access, RefreshToken: refresh}, true
	}
	return Credential{}, false
}

// ClearCredential removes the pair from every backend and resets the session.
// It is safe to call when nothing is stored.
func (s *Store) ClearCredential() {
	s.mu.Lock()
	for _, backend := range s.backends {
		removePair(backend)
	}
	s.mu.Unlock()

	s.session.Logout()
}

// IsAuthenticated reports whether the durable cookie backend holds an access
// token. It is a storage probe, not the session's authentication state.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.backends) == 0 {
		return false
	}
	token, err := s.backends[0].Get(AccessTokenKey)
	if err != nil {
		log.Debug().Err(err).Msg("Error checking authentication")
		return false
	}
	return token != ""
}

func (s *Store) lookup(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, backend := range s.backends {
		value, err := backend.Get(key)
		if err != nil {
			log.Debug().Err(err).Str("backend", backend.Name()).Str("key", key).Msg("Error reading token")
			continue
		}
		if value != "" {
			return value
		}
	}
	return ""
}

func removePair(backend Storage) {
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if err := backend.Remove(key); err != nil {
			log.Debug().Err(err).Str("backend", backend.Name()).Str("key", key).Msg("Failed to remove token")
		}
	}
}
