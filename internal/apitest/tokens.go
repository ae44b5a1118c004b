package apitest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-console/users"
)

// issuer signs access tokens and keeps track of the refresh and access tokens
// that are currently live. Refresh tokens are single use: each refresh
// rotates the pair.
type issuer struct {
	mu        sync.Mutex
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
	access    map[string]string // access token to user id
	refresh   map[string]string // refresh token to user id
}

func newIssuer() *issuer {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)
	return &issuer{
		secret:    secret,
		accessTTL: 15 * time.Minute,
		now:       time.Now,
		access:    make(map[string]string),
		refresh:   make(map[string]string),
	}
}

// issue creates a new pair for user, replacing any refresh token it held
func (i *issuer) issue(user *users.User) (string, string, error) {
	claims := jwtlib.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  i.now().Unix(),
		"exp":  i.now().Add(i.accessTTL).Unix(),
		"jti":  uuid.New().String(),
	}
	accessToken, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign JWT token: %w", err)
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	refreshToken := hex.EncodeToString(tokenBytes)

	i.mu.Lock()
	defer i.mu.Unlock()
	for token, userID := range i.refresh {
		if userID == user.ID {
			delete(i.refresh, token)
		}
	}
	i.access[accessToken] = user.ID
	i.refresh[refreshToken] = user.ID
	return accessToken, refreshToken, nil
}

// userForAccess verifies the token signature and that it is still live
func (i *issuer) userForAccess(token string) (string, bool) {
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		return i.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(i.now))
	if err != nil || !parsed.Valid {
		return "", false
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	userID, ok := i.access[token]
	return userID, ok
}

// redeem consumes a refresh token
func (i *issuer) redeem(token string) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	userID, ok := i.refresh[token]
	if ok {
		delete(i.refresh, token)
	}
	return userID, ok
}

// expireAccess invalidates every access token issued so far
func (i *issuer) expireAccess() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.access = make(map[string]string)
}

// revokeRefresh invalidates every refresh token issued so far
func (i *issuer) revokeRefresh() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.refresh = make(map[string]string)
}
