package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Login exchanges email and password for a token pair, stores it and marks
// the session authenticated. The returned profile is nil when the API did not
// send one. A rejected login is returned as an *APIError; it never refreshes.
func (c *Client) Login(ctx context.Context, email, password string) (*users.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "email and password are required")
	}

	var resp TokenResponse
	err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      LoginPath,
		body:      LoginRequest{Email: email, Password: password},
		anonymous: true,
		decode: func(body []byte) error {
			return json.Unmarshal(body, &resp)
		},
	})
	if err != nil {
		log.Err(err).Str("email", email).Msg("Login failed")
		return nil, err
	}

	accessToken, refreshToken := resp.Tokens()
	if accessToken == "" || refreshToken == "" {
		log.Error().
			Bool("has_access_token", accessToken != "").
			Bool("has_refresh_token", refreshToken != "").
			Msg("Missing tokens in login response")
		return nil, apperrors.ErrMissingTokens
	}
	if err := c.store.SetCredential(accessToken, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}

	user := resp.Profile()
	if user != nil {
		c.session.SetUser(user)
	}
	log.Info().Str("email", email).Msg("Login successful")
	return user, nil
}

// Refresh exchanges the stored refresh token for a new pair, sharing any
// refresh already in flight. If it fails the session is ended.
func (c *Client) Refresh(ctx context.Context) error {
	if err := c.sharedRefresh(ctx, c.store.Token()); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &SessionExpiredError{Cause: err}
	}
	return nil
}

// Profile fetches the signed in user's profile
func (c *Client) Profile(ctx context.Context) (*users.Profile, error) {
	var profile users.Profile
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   ProfilePath,
		decode: func(body []byte) error {
			return decodeEnvelope(body, &profile, "user", "data")
		},
	})
	if err != nil {
		return nil, err
	}
	if profile.ID == "" && profile.Email == "" {
		return nil, fmt.Errorf("empty profile in response")
	}
	return &profile, nil
}

// Logout clears the credential and tells the host to show the login page
func (c *Client) Logout() {
	c.endSession(ReasonLogout)
	log.Info().Msg("Logged out")
}

// TokenSource exposes the stored credential as an oauth2.TokenSource
func (c *Client) TokenSource() oauth2.TokenSource {
	return storeTokenSource{store: c.store}
}

type storeTokenSource struct {
	store CredentialStore
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	cred, ok := s.store.Credential()
	if !ok {
		return nil, apperrors.ErrNotLoggedIn
	}
	return cred.OAuth2Token(), nil
}
