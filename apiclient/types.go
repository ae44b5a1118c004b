package apiclient

import (
	"bytes"
	"encoding/json"

	"github.com/jrsteele09/go-admin-console/users"
)

// Paths of the REST API consumed by the console
const (
	LoginPath    = "/api/v1/auth/login"
	RefreshPath  = "/api/v1/auth/refresh-token"
	ProfilePath  = "/api/v1/auth/profile"
	UsersPath    = "/api/v1/users"
	FineTunePath = "/api/v1/fine-tune"
)

// RequestIDHeader carries a unique ID for every request
const RequestIDHeader = "X-Request-ID"

// LoginRequest is the body of the login endpoint
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of the refresh endpoint
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// tokenFields is one level of a login or refresh response. The API has
// returned both snake_case and camelCase token names.
type tokenFields struct {
	AccessToken       string         `json:"access_token"`
	AccessTokenCamel  string         `json:"accessToken"`
	RefreshToken      string         `json:"refresh_token"`
	RefreshTokenCamel string         `json:"refreshToken"`
	User              *users.Profile `json:"user"`
}

func (t tokenFields) access() string {
	return firstNonEmpty(t.AccessToken, t.AccessTokenCamel)
}

func (t tokenFields) refresh() string {
	return firstNonEmpty(t.RefreshToken, t.RefreshTokenCamel)
}

// TokenResponse is a login or refresh response, with tokens either at the
// top level or under "data".
type TokenResponse struct {
	tokenFields
	Data *tokenFields `json:"data"`
}

// Tokens returns the access and refresh token, preferring the top level
func (r TokenResponse) Tokens() (string, string) {
	access, refresh := r.access(), r.refresh()
	if r.Data != nil {
		access = firstNonEmpty(access, r.Data.access())
		refresh = firstNonEmpty(refresh, r.Data.refresh())
	}
	return access, refresh
}

// Profile returns the user sent with the tokens, if any
func (r TokenResponse) Profile() *users.Profile {
	if r.User != nil {
		return r.User
	}
	if r.Data != nil {
		return r.Data.User
	}
	return nil
}

// decodeEnvelope decodes body into out, unwrapping a {"<key>": ...} envelope
// when one is present.
func decodeEnvelope(body []byte, out any, keys ...string) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return err
		}
		for _, key := range keys {
			if raw, ok := envelope[key]; ok && !isNull(raw) {
				return json.Unmarshal(raw, out)
			}
		}
	}
	return json.Unmarshal(trimmed, out)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
