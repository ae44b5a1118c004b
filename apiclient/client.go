package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-console/credentials"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/internal/metrics"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// CredentialStore is where the client reads and persists the token pair
type CredentialStore interface {
	Token() string
	RefreshToken() string
	Credential() (credentials.Credential, bool)
	SetCredential(accessToken, refreshToken string) error
	ClearCredential()
}

// ProfileSetter receives the profile returned at login
type ProfileSetter interface {
	SetUser(user *users.Profile)
}

const (
	defaultTimeout        = 30 * time.Second
	defaultRefreshTimeout = 15 * time.Second
	refreshFlightKey      = "refresh"
)

// Client calls the REST API on behalf of the signed in operator. It attaches
// the stored access token to every request and, on a 401, refreshes the pair
// once and retries. Concurrent 401s share a single refresh.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	store          CredentialStore
	session        ProfileSetter
	metrics        *metrics.Metrics
	refreshTimeout time.Duration
	onSessionEnd   func(SessionExpired)
	refreshes      singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the client used for every request
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithMetrics records request and refresh metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRefreshTimeout bounds how long a shared refresh may take
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.refreshTimeout = d
	}
}

// WithSessionExpiredHandler registers the function told to navigate away when
// the session ends.
func WithSessionExpiredHandler(fn func(SessionExpired)) Option {
	return func(c *Client) {
		c.onSessionEnd = fn
	}
}

// New creates a client for the API at baseURL
func New(baseURL string, store CredentialStore, session ProfileSetter, opts ...Option) *Client {
	c := &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: defaultTimeout},
		store:          store,
		session:        session,
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.Nop()
	}
	return c
}

// call describes one API request
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	// decode unwraps the response into out
	decode func(body []byte) error
	// anonymous requests carry no bearer token and never refresh
	anonymous bool
}

// do runs the request pipeline. A 401 on the first attempt triggers a
// refresh and one retry; a 401 on the retry is returned as is.
func (c *Client) do(ctx context.Context, r call) error {
	var payload []byte
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		token := ""
		if !r.anonymous {
			token = c.store.Token()
		}

		status, body, err := c.send(ctx, r.method, r.path, r.query, payload, token)
		if err != nil {
			return err
		}

		if status == http.StatusUnauthorized && !r.anonymous && attempt == 0 {
			if err := c.recoverUnauthorized(ctx, token, newAPIError(status, body)); err != nil {
				return err
			}
			continue
		}

		if status < 200 || status >= 300 {
			return newAPIError(status, body)
		}
		if r.decode == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := r.decode(body); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", r.path, err)
		}
		return nil
	}
}

// send performs a single HTTP exchange and returns the status and body
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (int, []byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.APIRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.APIRequests.WithLabelValues(method, "error").Inc()
		log.Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("API request failed")
		return 0, nil, fmt.Errorf("failed to perform request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.APIRequests.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Bool("authenticated", token != "").
		Str("request_id", requestID).
		Dur("elapsed", time.Since(start)).
		Msg("API request")

	return resp.StatusCode, body, nil
}

// recoverUnauthorized gets a fresh token for the retry
func (c *Client) recoverUnauthorized(ctx context.Context, sentToken string, original *APIError) error {
	if err := c.sharedRefresh(ctx, sentToken); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &SessionExpiredError{Original: original, Cause: err}
	}
	return nil
}

// sharedRefresh joins the refresh in flight or starts one. A caller whose
// context ends stops waiting; the refresh itself carries on for the others.
// When the rejected token has already been replaced, the stored one is
// reused and no refresh is made.
func (c *Client) sharedRefresh(ctx context.Context, rejectedToken string) error {
	results := c.refreshes.DoChan(refreshFlightKey, func() (any, error) {
		if current := c.store.Token(); current != "" && current != rejectedToken {
			log.Debug().Msg("Access token already replaced, retrying without refresh")
			return nil, nil
		}
		return nil, c.refreshOnce(ctx)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-results:
		if res.Shared {
			c.metrics.RefreshWaiters.Inc()
		}
		return res.Err
	}
}

// refreshOnce exchanges the refresh token for a new pair and persists it
// before any waiter is released. On failure the session is ended.
func (c *Client) refreshOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	if err := c.exchangeRefreshToken(ctx); err != nil {
		c.metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		c.metrics.SessionExpirations.Inc()
		log.Warn().Err(err).Msg("Token refresh failed, ending session")
		c.endSession(ReasonRefreshFailed)
		return err
	}

	c.metrics.TokenRefreshes.WithLabelValues("success").Inc()
	log.Info().Msg("Access token refreshed")
	return nil
}

func (c *Client) exchangeRefreshToken(ctx context.Context) error {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		return apperrors.ErrNoRefreshToken
	}

	payload, err := json.Marshal(RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	status, body, err := c.send(ctx, http.MethodPost, RefreshPath, nil, payload, "")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return newAPIError(status, body)
	}

	var resp TokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	accessToken, newRefreshToken := resp.Tokens()
	if accessToken == "" || newRefreshToken == "" {
		return apperrors.ErrMissingTokens
	}
	return c.store.SetCredential(accessToken, newRefreshToken)
}

// endSession clears the credential and tells the host to show the login page
func (c *Client) endSession(reason Reason) {
	c.store.ClearCredential()
	if c.onSessionEnd != nil {
		c.onSessionEnd(SessionExpired{RedirectTo: LoginRoute, Reason: reason})
	}
}
