package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/credentials/storage"
	"github.com/jrsteele09/go-admin-console/internal/apitest"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/internal/metrics"
	"github.com/jrsteele09/go-admin-console/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	client  *apiclient.Client
	store   *credentials.Store
	session *sessions.Manager
	cookie  *storage.SessionStorage
	metrics *metrics.Metrics

	mu     sync.Mutex
	events []apiclient.SessionExpired
}

func (h *harness) expired() []apiclient.SessionExpired {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]apiclient.SessionExpired(nil), h.events...)
}

func newHarness(t *testing.T, baseURL string) *harness {
	t.Helper()

	h := &harness{
		session: sessions.NewManager(),
		cookie:  storage.NewSessionStorage(),
		metrics: metrics.NewMetrics(prometheus.NewRegistry()),
	}
	h.session.SetLoading(false)
	h.store = credentials.NewStore(h.session, time.Hour, 24*time.Hour, h.cookie, storage.NewSessionStorage())
	h.client = apiclient.New(baseURL, h.store, h.session,
		apiclient.WithMetrics(h.metrics),
		apiclient.WithRefreshTimeout(5*time.Second),
		apiclient.WithSessionExpiredHandler(func(e apiclient.SessionExpired) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.events = append(h.events, e)
		}),
	)
	return h
}

func loggedIn(t *testing.T) (*apitest.Server, *harness) {
	t.Helper()
	api := apitest.New(t)
	h := newHarness(t, api.URL)
	_, err := h.client.Login(context.Background(), apitest.AdminEmail, apitest.AdminPassword)
	require.NoError(t, err)
	return api, h
}

func TestLoginScenario(t *testing.T) {
	var got apiclient.LoginRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, apiclient.LoginPath, r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"A1","refresh_token":"R1","user":{"id":"u1","role":"USER"}}`))
	}))
	defer srv.Close()

	h := newHarness(t, srv.URL)
	user, err := h.client.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	require.Equal(t, apiclient.LoginRequest{Email: "a@b.com", Password: "x"}, got)
	require.Equal(t, "u1", user.ID)

	require.Equal(t, "A1", h.store.Token())
	require.Equal(t, "R1", h.store.RefreshToken())
	s := h.session.Snapshot()
	require.True(t, s.IsAuthenticated)
	require.Equal(t, "u1", s.User.ID)
}

func TestLoginTokensUnderData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"accessToken":"A2","refreshToken":"R2"}}`))
	}))
	defer srv.Close()

	h := newHarness(t, srv.URL)
	user, err := h.client.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	require.Nil(t, user)
	require.Equal(t, "A2", h.store.Token())
	require.True(t, h.session.Snapshot().IsAuthenticated)
}

func TestLoginMissingTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"A1"}`))
	}))
	defer srv.Close()

	h := newHarness(t, srv.URL)
	_, err := h.client.Login(context.Background(), "a@b.com", "x")
	require.ErrorIs(t, err, apperrors.ErrMissingTokens)
	require.Equal(t, "", h.store.Token())
	require.False(t, h.session.Snapshot().IsAuthenticated)
}

func TestLoginRejectedNeverRefreshes(t *testing.T) {
	api := apitest.New(t)
	h := newHarness(t, api.URL)

	_, err := h.client.Login(context.Background(), apitest.AdminEmail, "wrong")
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Invalid email or password", apiErr.Message)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.Equal(t, 0, api.RefreshCalls())
	require.Empty(t, h.expired())
}

func TestLoginValidatesLocally(t *testing.T) {
	api := apitest.New(t)
	h := newHarness(t, api.URL)

	_, err := h.client.Login(context.Background(), " ", "")
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	require.Equal(t, 0, api.Calls(http.MethodPost, apiclient.LoginPath))
}

func TestRequestHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(apiclient.RequestIDHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"a@b.com"}}`))
	}))
	defer srv.Close()

	h := newHarness(t, srv.URL)
	require.NoError(t, h.store.SetCredential("A1", "R1"))

	profile, err := h.client.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", profile.ID)
}

func TestUnauthenticatedRequestHasNoBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"u1"}`))
	}))
	defer srv.Close()

	h := newHarness(t, srv.URL)
	profile, err := h.client.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", profile.ID)
}

func TestSingle401RefreshesOnceAndRetriesOnce(t *testing.T) {
	api, h := loggedIn(t)
	before := h.store.Token()
	api.ExpireAccessTokens()

	profile, err := h.client.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, apitest.AdminEmail, profile.Email)

	require.Equal(t, 1, api.RefreshCalls())
	require.Equal(t, 2, api.Calls(http.MethodGet, apiclient.ProfilePath))
	require.NotEqual(t, before, h.store.Token())
	require.True(t, h.session.Snapshot().IsAuthenticated)
	require.Equal(t, 1.0, testutil.ToFloat64(h.metrics.TokenRefreshes.WithLabelValues("success")))
}

func TestTokenReplacedDuringRequestSkipsRefresh(t *testing.T) {
	var refreshes, profiles atomic.Int32
	var h *harness
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case apiclient.RefreshPath:
			refreshes.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		case apiclient.ProfilePath:
			if profiles.Add(1) == 1 {
				assert.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
				// Another request finished a refresh while this one was out
				assert.NoError(t, h.store.SetCredential("A2", "R2"))
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			assert.Equal(t, "Bearer A2", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"a@b.com"}}`))
		}
	}))
	defer srv.Close()

	h = newHarness(t, srv.URL)
	require.NoError(t, h.store.SetCredential("A1", "R1"))

	profile, err := h.client.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", profile.ID)
	require.Zero(t, refreshes.Load())
	require.EqualValues(t, 2, profiles.Load())
	require.Equal(t, "R2", h.store.RefreshToken())
}

func TestRepeated401DoesNotLoop(t *testing.T) {
	api, h := loggedIn(t)
	api.RejectAllTokens(true)

	_, err := h.client.Profile(context.Background())
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.NotErrorIs(t, err, apperrors.ErrSessionExpired)

	require.Equal(t, 1, api.RefreshCalls())
	require.Equal(t, 2, api.Calls(http.MethodGet, apiclient.ProfilePath))
	require.Empty(t, h.expired())
}

func Test401WithoutRefreshToken(t *testing.T) {
	api := apitest.New(t)
	h := newHarness(t, api.URL)
	require.NoError(t, h.cookie.Set(credentials.AccessTokenKey, "stale", time.Hour))

	_, err := h.client.Profile(context.Background())
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.ErrorIs(t, err, apperrors.ErrNoRefreshToken)

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	require.Equal(t, 0, api.RefreshCalls())
	require.Equal(t, "", h.store.Token())
	require.Equal(t, []apiclient.SessionExpired{{RedirectTo: "/login", Reason: apiclient.ReasonRefreshFailed}}, h.expired())
	require.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SessionExpirations))
}

func TestRefreshRejectedEndsSession(t *testing.T) {
	api, h := loggedIn(t)
	api.ExpireAccessTokens()
	api.FailRefresh(true)

	_, err := h.client.ListFineTunes(context.Background(), 1, 10)
	var expired *apiclient.SessionExpiredError
	require.ErrorAs(t, err, &expired)
	require.Equal(t, http.StatusUnauthorized, expired.Original.StatusCode)

	require.Equal(t, 1, api.RefreshCalls())
	require.Equal(t, "", h.store.Token())
	require.Equal(t, "", h.store.RefreshToken())
	s := h.session.Snapshot()
	require.False(t, s.IsAuthenticated)
	require.Nil(t, s.User)
	require.Len(t, h.expired(), 1)
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	api, h := loggedIn(t)
	api.AddFineTune("p", "r")
	api.ExpireAccessTokens()
	api.SetRefreshDelay(100 * time.Millisecond)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.client.ListFineTunes(context.Background(), 1, 10)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, api.RefreshCalls())
	require.Empty(t, h.expired())
}

func TestCancelledCallerDoesNotFailSharedRefresh(t *testing.T) {
	api, h := loggedIn(t)
	api.ExpireAccessTokens()
	api.SetRefreshDelay(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := h.client.Profile(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, apperrors.ErrSessionExpired)

	require.Eventually(t, func() bool {
		_, err := h.client.Profile(context.Background())
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	require.Equal(t, 1, api.RefreshCalls())
	require.Empty(t, h.expired())
}

func TestExplicitRefresh(t *testing.T) {
	api, h := loggedIn(t)
	before := h.store.RefreshToken()

	require.NoError(t, h.client.Refresh(context.Background()))
	require.NotEqual(t, before, h.store.RefreshToken())

	api.RevokeRefreshTokens()
	err := h.client.Refresh(context.Background())
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Equal(t, "", h.store.Token())
}

func TestLogout(t *testing.T) {
	_, h := loggedIn(t)

	h.client.Logout()
	require.Equal(t, "", h.store.Token())
	require.False(t, h.session.Snapshot().IsAuthenticated)
	require.Equal(t, []apiclient.SessionExpired{{RedirectTo: "/login", Reason: apiclient.ReasonLogout}}, h.expired())
}

func TestTokenSource(t *testing.T) {
	_, h := loggedIn(t)

	tok, err := h.client.TokenSource().Token()
	require.NoError(t, err)
	require.Equal(t, h.store.Token(), tok.AccessToken)
	require.True(t, tok.Valid())
	require.False(t, tok.Expiry.IsZero())

	h.client.Logout()
	_, err = h.client.TokenSource().Token()
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
}

func TestAPIErrorMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":400,"message":["email must be an email","phone should not be empty"]}`))
	}))
	defer srv.Close()

	h := newHarness(t, srv.URL)
	err := h.client.DeleteUser(context.Background(), "u1")
	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "email must be an email; phone should not be empty", apiErr.Message)
	require.Contains(t, err.Error(), "400")
}
