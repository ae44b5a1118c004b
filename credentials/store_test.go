package credentials_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/credentials/storage"
	"github.com/jrsteele09/go-admin-console/credentials/storagefake"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/sessions"
	"github.com/stretchr/testify/require"
)

const (
	accessTTL  = 24 * time.Hour
	refreshTTL = 7 * 24 * time.Hour
)

func newStore(t *testing.T, backends ...credentials.Storage) (*credentials.Store, *sessions.Manager) {
	t.Helper()
	m := sessions.NewManager()
	m.SetLoading(false)
	return credentials.NewStore(m, accessTTL, refreshTTL, backends...), m
}

func fileBackends(t *testing.T) []credentials.Storage {
	dir := t.TempDir()
	return []credentials.Storage{
		storage.NewCookieStorage(dir+"/cookies.json", false, nil),
		storage.NewLocalStorage(dir+"/local.json", nil),
		storage.NewSessionStorage(),
	}
}

func TestSetThenGet(t *testing.T) {
	store, m := newStore(t, fileBackends(t)...)

	require.NoError(t, store.SetCredential("a", "r"))
	require.Equal(t, "a", store.Token())
	require.Equal(t, "r", store.RefreshToken())
	require.True(t, store.IsAuthenticated())
	require.True(t, m.Snapshot().IsAuthenticated)

	cred, ok := store.Credential()
	require.True(t, ok)
	require.Equal(t, credentials.Credential{AccessToken: "a", RefreshToken: "r"}, cred)
}

func TestEveryBackendHoldsThePair(t *testing.T) {
	backends := fileBackends(t)
	store, _ := newStore(t, backends...)
	require.NoError(t, store.SetCredential("a", "r"))

	for _, b := range backends {
		access, err := b.Get(credentials.AccessTokenKey)
		require.NoError(t, err)
		refresh, err := b.Get(credentials.RefreshTokenKey)
		require.NoError(t, err)
		require.Equal(t, "a", access, b.Name())
		require.Equal(t, "r", refresh, b.Name())
	}
}

func TestOneBackendUnavailable(t *testing.T) {
	for i, name := range []string{"cookie", "local", "session"} {
		t.Run(name, func(t *testing.T) {
			backends := fileBackends(t)
			backends[i] = storagefake.Unavailable{Label: name}
			store, m := newStore(t, backends...)

			require.NoError(t, store.SetCredential("a", "r"))
			require.Equal(t, "a", store.Token())
			require.Equal(t, "r", store.RefreshToken())
			require.True(t, m.Snapshot().IsAuthenticated)
			require.Equal(t, name != "cookie", store.IsAuthenticated())

			for j, b := range backends {
				if j == i {
					continue
				}
				access, err := b.Get(credentials.AccessTokenKey)
				require.NoError(t, err)
				require.Equal(t, "a", access, b.Name())
			}
		})
	}
}

func TestAllBackendsUnavailable(t *testing.T) {
	store, m := newStore(t, storagefake.Unavailable{}, storagefake.Unavailable{})

	err := store.SetCredential("a", "r")
	require.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	require.False(t, m.Snapshot().IsAuthenticated)
	require.Equal(t, "", store.Token())
}

func TestIncompletePairIsRefused(t *testing.T) {
	store, m := newStore(t, fileBackends(t)...)
	require.NoError(t, store.SetCredential("a", "r"))

	require.ErrorIs(t, store.SetCredential("", "r2"), apperrors.ErrInvalidCredential)
	require.ErrorIs(t, store.SetCredential("a2", ""), apperrors.ErrInvalidCredential)

	require.Equal(t, "a", store.Token())
	require.Equal(t, "r", store.RefreshToken())
	require.True(t, m.Snapshot().IsAuthenticated)
}

func TestIncompletePairOnEmptyStore(t *testing.T) {
	store, m := newStore(t, fileBackends(t)...)

	require.ErrorIs(t, store.SetCredential("", ""), apperrors.ErrInvalidCredential)
	require.Equal(t, "", store.Token())
	require.False(t, m.Snapshot().IsAuthenticated)
}

func TestFailureMidPairLeavesNoHalfPair(t *testing.T) {
	inner := storage.NewSessionStorage()
	flaky := &storagefake.Flaky{Inner: inner, FailSetKey: credentials.RefreshTokenKey}
	other := storage.NewSessionStorage()
	store, _ := newStore(t, flaky, other)

	require.NoError(t, store.SetCredential("a", "r"))

	access, err := inner.Get(credentials.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, "", access)

	require.Equal(t, "a", store.Token())
	require.Equal(t, "r", store.RefreshToken())
}

func TestClearIsIdempotent(t *testing.T) {
	backends := fileBackends(t)
	store, m := newStore(t, backends...)
	require.NoError(t, store.SetCredential("a", "r"))

	store.ClearCredential()
	store.ClearCredential()

	require.Equal(t, "", store.Token())
	require.Equal(t, "", store.RefreshToken())
	require.False(t, store.IsAuthenticated())
	_, ok := store.Credential()
	require.False(t, ok)

	s := m.Snapshot()
	require.False(t, s.IsAuthenticated)
	require.False(t, s.IsLoading)
	require.Nil(t, s.User)

	for _, b := range backends {
		v, err := b.Get(credentials.AccessTokenKey)
		require.NoError(t, err)
		require.Equal(t, "", v, b.Name())
	}
}

func TestClearWithUnavailableBackend(t *testing.T) {
	store, m := newStore(t, storagefake.Unavailable{}, storage.NewSessionStorage())
	require.NoError(t, store.SetCredential("a", "r"))

	store.ClearCredential()
	require.Equal(t, "", store.Token())
	require.False(t, m.Snapshot().IsAuthenticated)
}

func TestTokenFallsBackInPriorityOrder(t *testing.T) {
	cookie := storage.NewSessionStorage()
	local := storage.NewSessionStorage()
	store, _ := newStore(t, cookie, local)

	require.NoError(t, local.Set(credentials.AccessTokenKey, "from-local", 0))
	require.Equal(t, "from-local", store.Token())

	require.NoError(t, cookie.Set(credentials.AccessTokenKey, "from-cookie", 0))
	require.Equal(t, "from-cookie", store.Token())
}

func TestRefreshTokenIsNotTheAccessToken(t *testing.T) {
	store, _ := newStore(t, storage.NewSessionStorage())
	require.NoError(t, store.SetCredential("access", "refresh"))
	require.NotEqual(t, store.Token(), store.RefreshToken())
}

func TestStoreSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	open := func() *credentials.Store {
		store, _ := newStore(t,
			storage.NewCookieStorage(dir+"/cookies.json", false, nil),
			storage.NewLocalStorage(dir+"/local.json", nil),
			storage.NewSessionStorage(),
		)
		return store
	}

	require.NoError(t, open().SetCredential("a", "r"))

	reopened := open()
	require.True(t, reopened.IsAuthenticated())
	require.Equal(t, "a", reopened.Token())
	require.Equal(t, "r", reopened.RefreshToken())
}
