package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "http://localhost:3000", c.GetAPIURL())
	require.Equal(t, "DEV", c.GetEnv())
	require.False(t, c.IsProduction())
	require.False(t, c.GetSecureCookies())
	require.Equal(t, 24*time.Hour, c.GetAccessTokenCookieExpiry())
	require.Equal(t, 7*24*time.Hour, c.GetRefreshTokenCookieExpiry())
}

func TestFileValuesAreOverriddenByEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://api.example.com/\nport: \"9000\"\nenv: production\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("API_URL", "")
	t.Setenv("ENV", "")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com", c.GetAPIURL())
	require.Equal(t, ":9100", c.GetPort())
	require.True(t, c.IsProduction())
	require.True(t, c.GetSecureCookies())
}

func TestMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := config.New()
	require.Error(t, err)
}
