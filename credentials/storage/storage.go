package storage

import (
	"path/filepath"

	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/internal/config"
)

// File names inside the data folder
const (
	CookieFileName = "cookies.json"
	LocalFileName  = "local.json"
)

// NewDefault builds the backends in priority order: durable cookie jar,
// local file, in-memory session. Files are sealed when a storage passphrase
// is configured.
func NewDefault(cfg config.Config) ([]credentials.Storage, error) {
	dir := cfg.GetDataFolder()

	var sealer *Sealer
	if passphrase := cfg.GetStoragePassphrase(); passphrase != "" {
		s, err := NewSealerForDir(dir, passphrase)
		if err != nil {
			return nil, err
		}
		sealer = s
	}

	return []credentials.Storage{
		NewCookieStorage(filepath.Join(dir, CookieFileName), cfg.GetSecureCookies(), sealer),
		NewLocalStorage(filepath.Join(dir, LocalFileName), sealer),
		NewSessionStorage(),
	}, nil
}
