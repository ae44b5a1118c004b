package config

import "strings"

type SecurityConfig interface {
	GetSecureCookies() bool
	GetStoragePassphrase() string
}

type Security struct {
	file fileValues
}

var _ SecurityConfig = Security{}

// GetSecureCookies marks persisted cookies Secure outside development.
func (s Security) GetSecureCookies() bool {
	return strings.ToUpper(s.file.get(envVar, "DEV")) == envProduction
}

// GetStoragePassphrase seals the on-disk credential files when set.
func (s Security) GetStoragePassphrase() string {
	return s.file.get("STORAGE_PASSPHRASE", "")
}
