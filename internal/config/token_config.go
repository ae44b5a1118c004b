package config

import "time"

type TokenConfig interface {
	GetAccessTokenCookieExpiry() time.Duration
	GetRefreshTokenCookieExpiry() time.Duration
	GetRefreshTimeout() time.Duration
}

type Tokens struct {
	file fileValues
}

var _ TokenConfig = Tokens{}

func (t Tokens) GetAccessTokenCookieExpiry() time.Duration {
	return t.duration("ACCESS_TOKEN_COOKIE_EXPIRY", 24*time.Hour) // 1 day
}

func (t Tokens) GetRefreshTokenCookieExpiry() time.Duration {
	return t.duration("REFRESH_TOKEN_COOKIE_EXPIRY", 7*24*time.Hour) // 7 days
}

func (t Tokens) GetRefreshTimeout() time.Duration {
	return t.duration("REFRESH_TIMEOUT", 15*time.Second)
}

func (t Tokens) duration(name string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(t.file.get(name, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
