package credentials_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	cred := credentials.Credential{
		AccessToken:  signed(t, jwt.MapClaims{"sub": "u1", "role": "ADMIN", "exp": exp.Unix()}),
		RefreshToken: "r",
	}

	claims, err := cred.Claims()
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "ADMIN", claims.Role)
	require.True(t, exp.Equal(claims.ExpiresAt))

	tok := cred.OAuth2Token()
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, "r", tok.RefreshToken)
	require.True(t, exp.Equal(tok.Expiry))
}

func TestOpaqueTokenHasNoExpiry(t *testing.T) {
	cred := credentials.Credential{AccessToken: "opaque", RefreshToken: "r"}

	_, err := cred.Claims()
	require.Error(t, err)

	tok := cred.OAuth2Token()
	require.Equal(t, "opaque", tok.AccessToken)
	require.True(t, tok.Expiry.IsZero())
	require.True(t, tok.Valid())
}
