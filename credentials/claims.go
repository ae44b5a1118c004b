package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Claims are the access token claims the console cares about. They are read
// without verifying the signature: the API verifies, the console only uses
// them for display and expiry hints.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Claims parses the access token as an unverified JWT
func (c Credential) Claims() (Claims, error) {
	if c.AccessToken == "" {
		return Claims{}, errors.New("empty access token")
	}

	token, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("error extracting claims")
	}

	var claims Claims
	claims.Subject, _ = mapClaims.GetSubject()
	claims.Role, _ = mapClaims["role"].(string)
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// OAuth2Token converts the pair into an oauth2.Token. Expiry comes from the
// access token's exp claim when it is a JWT; opaque tokens never expire from
// the client's point of view.
func (c Credential) OAuth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
	}
	if claims, err := c.Claims(); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok
}
