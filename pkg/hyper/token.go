package hyper

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of a bearer token. Tokens are issued per request
// and never reused, so the window only has to cover one round trip.
const TokenTTL = 600 * time.Second

// TokenClaims are the claims carried by a bearer token.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// IssueToken signs {sub: key, exp: now+TokenTTL} with secret using HS256.
func IssueToken(key, secret string) (string, error) {
	return issueToken(key, secret, time.Now())
}

func issueToken(key, secret string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   key,
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// DecodeToken verifies token against secret and returns its claims.
// Expired tokens are rejected.
func DecodeToken(token, secret string) (*TokenClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	out := &TokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
