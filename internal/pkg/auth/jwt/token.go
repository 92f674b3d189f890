package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// SessionExpiration is how long a login stays valid for the profile route.
	SessionExpiration = 24 * time.Hour

	// TokenIssuer is stamped on every session token and required when parsing.
	TokenIssuer = "Backbench-Server"
)

var (
	ErrSigningMethod = errors.New("jwt: unexpected signing method")
	ErrTokenInvalid  = errors.New("jwt: invalid or expired session token")
	ErrTokenIssuer   = errors.New("jwt: session token from another issuer")
)

// IssueSessionToken signs the login identity of one account with HS256.
// The caller's payload is not modified.
func IssueSessionToken(identity Payload, secretKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	identity.StandardClaims = jwt.StandardClaims{
		Subject:   identity.ID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
		Issuer:    TokenIssuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &identity).SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("jwt: sign session for %s: %w", identity.ID, err)
	}
	return signed, nil
}

// ParseSessionToken returns the account identity carried by a token from
// IssueSessionToken. Only HS256 tokens from TokenIssuer are accepted.
func ParseSessionToken(tokenString, secretKey string) (*Payload, error) {
	identity := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, identity, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrSigningMethod
		}
		return []byte(secretKey), nil
	})
	switch {
	case err != nil, !token.Valid:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	case identity.Issuer != TokenIssuer:
		return nil, ErrTokenIssuer
	}
	return identity, nil
}
