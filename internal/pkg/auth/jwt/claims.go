package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued at login.
// It carries the standard claims plus the account identity shown to the client.
type Payload struct {
	// StandardClaims embeds expiry, issued-at and issuer.
	jwt.StandardClaims

	// ID is the account UUID.
	ID string `json:"id"`

	// Email is the account's unique email, the key used by the Account Directory.
	Email string `json:"email"`

	// Username is the display name used in chat.
	Username string `json:"username"`
}
