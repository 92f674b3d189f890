/*
Package user contains the account record kept by the Account Directory and the rules
attached to it: email normalization, password hashing and the OTP verification window.
*/
package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is one registered account. The email is the natural key.
type User struct {
	// ID is the immutable account identifier.
	ID uuid.UUID `json:"id"`

	// Username is the display name shown in chat.
	Username string `json:"username"`

	// Email is unique across accounts and stored normalized.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string `json:"-"`

	// OTP is the outstanding one-time password; empty once verified.
	OTP string `json:"-"`

	// Verified is set once the OTP has been confirmed.
	Verified bool `json:"verified"`

	// CreatedAt is the registration time, used for the OTP window.
	CreatedAt time.Time `json:"createdAt"`
}

// ErrInvalidEmail is returned by NormalizeEmail for unparsable addresses.
var ErrInvalidEmail = errors.New("invalid email address")

// NormalizeEmail trims and lower-cases an address and checks that it parses as a
// bare RFC 5322 address.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// New builds an unverified account carrying otp.
func New(username, email, password, otp string, now time.Time) (*User, error) {
	u := &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		OTP:       otp,
		CreatedAt: now.UTC(),
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash with a bcrypt hash of plain.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// OTPWindowOpen reports whether an OTP submitted at now may still verify the account:
// verified accounts always may, pending ones only within ttl of registration.
func (u *User) OTPWindowOpen(now time.Time, ttl time.Duration) bool {
	return u.Verified || u.CreatedAt.After(now.Add(-ttl))
}

// MarkVerified confirms the account and clears the outstanding OTP.
func (u *User) MarkVerified() {
	u.Verified = true
	u.OTP = ""
}
