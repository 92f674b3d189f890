/*
Package randx provides cryptographically secure random values and unique identifiers.

It generates the numeric one-time passwords mailed at registration, and the UUIDs used
for connection, user, feedback and rating identifiers.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// OTPLength is the number of digits in a one-time password.
	OTPLength = 6

	otpDigits = "0123456789"
)

// OTP generates a numeric one-time password of OTPLength digits using crypto/rand.
// Leading zeros are kept, so the result is always exactly OTPLength characters.
func OTP() (string, error) {
	result := make([]byte, OTPLength)
	max := big.NewInt(int64(len(otpDigits)))

	for i := range OTPLength {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit for otp: %w", err)
		}
		result[i] = otpDigits[num.Int64()]
	}

	return string(result), nil
}

// IsValidOTP reports whether s has the shape of a generated OTP.
func IsValidOTP(s string) bool {
	if len(s) != OTPLength {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ConnectionID returns a new identifier for one live WebSocket session.
func ConnectionID() string {
	return uuid.New().String()
}

// NewID returns a UUID v4 for stored records.
func NewID() uuid.UUID {
	return uuid.New()
}
