/*
Package errs provides custom error types and application-level error code constants.

This file maps every error code to its CustomError template (user message and HTTP status).
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Chat Errors
	ErrNotAuthenticated:      {Code: ErrNotAuthenticated, Message: "You are not authenticated."},
	ErrIdentityNotFound:      {Code: ErrIdentityNotFound, Message: "User not found in the database."},
	ErrAuthUnavailable:       {Code: ErrAuthUnavailable, Message: "Authentication is temporarily unavailable. Please try again."},
	ErrUnsupportedEvent:      {Code: ErrUnsupportedEvent, Message: "Unsupported event: %s."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long (max %d bytes)."},

	// 3xxx: Account, Session, and Security Errors
	ErrPowChallengeRequired: {Code: ErrPowChallengeRequired, Message: "Verification required. Please try again.", Status: http.StatusForbidden},
	ErrPowChallengeInvalid:  {Code: ErrPowChallengeInvalid, Message: "Verification failed. Please try again.", Status: http.StatusForbidden},
	ErrEmailExists:          {Code: ErrEmailExists, Message: "Email already exists."},
	ErrInvalidEmail:         {Code: ErrInvalidEmail, Message: "Invalid email address."},
	ErrInvalidUsername:      {Code: ErrInvalidUsername, Message: "Invalid username."},
	ErrInvalidPassword:      {Code: ErrInvalidPassword, Message: "Invalid password."},
	ErrUserNotFound:         {Code: ErrUserNotFound, Message: "User not found."},
	ErrEmailNotVerified:     {Code: ErrEmailNotVerified, Message: "Email not verified."},
	ErrInvalidCredentials:   {Code: ErrInvalidCredentials, Message: "Invalid password."},
	ErrOTPInvalid:           {Code: ErrOTPInvalid, Message: "Invalid OTP."},
	ErrOTPExpired:           {Code: ErrOTPExpired, Message: "OTP verification expired. Please register again."},
	ErrInvalidRating:        {Code: ErrInvalidRating, Message: "Rating must be between %d and %d."},
	ErrUnauthorized:         {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown:          {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStoreUnavailable: {Code: ErrStoreUnavailable, Message: "Service temporarily unavailable.", Status: http.StatusServiceUnavailable},
}
