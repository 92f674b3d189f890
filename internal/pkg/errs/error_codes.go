/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both inside the server
and in responses sent to HTTP and WebSocket clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained data after the JSON value.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Chat Errors
const (
	// ErrNotAuthenticated indicates a chat message from a connection with no identity.
	ErrNotAuthenticated = 2001

	// ErrIdentityNotFound indicates that the email given to authenticate has no account.
	ErrIdentityNotFound = 2002

	// ErrAuthUnavailable indicates that the account lookup failed or timed out.
	ErrAuthUnavailable = 2003

	// ErrUnsupportedEvent indicates an inbound frame with an unknown or malformed event.
	ErrUnsupportedEvent = 2004

	// ErrMessageContentTooLong indicates that the chat message exceeded the maximum length.
	ErrMessageContentTooLong = 2201
)

// 3xxx: Account, Session, and Security Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the PoW proof provided by the client is incorrect.
	ErrPowChallengeInvalid = 3002

	// ErrEmailExists indicates that registration used an email that already has an account.
	ErrEmailExists = 3101

	// ErrInvalidEmail indicates a malformed email address.
	ErrInvalidEmail = 3102

	// ErrInvalidUsername indicates a missing or malformed username.
	ErrInvalidUsername = 3103

	// ErrInvalidPassword indicates a password outside the accepted length.
	ErrInvalidPassword = 3104

	// ErrUserNotFound indicates that no (eligible) account matched the request.
	ErrUserNotFound = 3105

	// ErrEmailNotVerified indicates a login attempt on an account whose OTP was never confirmed.
	ErrEmailNotVerified = 3106

	// ErrInvalidCredentials indicates a password mismatch on login.
	ErrInvalidCredentials = 3107

	// ErrOTPInvalid indicates that the supplied OTP does not match.
	ErrOTPInvalid = 3108

	// ErrOTPExpired indicates that the OTP window elapsed; the pending account was removed.
	ErrOTPExpired = 3109

	// ErrInvalidRating indicates a rating outside 1-5.
	ErrInvalidRating = 3110

	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = 3401
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStoreUnavailable indicates that the backing store could not serve the request.
	ErrStoreUnavailable = 5001
)
