package auth

import "errors"

// Sentinel errors returned by the auth service.  Handlers match these
// with errors.Is and translate them to status codes; anything else is a
// persistence failure and surfaces as a generic 500.
var (
	// ErrDuplicateUsername and ErrDuplicateEmail reject registrations
	// that collide with an existing account.
	ErrDuplicateUsername = errors.New("a user already exists with that username")
	ErrDuplicateEmail    = errors.New("a user already exists with that email")

	// ErrInvalidCredentials covers both "no such user" and "wrong
	// password" so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token refresh failures.
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("invalid token type")
	ErrTokenRevoked   = errors.New("token has been revoked")

	// ErrUnauthorized means the request carried no usable credential
	// evidence; the strict gate turns it into a 401.
	ErrUnauthorized = errors.New("could not validate credentials")

	// ErrCorruptHash means the stored password hash is unusable.  This
	// is a server-side fault, never reported as bad credentials.
	ErrCorruptHash = errors.New("stored password hash is corrupt")
)
