package emodul

import (
	"errors"
	"fmt"
)

// Reserved status codes for failures that never reached the API.
const (
	// StatusTimeout is assigned to requests that exceeded the client timeout.
	StatusTimeout = 408

	// StatusClientError is assigned to transport failures and undecodable
	// responses, mirroring a server-side 500.
	StatusClientError = 500

	// StatusUnauthorized is assigned to requests attempted without a session
	// and to failed logins.
	StatusUnauthorized = 401
)

// APIError is returned for any eMODUL API failure that is not an
// authentication problem: non-200 responses, transport errors, malformed
// JSON and timeouts. These are transient from the caller's point of view;
// the next poll cycle may succeed.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("emodul: api error %d: %s", e.Status, e.Message)
}

// AuthError is returned when the session is missing or invalid, or when an
// explicit login fails. Unlike APIError it is fatal to the current session:
// the caller must re-authenticate before retrying.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("emodul: auth error %d: %s", e.Status, e.Message)
}

// Sentinel errors for cache lookups. These are distinct from the two
// network error kinds; a not-found zone after a successful refresh is not
// an API failure.
var (
	// ErrZoneNotFound is returned when a zone id is absent after a refresh.
	ErrZoneNotFound = errors.New("emodul: zone not found")

	// ErrTileNotFound is returned when a tile id is absent after a refresh.
	ErrTileNotFound = errors.New("emodul: tile not found")
)

// IsAuthError reports whether err is (or wraps) an AuthError.
// Callers use this to decide between re-authentication and plain retry.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
