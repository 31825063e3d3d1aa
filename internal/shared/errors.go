package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure. Unknown username and
	// wrong password collapse to this single error so callers cannot tell
	// which check failed.
	ErrInvalidCredentials = errors.New("incorrect username or password")
)
