package auth

import "errors"

var (
	// ErrNotLoggedIn is returned by operations that require a
	// logged-in AuthState (tachyon token + browser device present).
	ErrNotLoggedIn = errors.New("auth: not logged in")

	// ErrNoRefreshKey is returned when RefreshToken is called before
	// a refresh key has been installed (before the first pairing).
	ErrNoRefreshKey = errors.New("auth: no refresh key installed")

	// ErrInvalidSnapshot is returned by RestoreFromSnapshot when the
	// persisted refresh key DER can't be parsed.
	ErrInvalidSnapshot = errors.New("auth: invalid persisted snapshot")
)
