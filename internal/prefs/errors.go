package prefs

import "errors"

var (
	// ErrInvalidKey is returned for keys that cannot be stored without
	// corrupting the key index.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidValue is returned when user-supplied text does not parse
	// under the requested kind.
	ErrInvalidValue = errors.New("invalid value")

	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("store is closed")
)
