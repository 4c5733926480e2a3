package repository

import "errors"

// ErrNotFound is returned (wrapped) when a keyed record does not exist.
var ErrNotFound = errors.New("not found")

// ErrMalformed is returned when a write needs a stored value that cannot be
// decoded. Reads treat the same value as absent.
var ErrMalformed = errors.New("malformed stored value")
