package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert collides with an existing
// row on a unique constraint.
var ErrDuplicate = errors.New("duplicate")
