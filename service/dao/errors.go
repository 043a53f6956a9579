package dao

import "errors"

// Common, reusable DAO errors. Callers detect them via errors.Is.

var (
	// ErrNotFound is returned when the requested entity does not exist in the
	// underlying storage.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates that the supplied location is empty or otherwise
	// invalid.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist nothing.
	ErrNilEntity = errors.New("dao: nil entity")
)
