package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a conditional update lost a concurrent race.
	// Callers may retry after re-reading state.
	ErrConflict = errors.New("concurrent modification conflict")
	// ErrPointUnavailable indicates the targeted attention point was taken
	// between selection and binding.
	ErrPointUnavailable = errors.New("attention point unavailable")
	// ErrNoneAvailable indicates no attention point is currently free.
	ErrNoneAvailable = errors.New("no attention point available")
	// ErrDuplicate indicates a unique key collision on insert.
	ErrDuplicate = errors.New("duplicate record")
)
