package activity

import "errors"

var (
	// ErrEmptyChanges indicates an attempt to record an entry without a
	// changes payload.
	ErrEmptyChanges = errors.New("audit entry requires a changes payload")
	// ErrInvalidInput indicates a malformed entry.
	ErrInvalidInput = errors.New("invalid activity input")
)
