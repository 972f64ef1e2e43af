package task

import "errors"

var (
	// ErrInvalidInput indicates invalid task input.
	ErrInvalidInput = errors.New("invalid task input")
	// ErrInvalidStatus indicates an unknown task status.
	ErrInvalidStatus = errors.New("invalid task status")
)
