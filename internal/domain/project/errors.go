package project

import "errors"

var (
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrInvalidStatus indicates an unknown project status.
	ErrInvalidStatus = errors.New("invalid project status")
)
