package authz

import "errors"

var (
	// ErrForbidden indicates the caller's role does not permit the action.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = errors.New("invalid role")
)
