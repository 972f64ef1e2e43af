package group

import "errors"

var (
	// ErrInvalidInput indicates invalid group input.
	ErrInvalidInput = errors.New("invalid group input")
	// ErrDuplicateMember indicates the user is already in the group.
	ErrDuplicateMember = errors.New("user is already a group member")
	// ErrNotProjectMember indicates the user cannot join a group in a
	// project they do not belong to.
	ErrNotProjectMember = errors.New("user is not a member of the group's project")
)
