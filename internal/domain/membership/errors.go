package membership

import "errors"

var (
	// ErrNoAccess indicates the project exists but the user holds no
	// membership in it. Distinct from repository.ErrNotFound (unknown
	// project) for internal logging; external callers map both to the
	// same forbidden result.
	ErrNoAccess = errors.New("no membership in project")
	// ErrDuplicateMember indicates the user already has an active
	// membership in the project.
	ErrDuplicateMember = errors.New("user is already a project member")
	// ErrOwnerRequired indicates an attempt to remove or demote the sole
	// owner of an existing project.
	ErrOwnerRequired = errors.New("project owner membership cannot be removed")
	// ErrOwnerExists indicates an attempt to grant the owner role while
	// the project already has one.
	ErrOwnerExists = errors.New("project already has an owner")
)
