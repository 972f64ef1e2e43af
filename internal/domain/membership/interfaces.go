package membership

import "context"

// Repository provides persistence for project memberships.
type Repository interface {
	Get(ctx context.Context, projectID, userID string) (*Membership, error)
}

// ProjectRepository exposes the project existence check the resolver needs.
type ProjectRepository interface {
	Exists(ctx context.Context, projectID string) (bool, error)
}

// GroupRepository maps a group to its owning project.
type GroupRepository interface {
	ProjectID(ctx context.Context, groupID string) (string, error)
}
