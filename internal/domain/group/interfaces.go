package group

import (
	"context"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/domain/membership"
)

// Repository provides persistence for groups and group memberships.
type Repository interface {
	Create(ctx context.Context, g *Group) error
	Get(ctx context.Context, id string) (*Group, error)
	Update(ctx context.Context, g *Group) error
	Delete(ctx context.Context, id string) error
	ListByProject(ctx context.Context, projectID string) ([]Group, error)

	AddMember(ctx context.Context, gm *membership.GroupMembership) error
	GetMember(ctx context.Context, groupID, userID string) (*membership.GroupMembership, error)
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string) ([]membership.GroupMembership, error)
}

// ProjectMemberships verifies that a user belongs to the group's project
// before they are placed in a group.
type ProjectMemberships interface {
	Get(ctx context.Context, projectID, userID string) (*membership.Membership, error)
}

// RoleResolver reports the acting user's role in a project.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID, projectID string) (authz.Role, error)
}

// Recorder appends audit entries inside the current transaction.
type Recorder interface {
	Record(ctx context.Context, entry *activity.Entry) (*activity.Entry, error)
}
