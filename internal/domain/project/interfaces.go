package project

import (
	"context"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/domain/membership"
	"github.com/crewlog/crewlog/internal/domain/user"
)

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	Update(ctx context.Context, proj *Project) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]Summary, error)
}

// MembershipRepository provides persistence for project memberships.
type MembershipRepository interface {
	Create(ctx context.Context, m *membership.Membership) error
	Get(ctx context.Context, projectID, userID string) (*membership.Membership, error)
	UpdateRole(ctx context.Context, projectID, userID string, role authz.Role) error
	Delete(ctx context.Context, projectID, userID string) error
	ListByProject(ctx context.Context, projectID string) ([]membership.Membership, error)
}

// UserRepository looks up externally-created users for invite-by-email.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// RoleResolver reports the acting user's role in a project.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID, projectID string) (authz.Role, error)
}

// Recorder appends audit entries inside the current transaction.
type Recorder interface {
	Record(ctx context.Context, entry *activity.Entry) (*activity.Entry, error)
}
