package activity

import (
	"context"

	"github.com/crewlog/crewlog/internal/domain/authz"
)

// Repository provides persistence for audit entries. The store is
// append-only: there is no update or delete.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
	Count(ctx context.Context, opts ListOptions) (int, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// SequenceSource hands out the next per-project audit sequence number. The
// implementation must assign numbers strictly increasing within a project
// and must participate in the caller's transaction.
type SequenceSource interface {
	NextSeq(ctx context.Context, projectID string) (int64, error)
}

// RoleResolver reports the caller's role in a project, used to gate reads
// of the audit trail.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID, projectID string) (authz.Role, error)
}

// TaskProjects maps a task to its owning project.
type TaskProjects interface {
	ProjectID(ctx context.Context, taskID string) (string, error)
}
