package file

import (
	"context"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/domain/task"
)

// Repository provides persistence for file attachments.
type Repository interface {
	Create(ctx context.Context, a *Attachment) error
	Get(ctx context.Context, id string) (*Attachment, error)
	Delete(ctx context.Context, id string) error
	ListByTask(ctx context.Context, taskID string) ([]Attachment, error)
}

// TaskRepository resolves the task an attachment belongs to.
type TaskRepository interface {
	Get(ctx context.Context, id string) (*task.Task, error)
}

// RoleResolver reports the acting user's role in a project.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID, projectID string) (authz.Role, error)
}

// Recorder appends audit entries inside the current transaction.
type Recorder interface {
	Record(ctx context.Context, entry *activity.Entry) (*activity.Entry, error)
}
