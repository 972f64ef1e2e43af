package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/repository"
)

// ErrInvalidInput indicates invalid comment input.
var ErrInvalidInput = errors.New("invalid comment input")

// Service handles comment business logic. Bodies are sanitized on the way
// in: comments accept user-generated markup.
type Service struct {
	comments  Repository
	tasks     TaskRepository
	resolver  RoleResolver
	recorder  Recorder
	tx        repository.TxRunner
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new comment service.
func NewService(
	comments Repository,
	tasks TaskRepository,
	resolver RoleResolver,
	recorder Recorder,
	tx repository.TxRunner,
	logger *slog.Logger,
	now func() time.Time,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		comments:  comments,
		tasks:     tasks,
		resolver:  resolver,
		recorder:  recorder,
		tx:        tx,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger,
		now:       now,
	}
}

// Create adds a comment to a task.
func (s *Service) Create(ctx context.Context, actorID, taskID, body string) (*Comment, error) {
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	role, err := s.resolver.ResolveRole(ctx, actorID, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindComment, authz.ActionCreate, false); err != nil {
		return nil, err
	}

	body = s.sanitizer.Sanitize(body)
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidInput)
	}

	now := s.now()
	c := &Comment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		AuthorID:  actorID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.comments.Create(ctx, c); err != nil {
			return fmt.Errorf("creating comment: %w", err)
		}
		changes, err := activity.Created(c)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  t.ProjectID,
			TaskID:     &taskID,
			ActorID:    actorID,
			EntityType: activity.EntityComment,
			EntityID:   &c.ID,
			Action:     activity.ActionCommented,
			Changes:    changes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByTask returns a task's comments. Any active membership suffices.
func (s *Service) ListByTask(ctx context.Context, actorID, taskID string) ([]Comment, error) {
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	role, err := s.resolver.ResolveRole(ctx, actorID, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindComment, authz.ActionView, false); err != nil {
		return nil, err
	}
	return s.comments.ListByTask(ctx, taskID)
}

// Update edits a comment's body. The author or an elevated role may edit.
func (s *Service) Update(ctx context.Context, actorID, commentID, body string) (*Comment, error) {
	var updated *Comment
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.comments.Get(ctx, commentID)
		if err != nil {
			return err
		}
		t, err := s.tasks.Get(ctx, c.TaskID)
		if err != nil {
			return err
		}
		role, err := s.resolver.ResolveRole(ctx, actorID, t.ProjectID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(role, authz.KindComment, authz.ActionUpdate, c.AuthorID == actorID); err != nil {
			return err
		}

		body = s.sanitizer.Sanitize(body)
		if strings.TrimSpace(body) == "" {
			return fmt.Errorf("%w: body is required", ErrInvalidInput)
		}

		before := *c
		c.Body = body
		c.UpdatedAt = s.now()

		if err := s.comments.Update(ctx, c); err != nil {
			return fmt.Errorf("updating comment: %w", err)
		}
		changes, err := activity.Updated(&before, c)
		if err != nil {
			return err
		}
		if _, err := s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  t.ProjectID,
			TaskID:     &t.ID,
			ActorID:    actorID,
			EntityType: activity.EntityComment,
			EntityID:   &c.ID,
			Action:     activity.ActionUpdated,
			Changes:    changes,
		}); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a comment. The author or an elevated role may delete.
func (s *Service) Delete(ctx context.Context, actorID, commentID string) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.comments.Get(ctx, commentID)
		if err != nil {
			return err
		}
		t, err := s.tasks.Get(ctx, c.TaskID)
		if err != nil {
			return err
		}
		role, err := s.resolver.ResolveRole(ctx, actorID, t.ProjectID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(role, authz.KindComment, authz.ActionDelete, c.AuthorID == actorID); err != nil {
			return err
		}

		if err := s.comments.Delete(ctx, commentID); err != nil {
			return fmt.Errorf("deleting comment: %w", err)
		}
		changes, err := activity.Deleted(c)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  t.ProjectID,
			TaskID:     &t.ID,
			ActorID:    actorID,
			EntityType: activity.EntityComment,
			EntityID:   &c.ID,
			Action:     activity.ActionDeleted,
			Changes:    changes,
		})
		return err
	})
}
