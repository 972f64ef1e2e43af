package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/repository"
)

// Service handles task business logic.
type Service struct {
	tasks    Repository
	resolver RoleResolver
	recorder Recorder
	tx       repository.TxRunner
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new task service.
func NewService(
	tasks Repository,
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
	return &Service{tasks: tasks, resolver: resolver, recorder: recorder, tx: tx, logger: logger, now: now}
}

// CreateRequest describes a task creation request.
type CreateRequest struct {
	Title       string
	Description string
	Status      Status
	AssigneeID  *string
	GroupID     *string
	DueDate     *time.Time
}

// UpdateRequest describes a task update. Nil fields are left unchanged.
type UpdateRequest struct {
	Title       *string
	Description *string
	Status      *Status
	AssigneeID  *string
	GroupID     *string
	DueDate     *time.Time
}

// Create creates a task within a project.
func (s *Service) Create(ctx context.Context, actorID, projectID string, req CreateRequest) (*Task, error) {
	role, err := s.resolver.ResolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindTask, authz.ActionCreate, false); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	status := req.Status
	if status == "" {
		status = StatusTodo
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	now := s.now()
	t := &Task{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		AssigneeID:  req.AssigneeID,
		GroupID:     req.GroupID,
		CreatorID:   actorID,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.tasks.Create(ctx, t); err != nil {
			return fmt.Errorf("creating task: %w", err)
		}
		changes, err := activity.Created(t)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  projectID,
			TaskID:     &t.ID,
			ActorID:    actorID,
			EntityType: activity.EntityTask,
			EntityID:   &t.ID,
			Action:     activity.ActionCreated,
			Changes:    changes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a task. Any active project membership suffices.
func (s *Service) Get(ctx context.Context, actorID, taskID string) (*Task, error) {
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	role, err := s.resolver.ResolveRole(ctx, actorID, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindTask, authz.ActionView, false); err != nil {
		return nil, err
	}
	return t, nil
}

// ListByProject returns the project's tasks.
func (s *Service) ListByProject(ctx context.Context, actorID, projectID string) ([]Task, error) {
	role, err := s.resolver.ResolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindTask, authz.ActionView, false); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

// Update modifies a task's attributes.
func (s *Service) Update(ctx context.Context, actorID, taskID string, req UpdateRequest) (*Task, error) {
	var updated *Task
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		t, err := s.tasks.Get(ctx, taskID)
		if err != nil {
			return err
		}
		role, err := s.resolver.ResolveRole(ctx, actorID, t.ProjectID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(role, authz.KindTask, authz.ActionUpdate, t.CreatorID == actorID); err != nil {
			return err
		}

		before := *t
		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				return fmt.Errorf("%w: title is required", ErrInvalidInput)
			}
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Status != nil {
			if !req.Status.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
			}
			t.Status = *req.Status
		}
		if req.AssigneeID != nil {
			t.AssigneeID = req.AssigneeID
		}
		if req.GroupID != nil {
			t.GroupID = req.GroupID
		}
		if req.DueDate != nil {
			t.DueDate = req.DueDate
		}
		t.UpdatedAt = s.now()

		if err := s.tasks.Update(ctx, t); err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
		changes, err := activity.Updated(&before, t)
		if err != nil {
			return err
		}
		if _, err := s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  t.ProjectID,
			TaskID:     &t.ID,
			ActorID:    actorID,
			EntityType: activity.EntityTask,
			EntityID:   &t.ID,
			Action:     activity.ActionUpdated,
			Changes:    changes,
		}); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a task and its comments and attachments.
func (s *Service) Delete(ctx context.Context, actorID, taskID string) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		t, err := s.tasks.Get(ctx, taskID)
		if err != nil {
			return err
		}
		role, err := s.resolver.ResolveRole(ctx, actorID, t.ProjectID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(role, authz.KindTask, authz.ActionDelete, t.CreatorID == actorID); err != nil {
			return err
		}

		if err := s.tasks.Delete(ctx, taskID); err != nil {
			return fmt.Errorf("deleting task: %w", err)
		}
		changes, err := activity.Deleted(t)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  t.ProjectID,
			TaskID:     &t.ID,
			ActorID:    actorID,
			EntityType: activity.EntityTask,
			EntityID:   &t.ID,
			Action:     activity.ActionDeleted,
			Changes:    changes,
		})
		return err
	})
}
