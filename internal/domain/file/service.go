package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/repository"
)

// ErrInvalidInput indicates invalid attachment input.
var ErrInvalidInput = errors.New("invalid attachment input")

// Service handles file attachment metadata. Streaming of file contents is
// a collaborator concern; only the attach/detach state changes are audited
// here.
type Service struct {
	files    Repository
	tasks    TaskRepository
	resolver RoleResolver
	recorder Recorder
	tx       repository.TxRunner
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new file attachment service.
func NewService(
	files Repository,
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
	return &Service{files: files, tasks: tasks, resolver: resolver, recorder: recorder, tx: tx, logger: logger, now: now}
}

// AttachRequest describes a file attachment.
type AttachRequest struct {
	FileName    string
	StoragePath string
	SizeBytes   int64
	ContentType string
}

// Attach records a file attached to a task.
func (s *Service) Attach(ctx context.Context, actorID, taskID string, req AttachRequest) (*Attachment, error) {
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	role, err := s.resolver.ResolveRole(ctx, actorID, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindFile, authz.ActionCreate, false); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.FileName) == "" || strings.TrimSpace(req.StoragePath) == "" {
		return nil, fmt.Errorf("%w: file name and storage path are required", ErrInvalidInput)
	}
	if req.SizeBytes < 0 {
		return nil, fmt.Errorf("%w: negative size", ErrInvalidInput)
	}

	a := &Attachment{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		UploaderID:  actorID,
		FileName:    req.FileName,
		StoragePath: req.StoragePath,
		SizeBytes:   req.SizeBytes,
		ContentType: req.ContentType,
		CreatedAt:   s.now(),
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.files.Create(ctx, a); err != nil {
			return fmt.Errorf("creating attachment: %w", err)
		}
		changes, err := activity.Created(a)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  t.ProjectID,
			TaskID:     &taskID,
			ActorID:    actorID,
			EntityType: activity.EntityFile,
			EntityID:   &a.ID,
			Action:     activity.ActionUploaded,
			Changes:    changes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByTask returns a task's attachments. Any active membership suffices.
func (s *Service) ListByTask(ctx context.Context, actorID, taskID string) ([]Attachment, error) {
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	role, err := s.resolver.ResolveRole(ctx, actorID, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindFile, authz.ActionView, false); err != nil {
		return nil, err
	}
	return s.files.ListByTask(ctx, taskID)
}

// Detach removes an attachment. The uploader or an elevated role may
// detach.
func (s *Service) Detach(ctx context.Context, actorID, attachmentID string) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.files.Get(ctx, attachmentID)
		if err != nil {
			return err
		}
		t, err := s.tasks.Get(ctx, a.TaskID)
		if err != nil {
			return err
		}
		role, err := s.resolver.ResolveRole(ctx, actorID, t.ProjectID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(role, authz.KindFile, authz.ActionDelete, a.UploaderID == actorID); err != nil {
			return err
		}

		if err := s.files.Delete(ctx, attachmentID); err != nil {
			return fmt.Errorf("deleting attachment: %w", err)
		}
		changes, err := activity.Deleted(a)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  t.ProjectID,
			TaskID:     &t.ID,
			ActorID:    actorID,
			EntityType: activity.EntityFile,
			EntityID:   &a.ID,
			Action:     activity.ActionDeleted,
			Changes:    changes,
		})
		return err
	})
}
