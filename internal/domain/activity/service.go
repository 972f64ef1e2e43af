package activity

import (
	"context"
	"fmt"
	"log/slog"
)

// Service answers audit trail queries. Reads are gated the same way as
// reads of the project itself: any active membership, viewer included.
type Service struct {
	repo     Repository
	resolver RoleResolver
	tasks    TaskProjects
	logger   *slog.Logger
}

// NewService creates a new activity query service.
func NewService(repo Repository, resolver RoleResolver, tasks TaskProjects, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, resolver: resolver, tasks: tasks, logger: logger}
}

// QueryProjectActivity returns a page of the project's audit trail plus the
// total entry count ignoring pagination. The caller must hold an active
// membership in the project; revocation takes effect immediately for new
// queries.
func (s *Service) QueryProjectActivity(ctx context.Context, projectID, userID string, opts ListOptions) ([]Entry, int, error) {
	if _, err := s.resolver.ResolveRole(ctx, userID, projectID); err != nil {
		s.logger.Debug("activity query denied", "project_id", projectID, "user_id", userID, "error", err)
		return nil, 0, err
	}

	opts.ProjectID = projectID
	opts = opts.normalized()

	total, err := s.repo.Count(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("counting activity: %w", err)
	}
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("listing activity: %w", err)
	}
	return entries, total, nil
}

// QueryTaskActivity returns recent audit entries touching one task. The
// task's project is resolved internally for the membership gate.
func (s *Service) QueryTaskActivity(ctx context.Context, taskID, userID string, limit int) ([]Entry, error) {
	projectID, err := s.tasks.ProjectID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("resolving task project: %w", err)
	}
	if _, err := s.resolver.ResolveRole(ctx, userID, projectID); err != nil {
		return nil, err
	}

	opts := ListOptions{ProjectID: projectID, TaskID: &taskID, Limit: limit}.normalized()
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing task activity: %w", err)
	}
	return entries, nil
}

// QueryUserActivity returns the caller's cross-project feed: the union of
// activity across all projects the user currently belongs to, most recent
// first. Authorization is implicit since the query is scoped to the
// caller's own memberships.
func (s *Service) QueryUserActivity(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	entries, err := s.repo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing user activity: %w", err)
	}
	return entries, nil
}
