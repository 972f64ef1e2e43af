package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/repository"
)

// Service resolves a user's role within a project or group. It is a pure
// read: resolution has no side effects and holds no state beyond injected
// dependencies.
type Service struct {
	memberships Repository
	projects    ProjectRepository
	groups      GroupRepository
	logger      *slog.Logger
}

// NewService creates a membership resolver.
func NewService(memberships Repository, projects ProjectRepository, groups GroupRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{memberships: memberships, projects: projects, groups: groups, logger: logger}
}

// ResolveRole returns the user's role in the project. It returns
// repository.ErrNotFound if the project does not exist and ErrNoAccess if
// the project exists but the user has no active membership. The
// distinction matters for logging; callers expose both as forbidden.
func (s *Service) ResolveRole(ctx context.Context, userID, projectID string) (authz.Role, error) {
	exists, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("checking project: %w", err)
	}
	if !exists {
		s.logger.Debug("role resolution for unknown project", "project_id", projectID, "user_id", userID)
		return 0, repository.ErrNotFound
	}

	m, err := s.memberships.Get(ctx, projectID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Debug("well-formed request denied", "project_id", projectID, "user_id", userID)
		return 0, ErrNoAccess
	}
	if err != nil {
		return 0, fmt.Errorf("looking up membership: %w", err)
	}
	return m.Role, nil
}

// ResolveGroupRole resolves the user's role for a group-scoped action by
// mapping the group to its owning project and delegating. Group membership
// alone never grants project privilege, so only the project role matters.
func (s *Service) ResolveGroupRole(ctx context.Context, userID, groupID string) (authz.Role, error) {
	projectID, err := s.groups.ProjectID(ctx, groupID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolving group project: %w", err)
	}
	return s.ResolveRole(ctx, userID, projectID)
}
