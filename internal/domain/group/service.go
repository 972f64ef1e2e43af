package group

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
	"github.com/crewlog/crewlog/internal/domain/membership"
	"github.com/crewlog/crewlog/internal/repository"
)

const defaultColor = "#808080"

// Service handles group business logic.
type Service struct {
	groups   Repository
	members  ProjectMemberships
	resolver RoleResolver
	recorder Recorder
	tx       repository.TxRunner
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new group service.
func NewService(
	groups Repository,
	members ProjectMemberships,
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
		groups:   groups,
		members:  members,
		resolver: resolver,
		recorder: recorder,
		tx:       tx,
		logger:   logger,
		now:      now,
	}
}

// CreateRequest describes a group creation request.
type CreateRequest struct {
	Name  string
	Color string
}

// UpdateRequest describes a group update. Nil fields are left unchanged.
type UpdateRequest struct {
	Name  *string
	Color *string
}

// Create creates a group within a project.
func (s *Service) Create(ctx context.Context, actorID, projectID string, req CreateRequest) (*Group, error) {
	role, err := s.resolver.ResolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindGroup, authz.ActionCreate, false); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	color := req.Color
	if color == "" {
		color = defaultColor
	}

	g := &Group{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      req.Name,
		Color:     color,
		CreatorID: actorID,
		CreatedAt: s.now(),
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.groups.Create(ctx, g); err != nil {
			return fmt.Errorf("creating group: %w", err)
		}
		changes, err := activity.Created(g)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  projectID,
			ActorID:    actorID,
			EntityType: activity.EntityGroup,
			EntityID:   &g.ID,
			Action:     activity.ActionCreated,
			Changes:    changes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Get returns a group. Any active project membership suffices.
func (s *Service) Get(ctx context.Context, actorID, groupID string) (*Group, error) {
	g, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	role, err := s.resolver.ResolveRole(ctx, actorID, g.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindGroup, authz.ActionView, false); err != nil {
		return nil, err
	}
	return g, nil
}

// ListByProject returns the project's groups.
func (s *Service) ListByProject(ctx context.Context, actorID, projectID string) ([]Group, error) {
	role, err := s.resolver.ResolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindGroup, authz.ActionView, false); err != nil {
		return nil, err
	}
	return s.groups.ListByProject(ctx, projectID)
}

// Update modifies a group's name or color.
func (s *Service) Update(ctx context.Context, actorID, groupID string, req UpdateRequest) (*Group, error) {
	var updated *Group
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		g, err := s.groups.Get(ctx, groupID)
		if err != nil {
			return err
		}
		role, err := s.resolver.ResolveRole(ctx, actorID, g.ProjectID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(role, authz.KindGroup, authz.ActionUpdate, g.CreatorID == actorID); err != nil {
			return err
		}

		before := *g
		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return fmt.Errorf("%w: name is required", ErrInvalidInput)
			}
			g.Name = *req.Name
		}
		if req.Color != nil {
			g.Color = *req.Color
		}

		if err := s.groups.Update(ctx, g); err != nil {
			return fmt.Errorf("updating group: %w", err)
		}
		changes, err := activity.Updated(&before, g)
		if err != nil {
			return err
		}
		if _, err := s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  g.ProjectID,
			ActorID:    actorID,
			EntityType: activity.EntityGroup,
			EntityID:   &g.ID,
			Action:     activity.ActionUpdated,
			Changes:    changes,
		}); err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a group.
func (s *Service) Delete(ctx context.Context, actorID, groupID string) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		g, err := s.groups.Get(ctx, groupID)
		if err != nil {
			return err
		}
		role, err := s.resolver.ResolveRole(ctx, actorID, g.ProjectID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(role, authz.KindGroup, authz.ActionDelete, g.CreatorID == actorID); err != nil {
			return err
		}

		if err := s.groups.Delete(ctx, groupID); err != nil {
			return fmt.Errorf("deleting group: %w", err)
		}
		changes, err := activity.Deleted(g)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  g.ProjectID,
			ActorID:    actorID,
			EntityType: activity.EntityGroup,
			EntityID:   &g.ID,
			Action:     activity.ActionDeleted,
			Changes:    changes,
		})
		return err
	})
}

// AddMember places a project member into a group. Group membership governs
// assignment visibility only; it never raises the user's project role.
func (s *Service) AddMember(ctx context.Context, actorID, groupID, userID string) (*membership.GroupMembership, error) {
	var gm *membership.GroupMembership
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		g, err := s.groups.Get(ctx, groupID)
		if err != nil {
			return err
		}
		role, err := s.resolver.ResolveRole(ctx, actorID, g.ProjectID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(role, authz.KindGroup, authz.ActionManageMembers, false); err != nil {
			return err
		}

		if _, err := s.members.Get(ctx, g.ProjectID, userID); errors.Is(err, repository.ErrNotFound) {
			return ErrNotProjectMember
		} else if err != nil {
			return fmt.Errorf("checking project membership: %w", err)
		}
		if existing, err := s.groups.GetMember(ctx, groupID, userID); err == nil && existing != nil {
			return ErrDuplicateMember
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("checking group membership: %w", err)
		}

		gm = &membership.GroupMembership{
			ID:        uuid.NewString(),
			GroupID:   groupID,
			UserID:    userID,
			CreatedAt: s.now(),
		}
		if err := s.groups.AddMember(ctx, gm); err != nil {
			return fmt.Errorf("adding group member: %w", err)
		}
		changes, err := activity.Created(gm)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  g.ProjectID,
			ActorID:    actorID,
			EntityType: activity.EntityGroup,
			EntityID:   &groupID,
			Action:     activity.ActionMemberAdded,
			Changes:    changes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return gm, nil
}

// RemoveMember removes a user from a group.
func (s *Service) RemoveMember(ctx context.Context, actorID, groupID, userID string) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		g, err := s.groups.Get(ctx, groupID)
		if err != nil {
			return err
		}
		role, err := s.resolver.ResolveRole(ctx, actorID, g.ProjectID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(role, authz.KindGroup, authz.ActionManageMembers, false); err != nil {
			return err
		}

		gm, err := s.groups.GetMember(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
			return fmt.Errorf("removing group member: %w", err)
		}
		changes, err := activity.Deleted(gm)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  g.ProjectID,
			ActorID:    actorID,
			EntityType: activity.EntityGroup,
			EntityID:   &groupID,
			Action:     activity.ActionMemberRemoved,
			Changes:    changes,
		})
		return err
	})
}

// ListMembers returns the group's memberships.
func (s *Service) ListMembers(ctx context.Context, actorID, groupID string) ([]membership.GroupMembership, error) {
	g, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	role, err := s.resolver.ResolveRole(ctx, actorID, g.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindGroup, authz.ActionView, false); err != nil {
		return nil, err
	}
	return s.groups.ListMembers(ctx, groupID)
}
