package project

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

// Service handles project business logic: lifecycle and member management.
// Every mutation resolves the actor's role, consults the authorization
// policy, and performs the write together with its audit entry in one
// transaction.
type Service struct {
	projects    Repository
	memberships MembershipRepository
	users       UserRepository
	resolver    RoleResolver
	recorder    Recorder
	tx          repository.TxRunner
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a new project service. now may be nil, in which case
// time.Now is used.
func NewService(
	projects Repository,
	memberships MembershipRepository,
	users UserRepository,
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
		projects:    projects,
		memberships: memberships,
		users:       users,
		resolver:    resolver,
		recorder:    recorder,
		tx:          tx,
		logger:      logger,
		now:         now,
	}
}

// CreateRequest describes a project creation request.
type CreateRequest struct {
	Name         string
	Description  string
	StartDate    *time.Time
	EndDate      *time.Time
	Status       Status
	AutoSchedule bool
}

// UpdateRequest describes a project update. Nil fields are left unchanged.
type UpdateRequest struct {
	Name         *string
	Description  *string
	StartDate    *time.Time
	EndDate      *time.Time
	Status       *Status
	AutoSchedule *bool
}

// Create creates a project and makes the actor its owner. No prior
// membership is required; authorization begins at the new owner
// membership created here.
func (s *Service) Create(ctx context.Context, actorID string, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	status := req.Status
	if status == "" {
		status = StatusPlanning
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	now := s.now()
	proj := &Project{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       status,
		CreatorID:    actorID,
		AutoSchedule: req.AutoSchedule,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	owner := &membership.Membership{
		ID:        uuid.NewString(),
		ProjectID: proj.ID,
		UserID:    actorID,
		Role:      authz.RoleOwner,
		CreatedAt: now,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.projects.Create(ctx, proj); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		if err := s.memberships.Create(ctx, owner); err != nil {
			return fmt.Errorf("creating owner membership: %w", err)
		}
		changes, err := activity.Created(proj)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  proj.ID,
			ActorID:    actorID,
			EntityType: activity.EntityProject,
			EntityID:   &proj.ID,
			Action:     activity.ActionCreated,
			Changes:    changes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project created", "project_id", proj.ID, "actor_id", actorID)
	return proj, nil
}

// Get returns a project. Any active membership suffices.
func (s *Service) Get(ctx context.Context, actorID, projectID string) (*Project, error) {
	role, err := s.resolver.ResolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindProject, authz.ActionView, false); err != nil {
		return nil, err
	}
	return s.projects.Get(ctx, projectID)
}

// List returns summaries of the projects the actor belongs to.
func (s *Service) List(ctx context.Context, actorID string) ([]Summary, error) {
	return s.projects.ListForUser(ctx, actorID)
}

// Update modifies a project's attributes.
func (s *Service) Update(ctx context.Context, actorID, projectID string, req UpdateRequest) (*Project, error) {
	role, err := s.resolver.ResolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}

	var updated *Project
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		proj, err := s.projects.Get(ctx, projectID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(role, authz.KindProject, authz.ActionUpdate, proj.CreatorID == actorID); err != nil {
			return err
		}

		before := *proj
		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return fmt.Errorf("%w: name is required", ErrInvalidInput)
			}
			proj.Name = *req.Name
		}
		if req.Description != nil {
			proj.Description = *req.Description
		}
		if req.StartDate != nil {
			proj.StartDate = req.StartDate
		}
		if req.EndDate != nil {
			proj.EndDate = req.EndDate
		}
		if req.Status != nil {
			if !req.Status.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
			}
			proj.Status = *req.Status
		}
		if req.AutoSchedule != nil {
			proj.AutoSchedule = *req.AutoSchedule
		}
		proj.UpdatedAt = s.now()

		if err := s.projects.Update(ctx, proj); err != nil {
			return fmt.Errorf("updating project: %w", err)
		}
		changes, err := activity.Updated(&before, proj)
		if err != nil {
			return err
		}
		if _, err := s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  proj.ID,
			ActorID:    actorID,
			EntityType: activity.EntityProject,
			EntityID:   &proj.ID,
			Action:     activity.ActionUpdated,
			Changes:    changes,
		}); err != nil {
			return err
		}
		updated = proj
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a project and everything it owns. Only the owner role may
// delete a project. The deletion's audit entry survives: audit rows are not
// cascaded.
func (s *Service) Delete(ctx context.Context, actorID, projectID string) error {
	role, err := s.resolver.ResolveRole(ctx, actorID, projectID)
	if err != nil {
		return err
	}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		proj, err := s.projects.Get(ctx, projectID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(role, authz.KindProject, authz.ActionDelete, proj.CreatorID == actorID); err != nil {
			return err
		}

		changes, err := activity.Deleted(proj)
		if err != nil {
			return err
		}
		if _, err := s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  projectID,
			ActorID:    actorID,
			EntityType: activity.EntityProject,
			EntityID:   &projectID,
			Action:     activity.ActionDeleted,
			Changes:    changes,
		}); err != nil {
			return err
		}
		if err := s.projects.Delete(ctx, projectID); err != nil {
			return fmt.Errorf("deleting project: %w", err)
		}
		s.logger.Info("project deleted", "project_id", projectID, "actor_id", actorID)
		return nil
	})
}

// ListMembers returns the project's memberships. Any active membership
// suffices.
func (s *Service) ListMembers(ctx context.Context, actorID, projectID string) ([]membership.Membership, error) {
	role, err := s.resolver.ResolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(role, authz.KindProject, authz.ActionView, false); err != nil {
		return nil, err
	}
	return s.memberships.ListByProject(ctx, projectID)
}

// AddMember invites a user by email with the given role. The owner role is
// assigned only at project creation and can never be granted here.
func (s *Service) AddMember(ctx context.Context, actorID, projectID, email string, role authz.Role) (*membership.Membership, error) {
	actorRole, err := s.resolver.ResolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actorRole, authz.KindProject, authz.ActionManageMembers, false); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, authz.ErrInvalidRole
	}
	if role == authz.RoleOwner {
		return nil, membership.ErrOwnerExists
	}

	invitee, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up invitee: %w", err)
	}

	m := &membership.Membership{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    invitee.ID,
		Role:      role,
		CreatedAt: s.now(),
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if existing, err := s.memberships.Get(ctx, projectID, invitee.ID); err == nil && existing != nil {
			return membership.ErrDuplicateMember
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("checking existing membership: %w", err)
		}

		if err := s.memberships.Create(ctx, m); err != nil {
			return fmt.Errorf("creating membership: %w", err)
		}
		changes, err := activity.Created(m)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  projectID,
			ActorID:    actorID,
			EntityType: activity.EntityProject,
			EntityID:   &m.ID,
			Action:     activity.ActionMemberAdded,
			Changes:    changes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("member added", "project_id", projectID, "user_id", invitee.ID, "role", role.String(), "actor_id", actorID)
	return m, nil
}

// RemoveMember removes a user's membership. The owner's membership is
// never removable while the project exists, regardless of caller.
func (s *Service) RemoveMember(ctx context.Context, actorID, projectID, userID string) error {
	actorRole, err := s.resolver.ResolveRole(ctx, actorID, projectID)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actorRole, authz.KindProject, authz.ActionManageMembers, false); err != nil {
		return err
	}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		m, err := s.memberships.Get(ctx, projectID, userID)
		if err != nil {
			return err
		}
		if m.Role == authz.RoleOwner {
			return membership.ErrOwnerRequired
		}

		if err := s.memberships.Delete(ctx, projectID, userID); err != nil {
			return fmt.Errorf("deleting membership: %w", err)
		}
		changes, err := activity.Deleted(m)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  projectID,
			ActorID:    actorID,
			EntityType: activity.EntityProject,
			EntityID:   &m.ID,
			Action:     activity.ActionMemberRemoved,
			Changes:    changes,
		})
		return err
	})
}

// ChangeRole changes a member's role. The owner's role cannot be changed
// and no member can be promoted to owner.
func (s *Service) ChangeRole(ctx context.Context, actorID, projectID, userID string, role authz.Role) (*membership.Membership, error) {
	actorRole, err := s.resolver.ResolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actorRole, authz.KindProject, authz.ActionManageMembers, false); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, authz.ErrInvalidRole
	}
	if role == authz.RoleOwner {
		return nil, membership.ErrOwnerExists
	}

	var updated *membership.Membership
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		m, err := s.memberships.Get(ctx, projectID, userID)
		if err != nil {
			return err
		}
		if m.Role == authz.RoleOwner {
			return membership.ErrOwnerRequired
		}

		before := *m
		if err := s.memberships.UpdateRole(ctx, projectID, userID, role); err != nil {
			return fmt.Errorf("updating role: %w", err)
		}
		m.Role = role

		changes, err := activity.Updated(&before, m)
		if err != nil {
			return err
		}
		if _, err := s.recorder.Record(ctx, &activity.Entry{
			ProjectID:  projectID,
			ActorID:    actorID,
			EntityType: activity.EntityProject,
			EntityID:   &m.ID,
			Action:     activity.ActionRoleChanged,
			Changes:    changes,
		}); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
