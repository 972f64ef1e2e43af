package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/domain/comment"
	"github.com/crewlog/crewlog/internal/domain/file"
	"github.com/crewlog/crewlog/internal/domain/group"
	"github.com/crewlog/crewlog/internal/domain/membership"
	"github.com/crewlog/crewlog/internal/domain/project"
	"github.com/crewlog/crewlog/internal/domain/task"
	"github.com/crewlog/crewlog/internal/domain/user"
)

// TxRunner is a pass-through transaction runner for service tests: the
// callback runs immediately with the given context.
type TxRunner struct{}

func (TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// RoleResolver is a mock for the RoleResolver interfaces.
type RoleResolver struct {
	mock.Mock
}

func (m *RoleResolver) ResolveRole(ctx context.Context, userID, projectID string) (authz.Role, error) {
	args := m.Called(ctx, userID, projectID)
	return args.Get(0).(authz.Role), args.Error(1)
}

func (m *RoleResolver) ResolveGroupRole(ctx context.Context, userID, groupID string) (authz.Role, error) {
	args := m.Called(ctx, userID, groupID)
	return args.Get(0).(authz.Role), args.Error(1)
}

// Recorder is a mock for the audit Recorder interfaces.
type Recorder struct {
	mock.Mock
}

func (m *Recorder) Record(ctx context.Context, entry *activity.Entry) (*activity.Entry, error) {
	args := m.Called(ctx, entry)
	if e, ok := args.Get(0).(*activity.Entry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

// ProjectRepository is a mock for project persistence.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]project.Summary, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]project.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *ProjectRepository) NextSeq(ctx context.Context, projectID string) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

// MembershipRepository is a mock for project membership persistence.
type MembershipRepository struct {
	mock.Mock
}

func (m *MembershipRepository) Create(ctx context.Context, ms *membership.Membership) error {
	args := m.Called(ctx, ms)
	return args.Error(0)
}

func (m *MembershipRepository) Get(ctx context.Context, projectID, userID string) (*membership.Membership, error) {
	args := m.Called(ctx, projectID, userID)
	if ms, ok := args.Get(0).(*membership.Membership); ok {
		return ms, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MembershipRepository) UpdateRole(ctx context.Context, projectID, userID string, role authz.Role) error {
	args := m.Called(ctx, projectID, userID, role)
	return args.Error(0)
}

func (m *MembershipRepository) Delete(ctx context.Context, projectID, userID string) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

func (m *MembershipRepository) ListByProject(ctx context.Context, projectID string) ([]membership.Membership, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]membership.Membership); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// UserRepository is a mock for user lookups.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// GroupRepository is a mock for group persistence.
type GroupRepository struct {
	mock.Mock
}

func (m *GroupRepository) Create(ctx context.Context, g *group.Group) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *GroupRepository) Get(ctx context.Context, id string) (*group.Group, error) {
	args := m.Called(ctx, id)
	if g, ok := args.Get(0).(*group.Group); ok {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GroupRepository) Update(ctx context.Context, g *group.Group) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *GroupRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *GroupRepository) ListByProject(ctx context.Context, projectID string) ([]group.Group, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]group.Group); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GroupRepository) ProjectID(ctx context.Context, groupID string) (string, error) {
	args := m.Called(ctx, groupID)
	return args.String(0), args.Error(1)
}

func (m *GroupRepository) AddMember(ctx context.Context, gm *membership.GroupMembership) error {
	args := m.Called(ctx, gm)
	return args.Error(0)
}

func (m *GroupRepository) GetMember(ctx context.Context, groupID, userID string) (*membership.GroupMembership, error) {
	args := m.Called(ctx, groupID, userID)
	if gm, ok := args.Get(0).(*membership.GroupMembership); ok {
		return gm, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]membership.GroupMembership, error) {
	args := m.Called(ctx, groupID)
	if list, ok := args.Get(0).([]membership.GroupMembership); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// TaskRepository is a mock for task persistence.
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]task.Task, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]task.Task); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) ProjectID(ctx context.Context, taskID string) (string, error) {
	args := m.Called(ctx, taskID)
	return args.String(0), args.Error(1)
}

// CommentRepository is a mock for comment persistence.
type CommentRepository struct {
	mock.Mock
}

func (m *CommentRepository) Create(ctx context.Context, c *comment.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CommentRepository) Get(ctx context.Context, id string) (*comment.Comment, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*comment.Comment); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CommentRepository) Update(ctx context.Context, c *comment.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CommentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CommentRepository) ListByTask(ctx context.Context, taskID string) ([]comment.Comment, error) {
	args := m.Called(ctx, taskID)
	if list, ok := args.Get(0).([]comment.Comment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// FileRepository is a mock for file attachment persistence.
type FileRepository struct {
	mock.Mock
}

func (m *FileRepository) Create(ctx context.Context, a *file.Attachment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *FileRepository) Get(ctx context.Context, id string) (*file.Attachment, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*file.Attachment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FileRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *FileRepository) ListByTask(ctx context.Context, taskID string) ([]file.Attachment, error) {
	args := m.Called(ctx, taskID)
	if list, ok := args.Get(0).([]file.Attachment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for audit entry persistence.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Append(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) Count(ctx context.Context, opts activity.ListOptions) (int, error) {
	args := m.Called(ctx, opts)
	return args.Int(0), args.Error(1)
}

func (m *ActivityRepository) ListForUser(ctx context.Context, userID string, limit int) ([]activity.Entry, error) {
	args := m.Called(ctx, userID, limit)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
