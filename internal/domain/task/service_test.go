package task_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/domain/task"
	"github.com/crewlog/crewlog/internal/repository/mocks"
)

type taskFixture struct {
	tasks    *mocks.TaskRepository
	resolver *mocks.RoleResolver
	recorder *mocks.Recorder
	svc      *task.Service
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	f := &taskFixture{
		tasks:    &mocks.TaskRepository{},
		resolver: &mocks.RoleResolver{},
		recorder: &mocks.Recorder{},
	}
	f.svc = task.NewService(f.tasks, f.resolver, f.recorder, mocks.TxRunner{}, nil, nil)
	return f
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	f.resolver.On("ResolveRole", mock.Anything, "bob", "p1").Return(authz.RoleMember, nil)
	f.tasks.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.recorder.On("Record", mock.Anything, mock.MatchedBy(func(e *activity.Entry) bool {
		return e.EntityType == activity.EntityTask && e.Action == activity.ActionCreated && e.TaskID != nil
	})).Return(&activity.Entry{}, nil)

	tk, err := f.svc.Create(ctx, "bob", "p1", task.CreateRequest{Title: "write docs"})
	require.NoError(t, err)
	require.Equal(t, task.StatusTodo, tk.Status)
	require.Equal(t, "bob", tk.CreatorID)
	f.recorder.AssertExpectations(t)
}

func TestTaskService_CreateDeniedForViewer(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	f.resolver.On("ResolveRole", mock.Anything, "victor", "p1").Return(authz.RoleViewer, nil)

	_, err := f.svc.Create(ctx, "victor", "p1", task.CreateRequest{Title: "write docs"})
	require.ErrorIs(t, err, authz.ErrForbidden)
	f.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	f.resolver.On("ResolveRole", mock.Anything, "bob", "p1").Return(authz.RoleMember, nil)

	_, err := f.svc.Create(ctx, "bob", "p1", task.CreateRequest{Title: " "})
	require.ErrorIs(t, err, task.ErrInvalidInput)

	_, err = f.svc.Create(ctx, "bob", "p1", task.CreateRequest{Title: "x", Status: "bogus"})
	require.ErrorIs(t, err, task.ErrInvalidStatus)
}

func TestTaskService_MemberUpdatesOwnTask(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	f.tasks.On("Get", mock.Anything, "t1").Return(&task.Task{ID: "t1", ProjectID: "p1", CreatorID: "bob", Title: "old", Status: task.StatusTodo}, nil)
	f.resolver.On("ResolveRole", mock.Anything, "bob", "p1").Return(authz.RoleMember, nil)
	f.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.recorder.On("Record", mock.Anything, mock.MatchedBy(func(e *activity.Entry) bool {
		return e.Action == activity.ActionUpdated && len(e.Changes.Before) > 0 && len(e.Changes.After) > 0
	})).Return(&activity.Entry{}, nil)

	st := task.StatusDone
	tk, err := f.svc.Update(ctx, "bob", "t1", task.UpdateRequest{Status: &st})
	require.NoError(t, err)
	require.Equal(t, task.StatusDone, tk.Status)
}

func TestTaskService_MemberCannotUpdateOthersTask(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	f.tasks.On("Get", mock.Anything, "t1").Return(&task.Task{ID: "t1", ProjectID: "p1", CreatorID: "alice"}, nil)
	f.resolver.On("ResolveRole", mock.Anything, "bob", "p1").Return(authz.RoleMember, nil)

	title := "hijack"
	_, err := f.svc.Update(ctx, "bob", "t1", task.UpdateRequest{Title: &title})
	require.ErrorIs(t, err, authz.ErrForbidden)
	f.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestTaskService_AdminUpdatesAnyTask(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	f.tasks.On("Get", mock.Anything, "t1").Return(&task.Task{ID: "t1", ProjectID: "p1", CreatorID: "bob"}, nil)
	f.resolver.On("ResolveRole", mock.Anything, "alice", "p1").Return(authz.RoleAdmin, nil)
	f.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.recorder.On("Record", mock.Anything, mock.Anything).Return(&activity.Entry{}, nil)

	title := "revised"
	tk, err := f.svc.Update(ctx, "alice", "t1", task.UpdateRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "revised", tk.Title)
}

func TestTaskService_DeleteRecordsSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	f.tasks.On("Get", mock.Anything, "t1").Return(&task.Task{ID: "t1", ProjectID: "p1", CreatorID: "bob", Title: "done"}, nil)
	f.resolver.On("ResolveRole", mock.Anything, "bob", "p1").Return(authz.RoleMember, nil)
	f.tasks.On("Delete", mock.Anything, "t1").Return(nil)
	f.recorder.On("Record", mock.Anything, mock.MatchedBy(func(e *activity.Entry) bool {
		return e.Action == activity.ActionDeleted && len(e.Changes.Snapshot) > 0
	})).Return(&activity.Entry{}, nil)

	require.NoError(t, f.svc.Delete(ctx, "bob", "t1"))
	f.recorder.AssertExpectations(t)
}
