package activity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/domain/membership"
	"github.com/crewlog/crewlog/internal/repository/mocks"
)

func TestQueryProjectActivity(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	resolver := &mocks.RoleResolver{}

	resolver.On("ResolveRole", mock.Anything, "alice", "p1").Return(authz.RoleViewer, nil)
	repo.On("Count", mock.Anything, mock.MatchedBy(func(o activity.ListOptions) bool {
		return o.ProjectID == "p1" && o.Limit == activity.DefaultLimit
	})).Return(3, nil)
	repo.On("List", mock.Anything, mock.Anything).Return([]activity.Entry{
		{Seq: 3}, {Seq: 2}, {Seq: 1},
	}, nil)

	svc := activity.NewService(repo, resolver, nil, nil)
	entries, total, err := svc.QueryProjectActivity(ctx, "p1", "alice", activity.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, entries, 3)
}

func TestQueryProjectActivity_DeniedWithoutMembership(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	resolver := &mocks.RoleResolver{}

	resolver.On("ResolveRole", mock.Anything, "mallory", "p1").Return(authz.Role(0), membership.ErrNoAccess)

	svc := activity.NewService(repo, resolver, nil, nil)
	_, _, err := svc.QueryProjectActivity(ctx, "p1", "mallory", activity.ListOptions{})
	require.ErrorIs(t, err, membership.ErrNoAccess)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestQueryTaskActivity(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	resolver := &mocks.RoleResolver{}
	tasks := &mocks.TaskRepository{}

	tasks.On("ProjectID", mock.Anything, "t1").Return("p1", nil)
	resolver.On("ResolveRole", mock.Anything, "alice", "p1").Return(authz.RoleMember, nil)
	repo.On("List", mock.Anything, mock.MatchedBy(func(o activity.ListOptions) bool {
		return o.ProjectID == "p1" && o.TaskID != nil && *o.TaskID == "t1"
	})).Return([]activity.Entry{{Seq: 1}}, nil)

	svc := activity.NewService(repo, resolver, tasks, nil)
	entries, err := svc.QueryTaskActivity(ctx, "t1", "alice", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestQueryUserActivity_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}

	repo.On("ListForUser", mock.Anything, "alice", activity.DefaultLimit).Return([]activity.Entry{}, nil)

	svc := activity.NewService(repo, &mocks.RoleResolver{}, nil, nil)
	_, err := svc.QueryUserActivity(ctx, "alice", 0)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
