package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/repository/mocks"
)

func TestRecorder_AssignsSeqAndTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	seq := &mocks.ProjectRepository{}
	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seq.On("NextSeq", mock.Anything, "p1").Return(int64(7), nil)
	repo.On("Append", mock.Anything, mock.MatchedBy(func(e *activity.Entry) bool {
		return e.Seq == 7 && e.CreatedAt.Equal(frozen)
	})).Return(nil)

	rec := activity.NewRecorder(repo, seq, func() time.Time { return frozen })
	changes, err := activity.Created(map[string]string{"name": "Apollo"})
	require.NoError(t, err)

	entry, err := rec.Record(ctx, &activity.Entry{
		ProjectID:  "p1",
		ActorID:    "alice",
		EntityType: activity.EntityProject,
		Action:     activity.ActionCreated,
		Changes:    changes,
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), entry.Seq)
	require.Equal(t, frozen, entry.CreatedAt)
	repo.AssertExpectations(t)
}

func TestRecorder_RejectsEmptyChanges(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	seq := &mocks.ProjectRepository{}

	rec := activity.NewRecorder(repo, seq, nil)
	_, err := rec.Record(ctx, &activity.Entry{
		ProjectID:  "p1",
		ActorID:    "alice",
		EntityType: activity.EntityProject,
		Action:     activity.ActionCreated,
	})
	require.ErrorIs(t, err, activity.ErrEmptyChanges)
	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	seq.AssertNotCalled(t, "NextSeq", mock.Anything, mock.Anything)
}

func TestRecorder_RejectsMissingFields(t *testing.T) {
	ctx := context.Background()
	rec := activity.NewRecorder(&mocks.ActivityRepository{}, &mocks.ProjectRepository{}, nil)

	changes, err := activity.Created(map[string]string{"k": "v"})
	require.NoError(t, err)

	_, err = rec.Record(ctx, nil)
	require.ErrorIs(t, err, activity.ErrInvalidInput)

	_, err = rec.Record(ctx, &activity.Entry{ActorID: "alice", EntityType: activity.EntityTask, Action: activity.ActionCreated, Changes: changes})
	require.ErrorIs(t, err, activity.ErrInvalidInput)

	_, err = rec.Record(ctx, &activity.Entry{ProjectID: "p1", EntityType: activity.EntityTask, Action: activity.ActionCreated, Changes: changes})
	require.ErrorIs(t, err, activity.ErrInvalidInput)
}
