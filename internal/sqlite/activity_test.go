package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/domain/activity"
)

func appendEntry(t *testing.T, repo *ActivityRepository, projectID, actorID string, entityType activity.EntityType, action activity.Action, seq int64, at time.Time) *activity.Entry {
	t.Helper()
	changes, err := activity.Created(map[string]string{"seq": "x"})
	require.NoError(t, err)
	entry := &activity.Entry{
		ProjectID:  projectID,
		ActorID:    actorID,
		EntityType: entityType,
		Action:     action,
		Changes:    changes,
		CreatedAt:  at,
		Seq:        seq,
	}
	require.NoError(t, repo.Append(context.Background(), entry))
	return entry
}

func TestActivityRepository_AppendList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	appendEntry(t, repo, "p1", "alice", activity.EntityProject, activity.ActionCreated, 1, base)
	appendEntry(t, repo, "p1", "bob", activity.EntityTask, activity.ActionCreated, 2, base.Add(time.Minute))

	entries, err := repo.List(ctx, activity.ListOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Most recent first, ordered by sequence.
	require.Equal(t, int64(2), entries[0].Seq)
	require.Equal(t, int64(1), entries[1].Seq)
	require.NotEmpty(t, entries[0].Changes.Snapshot)
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	now := time.Now()
	appendEntry(t, repo, "p1", "alice", activity.EntityProject, activity.ActionCreated, 1, now)
	appendEntry(t, repo, "p1", "bob", activity.EntityTask, activity.ActionCreated, 2, now)
	appendEntry(t, repo, "p1", "bob", activity.EntityTask, activity.ActionUpdated, 3, now)
	appendEntry(t, repo, "p2", "alice", activity.EntityProject, activity.ActionCreated, 1, now)

	et := activity.EntityTask
	entries, err := repo.List(ctx, activity.ListOptions{ProjectID: "p1", EntityType: &et})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	action := activity.ActionUpdated
	entries, err = repo.List(ctx, activity.ListOptions{ProjectID: "p1", Action: &action})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int64(3), entries[0].Seq)

	actor := "alice"
	entries, err = repo.List(ctx, activity.ListOptions{ProjectID: "p1", ActorID: &actor})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Project scoping keeps p2's entries out.
	count, err := repo.Count(ctx, activity.ListOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestActivityRepository_PaginationKeepsTotal(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	now := time.Now()
	for i := int64(1); i <= 5; i++ {
		appendEntry(t, repo, "p1", "alice", activity.EntityTask, activity.ActionUpdated, i, now)
	}

	opts := activity.ListOptions{ProjectID: "p1", Limit: 2, Offset: 2}
	entries, err := repo.List(ctx, opts)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, int64(3), entries[0].Seq)
	require.Equal(t, int64(2), entries[1].Seq)

	// Count ignores pagination.
	total, err := repo.Count(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, 5, total)
}

func TestActivityRepository_OffsetWithoutLimit(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	now := time.Now()
	for i := int64(1); i <= 4; i++ {
		appendEntry(t, repo, "p1", "alice", activity.EntityTask, activity.ActionUpdated, i, now)
	}

	// Offset alone must still be valid SQL and skip from the newest end.
	entries, err := repo.List(ctx, activity.ListOptions{ProjectID: "p1", Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, int64(3), entries[0].Seq)
}

func TestActivityRepository_SeqUniquePerProject(t *testing.T) {
	db := NewTestDB(t)
	repo := NewActivityRepository(db)

	now := time.Now()
	appendEntry(t, repo, "p1", "alice", activity.EntityTask, activity.ActionCreated, 1, now)

	changes, err := activity.Created(map[string]string{"k": "v"})
	require.NoError(t, err)
	err = repo.Append(context.Background(), &activity.Entry{
		ProjectID:  "p1",
		ActorID:    "bob",
		EntityType: activity.EntityTask,
		Action:     activity.ActionCreated,
		Changes:    changes,
		CreatedAt:  now,
		Seq:        1,
	})
	require.Error(t, err, "duplicate seq within a project must be rejected")
}

func TestActivityRepository_SurvivesEntityDeletion(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	insertUser(t, db, "alice", "alice@x")
	insertProject(t, db, "p1", "alice")
	appendEntry(t, repo, "p1", "alice", activity.EntityProject, activity.ActionDeleted, 1, time.Now())

	_, err := db.Exec(`DELETE FROM projects WHERE id = 'p1'`)
	require.NoError(t, err)

	entries, err := repo.List(ctx, activity.ListOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 1, "audit trail must outlive the project it describes")
}

func TestActivityRepository_ListForUser(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	insertUser(t, db, "alice", "alice@x")
	insertUser(t, db, "bob", "bob@x")
	insertProject(t, db, "p1", "alice")
	insertProject(t, db, "p2", "bob")
	insertMembership(t, db, "m1", "p1", "alice", "owner")
	insertMembership(t, db, "m2", "p2", "bob", "owner")

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	appendEntry(t, repo, "p1", "alice", activity.EntityProject, activity.ActionCreated, 1, base)
	appendEntry(t, repo, "p2", "bob", activity.EntityProject, activity.ActionCreated, 1, base.Add(time.Minute))

	// Alice sees only p1's entries.
	entries, err := repo.ListForUser(ctx, "alice", 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "p1", entries[0].ProjectID)

	// Revoking the membership removes the feed immediately.
	_, err = db.Exec(`DELETE FROM project_memberships WHERE id = 'm1'`)
	require.NoError(t, err)

	entries, err = repo.ListForUser(ctx, "alice", 50)
	require.NoError(t, err)
	require.Empty(t, entries)
}
