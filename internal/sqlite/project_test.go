package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/domain/project"
	"github.com/crewlog/crewlog/internal/repository"
)

func TestProjectRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewProjectRepository(db)

	insertUser(t, db, "alice", "alice@x")

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC().Truncate(time.Second)
	proj := &project.Project{
		ID:          "p1",
		Name:        "Apollo",
		Description: "launch prep",
		StartDate:   &start,
		Status:      project.StatusActive,
		CreatorID:   "alice",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.Create(ctx, proj))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Apollo", got.Name)
	require.Equal(t, project.StatusActive, got.Status)
	require.NotNil(t, got.StartDate)
	require.Nil(t, got.EndDate)

	_, err = repo.Get(ctx, "ghost")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_Exists(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewProjectRepository(db)

	insertUser(t, db, "alice", "alice@x")
	insertProject(t, db, "p1", "alice")

	ok, err := repo.Exists(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Exists(ctx, "ghost")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestProjectRepository_NextSeqMonotonic(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewProjectRepository(db)

	insertUser(t, db, "alice", "alice@x")
	insertProject(t, db, "p1", "alice")
	insertProject(t, db, "p2", "alice")

	for want := int64(1); want <= 3; want++ {
		seq, err := repo.NextSeq(ctx, "p1")
		require.NoError(t, err)
		require.Equal(t, want, seq)
	}

	// Each project counts independently.
	seq, err := repo.NextSeq(ctx, "p2")
	require.NoError(t, err)
	require.Equal(t, int64(1), seq)
}

func TestProjectRepository_NextSeqUnknownProject(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)

	_, err := repo.NextSeq(context.Background(), "ghost")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_ListForUser(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewProjectRepository(db)

	insertUser(t, db, "alice", "alice@x")
	insertUser(t, db, "bob", "bob@x")
	insertProject(t, db, "p1", "alice")
	insertProject(t, db, "p2", "bob")
	insertMembership(t, db, "m1", "p1", "alice", "owner")
	insertMembership(t, db, "m2", "p2", "bob", "owner")
	insertMembership(t, db, "m3", "p2", "alice", "viewer")
	insertTask(t, db, "t1", "p2", "bob")
	insertTask(t, db, "t2", "p2", "bob")

	summaries, err := repo.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := map[string]project.Summary{}
	for _, s := range summaries {
		byID[s.ID] = s
	}
	require.Equal(t, 2, byID["p2"].TaskCount)
	require.Equal(t, 2, byID["p2"].MemberCount)
	require.Equal(t, 0, byID["p1"].TaskCount)
	require.Equal(t, 1, byID["p1"].MemberCount)

	summaries, err = repo.ListForUser(ctx, "ghost")
	require.NoError(t, err)
	require.Empty(t, summaries)
}

func TestProjectRepository_DeleteCascades(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewProjectRepository(db)

	insertUser(t, db, "alice", "alice@x")
	insertProject(t, db, "p1", "alice")
	insertMembership(t, db, "m1", "p1", "alice", "owner")
	insertTask(t, db, "t1", "p1", "alice")

	require.NoError(t, repo.Delete(ctx, "p1"))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM project_memberships`).Scan(&count))
	require.Equal(t, 0, count)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&count))
	require.Equal(t, 0, count)

	require.ErrorIs(t, repo.Delete(ctx, "p1"), repository.ErrNotFound)
}
