package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/domain/group"
	"github.com/crewlog/crewlog/internal/domain/membership"
	"github.com/crewlog/crewlog/internal/repository"
)

func TestGroupRepository_CreateGetProjectID(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewGroupRepository(db)

	insertUser(t, db, "alice", "alice@x")
	insertProject(t, db, "p1", "alice")

	g := &group.Group{
		ID:        "g1",
		ProjectID: "p1",
		Name:      "backend",
		Color:     "#ff8800",
		CreatorID: "alice",
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, g))

	got, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "backend", got.Name)
	require.Equal(t, "#ff8800", got.Color)

	projectID, err := repo.ProjectID(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "p1", projectID)

	_, err = repo.ProjectID(ctx, "ghost")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGroupRepository_Members(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewGroupRepository(db)

	insertUser(t, db, "alice", "alice@x")
	insertUser(t, db, "bob", "bob@x")
	insertProject(t, db, "p1", "alice")
	require.NoError(t, repo.Create(ctx, &group.Group{
		ID: "g1", ProjectID: "p1", Name: "backend", Color: "#808080", CreatorID: "alice", CreatedAt: time.Now(),
	}))

	gm := &membership.GroupMembership{ID: "gm1", GroupID: "g1", UserID: "bob", CreatedAt: time.Now()}
	require.NoError(t, repo.AddMember(ctx, gm))

	got, err := repo.GetMember(ctx, "g1", "bob")
	require.NoError(t, err)
	require.Equal(t, "bob", got.UserID)

	members, err := repo.ListMembers(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, members, 1)

	require.NoError(t, repo.RemoveMember(ctx, "g1", "bob"))
	_, err = repo.GetMember(ctx, "g1", "bob")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGroupRepository_DeleteWithProjectCascade(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewGroupRepository(db)

	insertUser(t, db, "alice", "alice@x")
	insertProject(t, db, "p1", "alice")
	require.NoError(t, repo.Create(ctx, &group.Group{
		ID: "g1", ProjectID: "p1", Name: "backend", Color: "#808080", CreatorID: "alice", CreatedAt: time.Now(),
	}))

	_, err := db.Exec(`DELETE FROM projects WHERE id = 'p1'`)
	require.NoError(t, err)

	_, err = repo.Get(ctx, "g1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
