package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/domain/comment"
	"github.com/crewlog/crewlog/internal/domain/membership"
	"github.com/crewlog/crewlog/internal/domain/project"
	"github.com/crewlog/crewlog/internal/domain/task"
)

type services struct {
	projects *project.Service
	tasks    *task.Service
	comments *comment.Service
	activity *activity.Service
	recorder *activity.Recorder
}

func newServices(t *testing.T, db *DB) services {
	t.Helper()

	projectRepo := NewProjectRepository(db)
	membershipRepo := NewMembershipRepository(db)
	userRepo := NewUserRepository(db)
	taskRepo := NewTaskRepository(db)
	commentRepo := NewCommentRepository(db)
	activityRepo := NewActivityRepository(db)

	resolver := membership.NewService(membershipRepo, projectRepo, NewGroupRepository(db), nil)
	recorder := activity.NewRecorder(activityRepo, projectRepo, nil)

	return services{
		projects: project.NewService(projectRepo, membershipRepo, userRepo, resolver, recorder, db, nil, nil),
		tasks:    task.NewService(taskRepo, resolver, recorder, db, nil, nil),
		comments: comment.NewService(commentRepo, taskRepo, resolver, recorder, db, nil, nil),
		activity: activity.NewService(activityRepo, resolver, taskRepo, nil),
		recorder: recorder,
	}
}

// Walks a full collaboration: project setup, membership, task work,
// comments, and the audit trail that the whole history leaves behind.
func TestCollaborationLifecycle(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	svc := newServices(t, db)

	insertUser(t, db, "alice", "alice@x")
	insertUser(t, db, "bob", "bob@x")

	proj, err := svc.projects.Create(ctx, "alice", project.CreateRequest{Name: "Apollo"})
	require.NoError(t, err)

	_, err = svc.projects.AddMember(ctx, "alice", proj.ID, "bob@x", authz.RoleMember)
	require.NoError(t, err)

	tk, err := svc.tasks.Create(ctx, "alice", proj.ID, task.CreateRequest{Title: "write docs"})
	require.NoError(t, err)

	// Bob, a member, comments: exactly one audit entry with action
	// "commented".
	c, err := svc.comments.Create(ctx, "bob", tk.ID, "first draft ready")
	require.NoError(t, err)

	commented := activity.ActionCommented
	entries, total, err := svc.activity.QueryProjectActivity(ctx, proj.ID, "alice", activity.ListOptions{Action: &commented})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "bob", entries[0].ActorID)
	require.Equal(t, activity.EntityComment, entries[0].EntityType)

	// Alice comments too; Bob cannot delete her comment, she can.
	ac, err := svc.comments.Create(ctx, "alice", tk.ID, "needs a second pass")
	require.NoError(t, err)

	err = svc.comments.Delete(ctx, "bob", ac.ID)
	require.ErrorIs(t, err, authz.ErrForbidden)

	require.NoError(t, svc.comments.Delete(ctx, "alice", ac.ID))
	require.NoError(t, svc.comments.Delete(ctx, "bob", c.ID))

	// Seven mutations so far; seq runs 1..7 with no gaps or duplicates.
	entries, total, err = svc.activity.QueryProjectActivity(ctx, proj.ID, "bob", activity.ListOptions{Limit: 100})
	require.NoError(t, err)
	require.Equal(t, 7, total)
	require.Len(t, entries, 7)
	for i, e := range entries {
		require.Equal(t, int64(7-i), e.Seq, "audit entries must be contiguous and newest-first")
	}

	// Task-scoped view covers the comment traffic plus the task creation.
	taskEntries, err := svc.activity.QueryTaskActivity(ctx, tk.ID, "bob", 0)
	require.NoError(t, err)
	require.Len(t, taskEntries, 5)
}

func TestDeniedMutationLeavesNoTrace(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	svc := newServices(t, db)

	insertUser(t, db, "alice", "alice@x")
	insertUser(t, db, "victor", "victor@x")

	proj, err := svc.projects.Create(ctx, "alice", project.CreateRequest{Name: "Apollo"})
	require.NoError(t, err)
	_, err = svc.projects.AddMember(ctx, "alice", proj.ID, "victor@x", authz.RoleViewer)
	require.NoError(t, err)

	_, total, err := svc.activity.QueryProjectActivity(ctx, proj.ID, "alice", activity.ListOptions{})
	require.NoError(t, err)
	before := total

	_, err = svc.tasks.Create(ctx, "victor", proj.ID, task.CreateRequest{Title: "sneak in"})
	require.ErrorIs(t, err, authz.ErrForbidden)

	var taskCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&taskCount))
	require.Equal(t, 0, taskCount)

	_, total, err = svc.activity.QueryProjectActivity(ctx, proj.ID, "alice", activity.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, before, total, "a denied request must not add audit entries")
}

func TestProjectDeletionKeepsAuditTrail(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	svc := newServices(t, db)

	insertUser(t, db, "alice", "alice@x")

	proj, err := svc.projects.Create(ctx, "alice", project.CreateRequest{Name: "Apollo"})
	require.NoError(t, err)
	require.NoError(t, svc.projects.Delete(ctx, "alice", proj.ID))

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM activity_log WHERE project_id = ?`, proj.ID).Scan(&rows))
	require.Equal(t, 2, rows, "creation and deletion entries must survive the project")
}

// Concurrent mutations on one project must still produce a contiguous,
// duplicate-free audit sequence: the seq-increment row update serializes
// writers inside their transactions.
func TestConcurrentWritersKeepSeqContiguous(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	svc := newServices(t, db)

	insertUser(t, db, "alice", "alice@x")
	proj, err := svc.projects.Create(ctx, "alice", project.CreateRequest{Name: "Apollo"})
	require.NoError(t, err)

	const writers = 20
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.tasks.Create(ctx, "alice", proj.ID, task.CreateRequest{
				Title: fmt.Sprintf("task %d", n),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rows, err := db.Query(`SELECT seq FROM activity_log WHERE project_id = ? ORDER BY seq`, proj.ID)
	require.NoError(t, err)
	defer rows.Close()

	var seqs []int64
	for rows.Next() {
		var seq int64
		require.NoError(t, rows.Scan(&seq))
		seqs = append(seqs, seq)
	}
	require.NoError(t, rows.Err())

	// Project creation plus one entry per writer, numbered 1..21 with no
	// gaps or duplicates.
	require.Len(t, seqs, writers+1)
	for i, seq := range seqs {
		require.Equal(t, int64(i+1), seq)
	}
}

// failingRecorder refuses every append, standing in for an audit-side
// fault mid-transaction.
type failingRecorder struct{}

var errAuditDown = errors.New("audit unavailable")

func (failingRecorder) Record(ctx context.Context, entry *activity.Entry) (*activity.Entry, error) {
	return nil, errAuditDown
}

func TestMutationRollsBackWithAudit(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	svc := newServices(t, db)

	insertUser(t, db, "alice", "alice@x")
	proj, err := svc.projects.Create(ctx, "alice", project.CreateRequest{Name: "Apollo"})
	require.NoError(t, err)

	resolver := membership.NewService(NewMembershipRepository(db), NewProjectRepository(db), NewGroupRepository(db), nil)
	tasks := task.NewService(NewTaskRepository(db), resolver, failingRecorder{}, db, nil, nil)

	_, err = tasks.Create(ctx, "alice", proj.ID, task.CreateRequest{Title: "doomed"})
	require.ErrorIs(t, err, errAuditDown)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&count))
	require.Equal(t, 0, count, "the task write must roll back with the failed audit append")
}
