package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crewlog/crewlog/internal/domain/task"
	"github.com/crewlog/crewlog/internal/repository"
)

// TaskRepository implements task persistence for SQLite
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (id, project_id, title, description, status,
			assignee_id, group_id, creator_id, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		t.ID,
		t.ProjectID,
		t.Title,
		t.Description,
		t.Status,
		t.AssigneeID,
		t.GroupID,
		t.CreatorID,
		t.DueDate,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Get retrieves a task by ID
func (r *TaskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	query := `
		SELECT id, project_id, title, description, status,
			assignee_id, group_id, creator_id, due_date, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`

	var t task.Task
	var assignee, groupID sql.NullString
	var due sql.NullTime
	err := r.db.conn(ctx).QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&assignee,
		&groupID,
		&t.CreatorID,
		&due,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if assignee.Valid {
		t.AssigneeID = &assignee.String
	}
	if groupID.Valid {
		t.GroupID = &groupID.String
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	return &t, nil
}

// ProjectID maps a task to its owning project
func (r *TaskRepository) ProjectID(ctx context.Context, taskID string) (string, error) {
	var projectID string
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT project_id FROM tasks WHERE id = ?`, taskID).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve task project: %w", err)
	}
	return projectID, nil
}

// Update saves a task's mutable attributes
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, assignee_id = ?,
			group_id = ?, due_date = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		t.Title,
		t.Description,
		t.Status,
		t.AssigneeID,
		t.GroupID,
		t.DueDate,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a task. Comments and attachments cascade.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByProject returns the project's tasks
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]task.Task, error) {
	query := `
		SELECT id, project_id, title, description, status,
			assignee_id, group_id, creator_id, due_date, created_at, updated_at
		FROM tasks
		WHERE project_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var assignee, groupID sql.NullString
		var due sql.NullTime
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Title,
			&t.Description,
			&t.Status,
			&assignee,
			&groupID,
			&t.CreatorID,
			&due,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if assignee.Valid {
			t.AssigneeID = &assignee.String
		}
		if groupID.Valid {
			t.GroupID = &groupID.String
		}
		if due.Valid {
			t.DueDate = &due.Time
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}
