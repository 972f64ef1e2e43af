package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crewlog/crewlog/internal/domain/project"
	"github.com/crewlog/crewlog/internal/repository"
)

// ProjectRepository implements project persistence for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	query := `
		INSERT INTO projects (id, name, description, start_date, end_date, status,
			creator_id, auto_schedule, seq, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		proj.ID,
		proj.Name,
		proj.Description,
		proj.StartDate,
		proj.EndDate,
		proj.Status,
		proj.CreatorID,
		proj.AutoSchedule,
		proj.CreatedAt,
		proj.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `
		SELECT id, name, description, start_date, end_date, status,
			creator_id, auto_schedule, created_at, updated_at
		FROM projects
		WHERE id = ?
	`

	var proj project.Project
	var start, end sql.NullTime
	err := r.db.conn(ctx).QueryRowContext(ctx, query, id).Scan(
		&proj.ID,
		&proj.Name,
		&proj.Description,
		&start,
		&end,
		&proj.Status,
		&proj.CreatorID,
		&proj.AutoSchedule,
		&proj.CreatedAt,
		&proj.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if start.Valid {
		proj.StartDate = &start.Time
	}
	if end.Valid {
		proj.EndDate = &end.Time
	}
	return &proj, nil
}

// Exists reports whether a project exists
func (r *ProjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.conn(ctx).QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	return true, nil
}

// Update saves a project's mutable attributes
func (r *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	query := `
		UPDATE projects
		SET name = ?, description = ?, start_date = ?, end_date = ?,
			status = ?, auto_schedule = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		proj.Name,
		proj.Description,
		proj.StartDate,
		proj.EndDate,
		proj.Status,
		proj.AutoSchedule,
		proj.UpdatedAt,
		proj.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
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

// Delete removes a project. Memberships, groups and tasks cascade; audit
// entries do not.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
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

// ListForUser returns summaries of the projects the user belongs to
func (r *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]project.Summary, error) {
	query := `
		SELECT
			p.id,
			p.name,
			p.description,
			p.status,
			p.created_at,
			COUNT(DISTINCT t.id) AS task_count,
			COUNT(DISTINCT pm2.id) AS member_count
		FROM projects p
		JOIN project_memberships pm ON pm.project_id = p.id AND pm.user_id = ?
		LEFT JOIN tasks t ON t.project_id = p.id
		LEFT JOIN project_memberships pm2 ON pm2.project_id = p.id
		GROUP BY p.id, p.name, p.description, p.status, p.created_at
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var summaries []project.Summary
	for rows.Next() {
		var s project.Summary
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Description,
			&s.Status,
			&s.CreatedAt,
			&s.TaskCount,
			&s.MemberCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return summaries, nil
}

// NextSeq atomically increments the project's audit sequence and returns
// the new value. Must run inside the mutation's transaction: the row
// update serializes concurrent writers on the project.
func (r *ProjectRepository) NextSeq(ctx context.Context, projectID string) (int64, error) {
	conn := r.db.conn(ctx)

	result, err := conn.ExecContext(ctx,
		`UPDATE projects SET seq = seq + 1 WHERE id = ?`, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to increment seq: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return 0, repository.ErrNotFound
	}

	var seq int64
	err = conn.QueryRowContext(ctx,
		`SELECT seq FROM projects WHERE id = ?`, projectID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to read seq: %w", err)
	}
	return seq, nil
}
