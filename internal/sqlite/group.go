package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crewlog/crewlog/internal/domain/group"
	"github.com/crewlog/crewlog/internal/domain/membership"
	"github.com/crewlog/crewlog/internal/repository"
)

// GroupRepository implements group and group membership persistence for
// SQLite
type GroupRepository struct {
	db *DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a new group
func (r *GroupRepository) Create(ctx context.Context, g *group.Group) error {
	query := `
		INSERT INTO groups (id, project_id, name, color, creator_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		g.ID, g.ProjectID, g.Name, g.Color, g.CreatorID, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// Get retrieves a group by ID
func (r *GroupRepository) Get(ctx context.Context, id string) (*group.Group, error) {
	query := `
		SELECT id, project_id, name, color, creator_id, created_at
		FROM groups
		WHERE id = ?
	`

	var g group.Group
	err := r.db.conn(ctx).QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.ProjectID, &g.Name, &g.Color, &g.CreatorID, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &g, nil
}

// ProjectID maps a group to its owning project
func (r *GroupRepository) ProjectID(ctx context.Context, groupID string) (string, error) {
	var projectID string
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT project_id FROM groups WHERE id = ?`, groupID).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve group project: %w", err)
	}
	return projectID, nil
}

// Update saves a group's name and color
func (r *GroupRepository) Update(ctx context.Context, g *group.Group) error {
	result, err := r.db.conn(ctx).ExecContext(ctx,
		`UPDATE groups SET name = ?, color = ? WHERE id = ?`,
		g.Name, g.Color, g.ID)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
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

// Delete removes a group. Group memberships cascade.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
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

// ListByProject returns the project's groups
func (r *GroupRepository) ListByProject(ctx context.Context, projectID string) ([]group.Group, error) {
	query := `
		SELECT id, project_id, name, color, creator_id, created_at
		FROM groups
		WHERE project_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []group.Group
	for rows.Next() {
		var g group.Group
		if err := rows.Scan(&g.ID, &g.ProjectID, &g.Name, &g.Color, &g.CreatorID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}
	return groups, nil
}

// AddMember places a user in a group
func (r *GroupRepository) AddMember(ctx context.Context, gm *membership.GroupMembership) error {
	query := `
		INSERT INTO group_memberships (id, group_id, user_id, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query, gm.ID, gm.GroupID, gm.UserID, gm.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

// GetMember retrieves one user's group membership
func (r *GroupRepository) GetMember(ctx context.Context, groupID, userID string) (*membership.GroupMembership, error) {
	query := `
		SELECT id, group_id, user_id, created_at
		FROM group_memberships
		WHERE group_id = ? AND user_id = ?
	`

	var gm membership.GroupMembership
	err := r.db.conn(ctx).QueryRowContext(ctx, query, groupID, userID).Scan(
		&gm.ID, &gm.GroupID, &gm.UserID, &gm.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group member: %w", err)
	}
	return &gm, nil
}

// RemoveMember removes a user from a group
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx,
		`DELETE FROM group_memberships WHERE group_id = ? AND user_id = ?`,
		groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
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

// ListMembers returns the group's memberships
func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]membership.GroupMembership, error) {
	query := `
		SELECT id, group_id, user_id, created_at
		FROM group_memberships
		WHERE group_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	var members []membership.GroupMembership
	for rows.Next() {
		var gm membership.GroupMembership
		if err := rows.Scan(&gm.ID, &gm.GroupID, &gm.UserID, &gm.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, gm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group member rows: %w", err)
	}
	return members, nil
}
