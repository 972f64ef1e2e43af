package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/domain/membership"
	"github.com/crewlog/crewlog/internal/repository"
)

// MembershipRepository implements project membership persistence for SQLite
type MembershipRepository struct {
	db *DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create inserts a new membership. A user may hold at most one membership
// per project; duplicates surface as repository.ErrConflict.
func (r *MembershipRepository) Create(ctx context.Context, m *membership.Membership) error {
	query := `
		INSERT INTO project_memberships (id, project_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		m.ID,
		m.ProjectID,
		m.UserID,
		m.Role.String(),
		m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// Get retrieves the membership linking a user to a project
func (r *MembershipRepository) Get(ctx context.Context, projectID, userID string) (*membership.Membership, error) {
	query := `
		SELECT id, project_id, user_id, role, created_at
		FROM project_memberships
		WHERE project_id = ? AND user_id = ?
	`

	return r.scanOne(r.db.conn(ctx).QueryRowContext(ctx, query, projectID, userID))
}

// UpdateRole changes a member's role
func (r *MembershipRepository) UpdateRole(ctx context.Context, projectID, userID string, role authz.Role) error {
	result, err := r.db.conn(ctx).ExecContext(ctx,
		`UPDATE project_memberships SET role = ? WHERE project_id = ? AND user_id = ?`,
		role.String(), projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
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

// Delete removes a membership
func (r *MembershipRepository) Delete(ctx context.Context, projectID, userID string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx,
		`DELETE FROM project_memberships WHERE project_id = ? AND user_id = ?`,
		projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
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

// ListByProject returns a project's memberships
func (r *MembershipRepository) ListByProject(ctx context.Context, projectID string) ([]membership.Membership, error) {
	query := `
		SELECT id, project_id, user_id, role, created_at
		FROM project_memberships
		WHERE project_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var members []membership.Membership
	for rows.Next() {
		var m membership.Membership
		var roleName string
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &roleName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		role, err := authz.ParseRole(roleName)
		if err != nil {
			return nil, fmt.Errorf("corrupt role in store: %w", err)
		}
		m.Role = role
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}
	return members, nil
}

func (r *MembershipRepository) scanOne(row *sql.Row) (*membership.Membership, error) {
	var m membership.Membership
	var roleName string
	err := row.Scan(&m.ID, &m.ProjectID, &m.UserID, &roleName, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	role, err := authz.ParseRole(roleName)
	if err != nil {
		return nil, fmt.Errorf("corrupt role in store: %w", err)
	}
	m.Role = role
	return &m, nil
}

// isUniqueViolation detects SQLite unique constraint failures without
// depending on driver error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
