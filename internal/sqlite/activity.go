package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/crewlog/crewlog/internal/domain/activity"
)

// ActivityRepository implements audit entry persistence for SQLite. The
// table is append-only: this type deliberately has no update or delete.
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append inserts an audit entry
func (r *ActivityRepository) Append(ctx context.Context, entry *activity.Entry) error {
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("failed to marshal changes: %w", err)
	}

	query := `
		INSERT INTO activity_log (
			project_id, task_id, actor_id, entity_type, entity_id,
			action, changes, created_at, seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		entry.ProjectID,
		entry.TaskID,
		entry.ActorID,
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		string(changes),
		entry.CreatedAt,
		entry.Seq,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// List returns audit entries matching the given filters, most recent first
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	query := `
		SELECT id, project_id, task_id, actor_id, entity_type, entity_id,
			action, changes, created_at, seq
		FROM activity_log
	`

	where, args := buildActivityFilter(opts)
	query += where
	query += " ORDER BY seq DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	} else if opts.Offset > 0 {
		// SQLite rejects OFFSET without LIMIT; -1 means unbounded.
		query += " LIMIT -1"
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Count returns the number of entries matching the filters, ignoring
// pagination
func (r *ActivityRepository) Count(ctx context.Context, opts activity.ListOptions) (int, error) {
	query := `SELECT COUNT(*) FROM activity_log`
	where, args := buildActivityFilter(opts)
	query += where

	var count int
	if err := r.db.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activity: %w", err)
	}
	return count, nil
}

// ListForUser returns the cross-project feed: entries from every project
// the user currently belongs to, most recent first.
func (r *ActivityRepository) ListForUser(ctx context.Context, userID string, limit int) ([]activity.Entry, error) {
	query := `
		SELECT a.id, a.project_id, a.task_id, a.actor_id, a.entity_type, a.entity_id,
			a.action, a.changes, a.created_at, a.seq
		FROM activity_log a
		JOIN project_memberships pm ON pm.project_id = a.project_id AND pm.user_id = ?
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ?
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list user activity: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func buildActivityFilter(opts activity.ListOptions) (string, []any) {
	conditions := []string{}
	args := []any{}

	if opts.ProjectID != "" {
		conditions = append(conditions, "project_id = ?")
		args = append(args, opts.ProjectID)
	}
	if opts.TaskID != nil {
		conditions = append(conditions, "task_id = ?")
		args = append(args, *opts.TaskID)
	}
	if opts.EntityType != nil {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, *opts.EntityType)
	}
	if opts.Action != nil {
		conditions = append(conditions, "action = ?")
		args = append(args, *opts.Action)
	}
	if opts.ActorID != nil {
		conditions = append(conditions, "actor_id = ?")
		args = append(args, *opts.ActorID)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanEntries(rows *sql.Rows) ([]activity.Entry, error) {
	var entries []activity.Entry
	for rows.Next() {
		var entry activity.Entry
		var taskID, entityID sql.NullString
		var changes string
		if err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&taskID,
			&entry.ActorID,
			&entry.EntityType,
			&entityID,
			&entry.Action,
			&changes,
			&entry.CreatedAt,
			&entry.Seq,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if taskID.Valid {
			entry.TaskID = &taskID.String
		}
		if entityID.Valid {
			entry.EntityID = &entityID.String
		}
		if err := json.Unmarshal([]byte(changes), &entry.Changes); err != nil {
			return nil, fmt.Errorf("failed to decode changes: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}
	return entries, nil
}
