package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crewlog/crewlog/internal/domain/file"
	"github.com/crewlog/crewlog/internal/repository"
)

// FileRepository implements file attachment persistence for SQLite
type FileRepository struct {
	db *DB
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts attachment metadata
func (r *FileRepository) Create(ctx context.Context, a *file.Attachment) error {
	query := `
		INSERT INTO file_attachments (id, task_id, uploader_id, file_name,
			storage_path, size_bytes, content_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		a.ID,
		a.TaskID,
		a.UploaderID,
		a.FileName,
		a.StoragePath,
		a.SizeBytes,
		a.ContentType,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	return nil
}

// Get retrieves an attachment by ID
func (r *FileRepository) Get(ctx context.Context, id string) (*file.Attachment, error) {
	query := `
		SELECT id, task_id, uploader_id, file_name, storage_path,
			size_bytes, content_type, created_at
		FROM file_attachments
		WHERE id = ?
	`

	var a file.Attachment
	err := r.db.conn(ctx).QueryRowContext(ctx, query, id).Scan(
		&a.ID,
		&a.TaskID,
		&a.UploaderID,
		&a.FileName,
		&a.StoragePath,
		&a.SizeBytes,
		&a.ContentType,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return &a, nil
}

// Delete removes an attachment
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM file_attachments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
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

// ListByTask returns a task's attachments
func (r *FileRepository) ListByTask(ctx context.Context, taskID string) ([]file.Attachment, error) {
	query := `
		SELECT id, task_id, uploader_id, file_name, storage_path,
			size_bytes, content_type, created_at
		FROM file_attachments
		WHERE task_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []file.Attachment
	for rows.Next() {
		var a file.Attachment
		if err := rows.Scan(
			&a.ID,
			&a.TaskID,
			&a.UploaderID,
			&a.FileName,
			&a.StoragePath,
			&a.SizeBytes,
			&a.ContentType,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachment rows: %w", err)
	}
	return attachments, nil
}
