package file

import "time"

// Attachment is file metadata attached to a task. The bytes themselves
// live in external storage; this core records only who attached what.
type Attachment struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	UploaderID  string    `json:"uploader_id"`
	FileName    string    `json:"file_name"`
	StoragePath string    `json:"storage_path"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
