package group

import "time"

// Group is a named, colored sub-collection of users within a project, used
// for task assignment. A group belongs to exactly one project and is
// removed when the project is deleted.
type Group struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatorID string    `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}
