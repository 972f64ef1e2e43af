package activity

import "time"

// EntityType is the class of domain object an audit entry describes.
type EntityType string

const (
	EntityProject EntityType = "project"
	EntityTask    EntityType = "task"
	EntityComment EntityType = "comment"
	EntityFile    EntityType = "file"
	EntityGroup   EntityType = "group"
)

// Action is the state change an audit entry records.
type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionDeleted       Action = "deleted"
	ActionCommented     Action = "commented"
	ActionUploaded      Action = "uploaded"
	ActionMemberAdded   Action = "member_added"
	ActionMemberRemoved Action = "member_removed"
	ActionRoleChanged   Action = "role_changed"
)

// Entry is one immutable audit record. Entries are append-only: once
// written they are never updated or deleted by normal operation. Seq is
// strictly increasing within a project and never reused.
type Entry struct {
	ID         int64      `json:"id"`
	ProjectID  string     `json:"project_id"`
	TaskID     *string    `json:"task_id,omitempty"`
	ActorID    string     `json:"actor_id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   *string    `json:"entity_id,omitempty"`
	Action     Action     `json:"action"`
	Changes    Changes    `json:"changes"`
	CreatedAt  time.Time  `json:"created_at"`
	Seq        int64      `json:"seq"`
}
