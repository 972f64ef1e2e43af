package membership

import (
	"time"

	"github.com/crewlog/crewlog/internal/domain/authz"
)

// Membership grants a user a role in a project. A user holds at most one
// active membership per project; exactly one membership per project carries
// the owner role.
type Membership struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	UserID    string     `json:"user_id"`
	Role      authz.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// GroupMembership places a user in a group within a project. It governs
// task assignment visibility only and never raises the user's
// authorization tier beyond their project role.
type GroupMembership struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
