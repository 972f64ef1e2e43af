package authz

import (
	"encoding/json"
	"fmt"
)

// Role is a privilege tier held by a user within a project. Roles form a
// total order: owner > admin > member > viewer.
type Role int

const (
	RoleViewer Role = iota + 1
	RoleMember
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleViewer: "viewer",
	RoleMember: "member",
	RoleAdmin:  "admin",
	RoleOwner:  "owner",
}

var rolesByName = map[string]Role{
	"viewer": RoleViewer,
	"member": RoleMember,
	"admin":  RoleAdmin,
	"owner":  RoleOwner,
}

// ParseRole converts a stored or client-supplied role name into a Role.
func ParseRole(name string) (Role, error) {
	r, ok := rolesByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRole, name)
	}
	return r, nil
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// AtLeast reports whether r holds privilege equal to or above other.
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// MarshalJSON encodes the role as its name so snapshots stay readable.
func (r Role) MarshalJSON() ([]byte, error) {
	name, ok := roleNames[r]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, int(r))
	}
	return json.Marshal(name)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseRole(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
