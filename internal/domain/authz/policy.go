package authz

// ResourceKind is the class of domain object an action targets.
type ResourceKind string

const (
	KindProject ResourceKind = "project"
	KindTask    ResourceKind = "task"
	KindComment ResourceKind = "comment"
	KindFile    ResourceKind = "file"
	KindGroup   ResourceKind = "group"
)

// Action is an operation a user attempts on a resource.
type Action string

const (
	ActionView          Action = "view"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionManageMembers Action = "manage_members"
)

// rule holds the minimum role required for an action. Min applies to
// resources the actor does not own; OwnMin applies when the actor is the
// resource's creator/author/uploader. A zero role means never allowed.
type rule struct {
	Min    Role
	OwnMin Role
}

// policy is the full authorization matrix. Anything absent is denied.
var policy = map[ResourceKind]map[Action]rule{
	KindProject: {
		ActionView:          {Min: RoleViewer},
		ActionUpdate:        {Min: RoleAdmin, OwnMin: RoleMember},
		ActionDelete:        {Min: RoleOwner, OwnMin: RoleOwner},
		ActionManageMembers: {Min: RoleAdmin},
	},
	KindTask: {
		ActionView:   {Min: RoleViewer},
		ActionCreate: {Min: RoleMember},
		ActionUpdate: {Min: RoleAdmin, OwnMin: RoleMember},
		ActionDelete: {Min: RoleAdmin, OwnMin: RoleMember},
	},
	KindComment: {
		ActionView:   {Min: RoleViewer},
		ActionCreate: {Min: RoleMember},
		ActionUpdate: {Min: RoleAdmin, OwnMin: RoleMember},
		ActionDelete: {Min: RoleAdmin, OwnMin: RoleMember},
	},
	KindFile: {
		ActionView:   {Min: RoleViewer},
		ActionCreate: {Min: RoleMember},
		ActionUpdate: {Min: RoleAdmin, OwnMin: RoleMember},
		ActionDelete: {Min: RoleAdmin, OwnMin: RoleMember},
	},
	KindGroup: {
		ActionView:          {Min: RoleViewer},
		ActionCreate:        {Min: RoleMember},
		ActionUpdate:        {Min: RoleAdmin, OwnMin: RoleMember},
		ActionDelete:        {Min: RoleAdmin, OwnMin: RoleMember},
		ActionManageMembers: {Min: RoleAdmin},
	},
}

// Authorize decides whether a role may perform action on a resource of the
// given kind. isOwner reports whether the acting user is the resource's
// creator/author/uploader. The decision is pure and fails closed: unknown
// kinds, actions, or roles are denied. A nil return means allow.
func Authorize(role Role, kind ResourceKind, action Action, isOwner bool) error {
	if !role.Valid() {
		return ErrForbidden
	}
	actions, ok := policy[kind]
	if !ok {
		return ErrForbidden
	}
	r, ok := actions[action]
	if !ok {
		return ErrForbidden
	}

	min := r.Min
	if isOwner && r.OwnMin != 0 && r.OwnMin < min {
		min = r.OwnMin
	}
	if min == 0 {
		return ErrForbidden
	}
	if !role.AtLeast(min) {
		return ErrForbidden
	}
	return nil
}
