// Package access decides whether an authenticated principal may perform an
// operation on a task or user. Decisions are pure functions of the caller's
// role, the caller's identity and the resource owner; loading resources is
// left to the services.
package access

import (
	"errors"

	"taskmanager/internal/model"
)

var (
	// ErrForbidden is returned when the caller's role or ownership does not permit the operation.
	ErrForbidden = errors.New("access denied")
	// ErrSelfDemotion is returned when an admin tries to drop its own ADMIN role.
	ErrSelfDemotion = errors.New("admins cannot demote themselves")
)

// Operation is an action on a single task.
type Operation string

const (
	OpRead     Operation = "read"
	OpUpdate   Operation = "update"
	OpDelete   Operation = "delete"
	OpUpload   Operation = "upload"
	OpDownload Operation = "download"
)

// Permission is a global, resource-independent capability.
type Permission string

const (
	PermListUsers     Permission = "list-users"
	PermManageRoles   Permission = "manage-roles"
	PermListUserTasks Permission = "list-user-tasks"
)

// adminOnly lists permissions reserved to ADMIN. Every permission defined
// today is admin-only; an unknown permission is denied.
var adminOnly = map[Permission]struct{}{
	PermListUsers:     {},
	PermManageRoles:   {},
	PermListUserTasks: {},
}

// Principal is the authenticated caller.
type Principal struct {
	UserID uint
	Email  string
	Role   model.Role
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// CheckTask decides whether p may perform op on a task owned by ownerID.
// A nil owner means the task is unassigned and only admins may touch it.
func CheckTask(p Principal, ownerID *uint, op Operation) error {
	if p.IsAdmin() {
		return nil
	}
	if p.Role != model.RoleUser {
		return ErrForbidden
	}
	if ownerID == nil || *ownerID != p.UserID {
		return ErrForbidden
	}
	return nil
}

// Authorize checks a global permission.
func Authorize(p Principal, perm Permission) error {
	if _, ok := adminOnly[perm]; !ok {
		return ErrForbidden
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CheckRoleChange decides whether p may set targetID's role to newRole.
func CheckRoleChange(p Principal, targetID uint, newRole model.Role) error {
	if err := Authorize(p, PermManageRoles); err != nil {
		return err
	}
	if targetID == p.UserID && newRole == model.RoleUser {
		return ErrSelfDemotion
	}
	return nil
}
