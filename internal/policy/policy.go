// Package policy holds the pure permission rules governing who may create,
// delete, or re-role whom. It is the single source of truth for those
// decisions; callers (service layer, handlers) never re-derive them.
package policy

import (
	"github.com/userdeck/userdeck/internal/models"
)

// CanCreate reports whether an actor with the given role may create accounts.
func CanCreate(actor models.Role) bool {
	switch actor {
	case models.RoleAdmin, models.RoleSuperadmin:
		return true
	case models.RoleUser:
		return false
	default:
		return false
	}
}

// CanDelete reports whether the actor may hard-delete the target account.
// Self-deletion is never allowed, for any role.
func CanDelete(actor, target models.Account) bool {
	if actor.ID == target.ID {
		return false
	}

	switch actor.Role {
	case models.RoleAdmin:
		return target.Role == models.RoleUser
	case models.RoleSuperadmin:
		return target.Role != models.RoleSuperadmin
	case models.RoleUser:
		return false
	default:
		return false
	}
}

// CanChangeRole reports whether the actor may assign the target a new role.
// Only superadmins may re-role, never themselves and never another superadmin.
func CanChangeRole(actor, target models.Account) bool {
	if actor.Role != models.RoleSuperadmin {
		return false
	}
	if actor.ID == target.ID {
		return false
	}
	return target.Role != models.RoleSuperadmin
}

// AllowedNewRoles returns the fixed set of roles assignable through a role
// change. Superadmin is never an assignable target role.
func AllowedNewRoles() []models.Role {
	return []models.Role{models.RoleUser, models.RoleAdmin}
}

// AssignableRole reports whether the role may be granted via role change.
func AssignableRole(role models.Role) bool {
	return role == models.RoleUser || role == models.RoleAdmin
}

// ResolveCreationRole determines the role a newly created account receives.
// Admins always produce plain users regardless of the request; superadmins may
// request user or admin, and anything else falls back to user. Callers must
// have already rejected actors for which CanCreate is false.
func ResolveCreationRole(actor, requested models.Role) models.Role {
	switch actor {
	case models.RoleAdmin:
		return models.RoleUser
	case models.RoleSuperadmin:
		if AssignableRole(requested) {
			return requested
		}
		return models.RoleUser
	default:
		return models.RoleUser
	}
}
