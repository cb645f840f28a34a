package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/userdeck/userdeck/internal/models"
)

func account(id uint64, role models.Role) models.Account {
	return models.Account{ID: id, Role: role}
}

func TestCanCreate(t *testing.T) {
	require.False(t, CanCreate(models.RoleUser))
	require.True(t, CanCreate(models.RoleAdmin))
	require.True(t, CanCreate(models.RoleSuperadmin))
	require.False(t, CanCreate(models.Role("ghost")))
}

func TestCanDeleteAdminActor(t *testing.T) {
	admin := account(2, models.RoleAdmin)

	require.True(t, CanDelete(admin, account(3, models.RoleUser)))
	require.False(t, CanDelete(admin, account(4, models.RoleAdmin)))
	require.False(t, CanDelete(admin, account(1, models.RoleSuperadmin)))
}

func TestCanDeleteSuperadminActor(t *testing.T) {
	super := account(1, models.RoleSuperadmin)

	require.True(t, CanDelete(super, account(2, models.RoleAdmin)))
	require.True(t, CanDelete(super, account(3, models.RoleUser)))
	require.False(t, CanDelete(super, account(5, models.RoleSuperadmin)))
}

func TestCanDeleteUserActorAlwaysFalse(t *testing.T) {
	user := account(3, models.RoleUser)

	for _, role := range models.Roles() {
		require.False(t, CanDelete(user, account(9, role)))
	}
}

func TestCanDeleteSelfAlwaysFalse(t *testing.T) {
	for _, role := range models.Roles() {
		actor := account(7, role)
		require.False(t, CanDelete(actor, actor), "role %s must not delete itself", role)
	}
}

func TestCanChangeRole(t *testing.T) {
	super := account(1, models.RoleSuperadmin)

	require.True(t, CanChangeRole(super, account(2, models.RoleAdmin)))
	require.True(t, CanChangeRole(super, account(3, models.RoleUser)))
	require.False(t, CanChangeRole(super, account(5, models.RoleSuperadmin)))
	require.False(t, CanChangeRole(super, super))

	require.False(t, CanChangeRole(account(2, models.RoleAdmin), account(3, models.RoleUser)))
	require.False(t, CanChangeRole(account(3, models.RoleUser), account(4, models.RoleUser)))
}

func TestAllowedNewRoles(t *testing.T) {
	allowed := AllowedNewRoles()
	require.Equal(t, []models.Role{models.RoleUser, models.RoleAdmin}, allowed)

	require.True(t, AssignableRole(models.RoleUser))
	require.True(t, AssignableRole(models.RoleAdmin))
	require.False(t, AssignableRole(models.RoleSuperadmin))
	require.False(t, AssignableRole(models.Role("ghost")))
}

func TestResolveCreationRole(t *testing.T) {
	// Admin actors always produce plain users, whatever they ask for.
	for _, requested := range []models.Role{models.RoleUser, models.RoleAdmin, models.RoleSuperadmin} {
		require.Equal(t, models.RoleUser, ResolveCreationRole(models.RoleAdmin, requested))
	}

	require.Equal(t, models.RoleUser, ResolveCreationRole(models.RoleSuperadmin, models.RoleUser))
	require.Equal(t, models.RoleAdmin, ResolveCreationRole(models.RoleSuperadmin, models.RoleAdmin))

	// Requesting superadmin downgrades to user.
	require.Equal(t, models.RoleUser, ResolveCreationRole(models.RoleSuperadmin, models.RoleSuperadmin))
	require.Equal(t, models.RoleUser, ResolveCreationRole(models.RoleSuperadmin, models.Role("ghost")))
}
