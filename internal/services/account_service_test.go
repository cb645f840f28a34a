package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/userdeck/userdeck/internal/directory"
	"github.com/userdeck/userdeck/internal/models"
	apperrors "github.com/userdeck/userdeck/pkg/errors"
)

func newTestService(t *testing.T) (*AccountService, directory.Directory) {
	t.Helper()

	dir := directory.NewMemory()
	svc, err := NewAccountService(dir)
	require.NoError(t, err)
	return svc, dir
}

func seedActor(t *testing.T, dir directory.Directory, username string, role models.Role) models.Account {
	t.Helper()

	account := &models.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         role,
	}
	require.NoError(t, dir.Add(context.Background(), account))
	return *account
}

func requireAppCode(t *testing.T, err error, code string) {
	t.Helper()

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code)
}

func TestCreateByAdminAlwaysYieldsUser(t *testing.T) {
	svc, dir := newTestService(t)
	admin := seedActor(t, dir, "admin", models.RoleAdmin)

	for _, requested := range []models.Role{models.RoleUser, models.RoleAdmin, models.RoleSuperadmin} {
		created, err := svc.Create(context.Background(), admin, CreateAccountInput{
			Username: "by-admin-" + requested.String(),
			Email:    "by-admin-" + requested.String() + "@example.com",
			Password: "password123",
			Role:     requested,
		})
		require.NoError(t, err)
		require.Equal(t, models.RoleUser, created.Role)
	}
}

func TestCreateBySuperadminHonoursAllowedRoles(t *testing.T) {
	svc, dir := newTestService(t)
	super := seedActor(t, dir, "superadmin", models.RoleSuperadmin)
	ctx := context.Background()

	created, err := svc.Create(ctx, super, CreateAccountInput{
		Username: "new-admin", Email: "new-admin@example.com", Password: "password123", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, created.Role)

	// Requesting superadmin downgrades to user.
	created, err = svc.Create(ctx, super, CreateAccountInput{
		Username: "wannabe", Email: "wannabe@example.com", Password: "password123", Role: models.RoleSuperadmin,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, created.Role)
}

func TestCreateByUserForbidden(t *testing.T) {
	svc, dir := newTestService(t)
	user := seedActor(t, dir, "user1", models.RoleUser)

	_, err := svc.Create(context.Background(), user, CreateAccountInput{
		Username: "nope", Email: "nope@example.com", Password: "password123",
	})
	requireAppCode(t, err, "FORBIDDEN")
}

func TestCreateRejectsDuplicatesAndMissingFields(t *testing.T) {
	svc, dir := newTestService(t)
	admin := seedActor(t, dir, "admin", models.RoleAdmin)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, CreateAccountInput{Username: "x", Email: "", Password: "password123"})
	requireAppCode(t, err, "VALIDATION_ERROR")

	_, err = svc.Create(ctx, admin, CreateAccountInput{Username: "x", Email: "x@example.com", Password: ""})
	requireAppCode(t, err, "VALIDATION_ERROR")

	_, err = svc.Create(ctx, admin, CreateAccountInput{
		Username: "other", Email: "admin@example.com", Password: "password123",
	})
	requireAppCode(t, err, "DUPLICATE_KEY")

	_, err = svc.Create(ctx, admin, CreateAccountInput{
		Username: "admin", Email: "fresh@example.com", Password: "password123",
	})
	requireAppCode(t, err, "DUPLICATE_KEY")
}

func TestRegisterAlwaysCreatesUserRole(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Register(context.Background(), RegisterInput{
		Username: "newcomer", Email: "Newcomer@Example.com", Password: "password123",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, created.Role)
	require.Equal(t, "newcomer@example.com", created.Email)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cretpass",
	})
	require.NoError(t, err)

	byUsername, err := svc.Authenticate(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
	require.Equal(t, created.ID, byUsername.ID)

	byEmail, err := svc.Authenticate(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	requireAppCode(t, err, "INVALID_CREDENTIALS")

	_, err = svc.Authenticate(ctx, "nobody", "s3cretpass")
	requireAppCode(t, err, "INVALID_CREDENTIALS")
}

func TestDeletePolicy(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	super := seedActor(t, dir, "superadmin", models.RoleSuperadmin)
	admin := seedActor(t, dir, "admin", models.RoleAdmin)
	user1 := seedActor(t, dir, "user1", models.RoleUser)

	// Self-delete is forbidden before anything else is considered.
	_, err := svc.Delete(ctx, admin, admin.ID)
	requireAppCode(t, err, "FORBIDDEN")

	// Admin cannot delete another admin or the superadmin.
	otherAdmin, err := svc.Create(ctx, super, CreateAccountInput{
		Username: "admin2", Email: "admin2@example.com", Password: "password123", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, admin, otherAdmin.ID)
	requireAppCode(t, err, "FORBIDDEN")
	_, err = svc.Delete(ctx, admin, super.ID)
	requireAppCode(t, err, "FORBIDDEN")

	// Admin deletes a plain user.
	deleted, err := svc.Delete(ctx, admin, user1.ID)
	require.NoError(t, err)
	require.Equal(t, user1.ID, deleted.ID)

	_, err = svc.GetByID(ctx, user1.ID)
	requireAppCode(t, err, "NOT_FOUND")

	// Superadmin deletes an admin but never another superadmin.
	_, err = svc.Delete(ctx, super, otherAdmin.ID)
	require.NoError(t, err)

	otherSuper := seedActor(t, dir, "superadmin2", models.RoleSuperadmin)
	_, err = svc.Delete(ctx, super, otherSuper.ID)
	requireAppCode(t, err, "FORBIDDEN")

	// Unknown target is 404.
	_, err = svc.Delete(ctx, super, 9999)
	requireAppCode(t, err, "NOT_FOUND")

}

func TestChangeRolePolicy(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	super := seedActor(t, dir, "superadmin", models.RoleSuperadmin)
	admin := seedActor(t, dir, "admin", models.RoleAdmin)
	user1 := seedActor(t, dir, "user1", models.RoleUser)

	// Promote a user to admin.
	updated, err := svc.ChangeRole(ctx, super, user1.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, updated.Role)

	// Demote back.
	updated, err = svc.ChangeRole(ctx, super, user1.ID, models.RoleUser)
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, updated.Role)

	// Superadmin is never an assignable role.
	_, err = svc.ChangeRole(ctx, super, user1.ID, models.RoleSuperadmin)
	requireAppCode(t, err, "VALIDATION_ERROR")

	// Own role is off limits regardless of rank.
	_, err = svc.ChangeRole(ctx, super, super.ID, models.RoleAdmin)
	requireAppCode(t, err, "FORBIDDEN")

	// Superadmin targets are protected.
	otherSuper := seedActor(t, dir, "superadmin2", models.RoleSuperadmin)
	_, err = svc.ChangeRole(ctx, super, otherSuper.ID, models.RoleUser)
	requireAppCode(t, err, "FORBIDDEN")

	// Non-superadmin actors cannot change roles at all.
	_, err = svc.ChangeRole(ctx, admin, user1.ID, models.RoleAdmin)
	requireAppCode(t, err, "FORBIDDEN")

	// Unknown target is 404.
	_, err = svc.ChangeRole(ctx, super, 9999, models.RoleAdmin)
	requireAppCode(t, err, "NOT_FOUND")
}

func TestChangeRoleToCurrentValueIsANoOp(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	super := seedActor(t, dir, "superadmin", models.RoleSuperadmin)
	user1 := seedActor(t, dir, "user1", models.RoleUser)

	updated, err := svc.ChangeRole(ctx, super, user1.ID, models.RoleUser)
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, updated.Role)

	// Eligibility still governs no-op requests.
	otherSuper := seedActor(t, dir, "superadmin2", models.RoleSuperadmin)
	_, err = svc.ChangeRole(ctx, super, otherSuper.ID, models.RoleUser)
	requireAppCode(t, err, "FORBIDDEN")
}

func TestStatsInvariantAfterMutations(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	super := seedActor(t, dir, "superadmin", models.RoleSuperadmin)
	seedActor(t, dir, "admin", models.RoleAdmin)
	user1 := seedActor(t, dir, "user1", models.RoleUser)
	seedActor(t, dir, "user2", models.RoleUser)

	_, err := svc.ChangeRole(ctx, super, user1.ID, models.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, super, user1.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, stats.Total, stats.ByRole.User+stats.ByRole.Admin+stats.ByRole.Superadmin)
}
