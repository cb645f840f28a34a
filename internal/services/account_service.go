package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/userdeck/userdeck/internal/directory"
	"github.com/userdeck/userdeck/internal/models"
	"github.com/userdeck/userdeck/internal/policy"
	"github.com/userdeck/userdeck/pkg/crypto"
	apperrors "github.com/userdeck/userdeck/pkg/errors"
	"github.com/userdeck/userdeck/pkg/metrics"
)

// Policy denials surfaced to API consumers. Messages match what the dashboard
// displays next to the affected row.
var (
	ErrCannotDeleteSelf     = apperrors.NewForbidden("Cannot delete your own account")
	ErrAdminDeleteScope     = apperrors.NewForbidden(`Admin can only delete users with role "user"`)
	ErrCannotDeleteSuper    = apperrors.NewForbidden("Cannot delete Super Admin")
	ErrCannotChangeOwnRole  = apperrors.NewForbidden("Cannot change your own role")
	ErrCannotChangeSuper    = apperrors.NewForbidden("Cannot change Super Admin role")
	ErrInvalidAssignedRole  = apperrors.NewValidation(`Invalid role. Only "user" and "admin" are allowed`)
	ErrCreateNotPermitted   = apperrors.NewForbidden("Only admins can create accounts")
	ErrAccountNotFound      = apperrors.ErrNotFound.WithMessage("User not found")
	ErrMissingRequiredField = apperrors.NewValidation("All fields are required")
)

// CreateAccountInput describes an admin- or superadmin-initiated creation.
// Role is the requested role; the policy decides what is actually assigned.
type CreateAccountInput struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// RegisterInput describes self-service registration. Registration always
// produces a plain user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AccountService coordinates the permission policy and the directory. All
// role-sensitive decisions are delegated to the policy package; this layer
// adds normalisation, hashing, and error mapping.
type AccountService struct {
	dir directory.Directory
}

// NewAccountService constructs an AccountService.
func NewAccountService(dir directory.Directory) (*AccountService, error) {
	if dir == nil {
		return nil, errors.New("account service: directory is required")
	}
	return &AccountService{dir: dir}, nil
}

// Create provisions a new account on behalf of an actor. The assigned role is
// resolved by the policy: admins always create users, superadmins may create
// users or admins, and a superadmin request never escalates beyond admin.
func (s *AccountService) Create(ctx context.Context, actor models.Account, input CreateAccountInput) (*models.Account, error) {
	if !policy.CanCreate(actor.Role) {
		metrics.PolicyDecisions.WithLabelValues("create", "deny").Inc()
		return nil, ErrCreateNotPermitted
	}
	metrics.PolicyDecisions.WithLabelValues("create", "allow").Inc()

	username, email, err := normaliseIdentity(input.Username, input.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, ErrMissingRequiredField
	}

	assigned := policy.ResolveCreationRole(actor.Role, input.Role)

	return s.insert(ctx, username, email, input.Password, assigned)
}

// Register creates a self-service account with role user.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*models.Account, error) {
	username, email, err := normaliseIdentity(input.Username, input.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, ErrMissingRequiredField
	}

	return s.insert(ctx, username, email, input.Password, models.RoleUser)
}

// Authenticate verifies credentials against the directory. The identifier may
// be a username or an email address.
func (s *AccountService) Authenticate(ctx context.Context, identifier, password string) (*models.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	account, err := s.dir.GetByUsername(ctx, identifier)
	if errors.Is(err, directory.ErrNotFound) {
		account, err = s.dir.GetByEmail(ctx, strings.ToLower(identifier))
	}
	if errors.Is(err, directory.ErrNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("account service: lookup account: %w", err)
	}

	if !crypto.VerifyPassword(account.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return account, nil
}

// GetByID loads one account.
func (s *AccountService) GetByID(ctx context.Context, id uint64) (*models.Account, error) {
	account, err := s.dir.GetByID(ctx, id)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account service: get account: %w", err)
	}
	return account, nil
}

// List returns every account.
func (s *AccountService) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.dir.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("account service: list accounts: %w", err)
	}
	return accounts, nil
}

// Search returns accounts whose username or email contains the query.
func (s *AccountService) Search(ctx context.Context, query string) ([]models.Account, error) {
	accounts, err := s.dir.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("account service: search accounts: %w", err)
	}
	return accounts, nil
}

// Stats returns the population counters.
func (s *AccountService) Stats(ctx context.Context) (models.Stats, error) {
	stats, err := s.dir.Stats(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("account service: stats: %w", err)
	}
	return stats, nil
}

// Delete removes the target account if the policy allows it. The self-delete
// check runs before the target lookup, mirroring the API contract: acting on
// yourself is 403 even when the id would otherwise be 404.
func (s *AccountService) Delete(ctx context.Context, actor models.Account, id uint64) (*models.Account, error) {
	if actor.ID == id {
		metrics.PolicyDecisions.WithLabelValues("delete", "deny").Inc()
		return nil, ErrCannotDeleteSelf
	}

	target, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanDelete(actor, *target) {
		metrics.PolicyDecisions.WithLabelValues("delete", "deny").Inc()
		if actor.Role == models.RoleAdmin {
			return nil, ErrAdminDeleteScope
		}
		if target.Role == models.RoleSuperadmin {
			return nil, ErrCannotDeleteSuper
		}
		return nil, apperrors.ErrForbidden
	}
	metrics.PolicyDecisions.WithLabelValues("delete", "allow").Inc()

	deleted, err := s.dir.Delete(ctx, id)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account service: delete account: %w", err)
	}
	return deleted, nil
}

// ChangeRole assigns newRole to the target if the policy allows it. Assigning
// the current role short-circuits the write but the eligibility check still
// runs first.
func (s *AccountService) ChangeRole(ctx context.Context, actor models.Account, id uint64, newRole models.Role) (*models.Account, error) {
	if !policy.AssignableRole(newRole) {
		return nil, ErrInvalidAssignedRole
	}

	if actor.ID == id {
		metrics.PolicyDecisions.WithLabelValues("change_role", "deny").Inc()
		return nil, ErrCannotChangeOwnRole
	}

	target, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanChangeRole(actor, *target) {
		metrics.PolicyDecisions.WithLabelValues("change_role", "deny").Inc()
		if target.Role == models.RoleSuperadmin {
			return nil, ErrCannotChangeSuper
		}
		return nil, apperrors.ErrForbidden
	}
	metrics.PolicyDecisions.WithLabelValues("change_role", "allow").Inc()

	if target.Role == newRole {
		return target, nil
	}

	updated, err := s.dir.SetRole(ctx, id, newRole)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account service: set role: %w", err)
	}
	return updated, nil
}

func (s *AccountService) insert(ctx context.Context, username, email, password string, role models.Role) (*models.Account, error) {
	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("account service: hash password: %w", err)
	}

	account := &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}

	switch err := s.dir.Add(ctx, account); {
	case errors.Is(err, directory.ErrDuplicateEmail):
		return nil, apperrors.NewDuplicateKey("Email")
	case errors.Is(err, directory.ErrDuplicateUsername):
		return nil, apperrors.NewDuplicateKey("Username")
	case err != nil:
		return nil, fmt.Errorf("account service: add account: %w", err)
	}

	return account, nil
}

// normaliseIdentity trims both fields and lowercases the email, so directory
// lookups stay exact-match.
func normaliseIdentity(username, email string) (string, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" {
		return "", "", ErrMissingRequiredField
	}
	return username, email, nil
}
