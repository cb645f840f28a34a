// Package directory defines the storage abstraction holding account records.
// Two implementations satisfy the same contract: a mutex-guarded in-memory
// store (the default) and a gorm-backed store for persistent deployments.
package directory

import (
	"context"
	"errors"

	"github.com/userdeck/userdeck/internal/models"
)

var (
	// ErrNotFound indicates the requested account id does not exist.
	ErrNotFound = errors.New("directory: account not found")
	// ErrDuplicateUsername indicates a username collision at insertion.
	ErrDuplicateUsername = errors.New("directory: username already exists")
	// ErrDuplicateEmail indicates an email collision at insertion.
	ErrDuplicateEmail = errors.New("directory: email already exists")
)

// Directory is the storage contract for account records.
//
// Invariants every implementation must uphold:
//   - username and email are unique; Add rejects duplicates before mutating state
//   - ids increase monotonically for the directory's lifetime and are never
//     reused, even after deletion
//   - Delete is a hard removal; a deleted id is not found afterwards
//   - SetRole on an absent id returns ErrNotFound and never creates a record
//
// Email and username lookups are exact; callers normalise (trim, lowercase
// email) before calling. Search is case-insensitive substring over username or
// email, with an empty query matching everything.
type Directory interface {
	Add(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	Search(ctx context.Context, query string) ([]models.Account, error)
	Delete(ctx context.Context, id uint64) (*models.Account, error)
	SetRole(ctx context.Context, id uint64, role models.Role) (*models.Account, error)
	Stats(ctx context.Context) (models.Stats, error)
}
