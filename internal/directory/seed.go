package directory

import (
	"context"
	"fmt"

	"github.com/userdeck/userdeck/internal/models"
	"github.com/userdeck/userdeck/pkg/crypto"
)

type seedAccount struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// Bootstrap accounts created on first start. The superadmin is the only way
// into the system initially; the rest exist so each dashboard has something to
// show. Operators are expected to rotate these passwords immediately.
var seedAccounts = []seedAccount{
	{"superadmin", "superadmin@example.com", "superadmin123", models.RoleSuperadmin},
	{"admin", "admin@example.com", "admin123", models.RoleAdmin},
	{"user1", "user1@example.com", "user123", models.RoleUser},
	{"user2", "user2@example.com", "user123", models.RoleUser},
}

// Seed populates an empty directory with the bootstrap accounts. A directory
// that already holds records is left untouched.
func Seed(ctx context.Context, dir Directory) (int, error) {
	existing, err := dir.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("directory: seed: list: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, seed := range seedAccounts {
		hashed, err := crypto.HashPassword(seed.Password)
		if err != nil {
			return 0, fmt.Errorf("directory: seed: hash password: %w", err)
		}

		account := &models.Account{
			Username:     seed.Username,
			Email:        seed.Email,
			PasswordHash: hashed,
			Role:         seed.Role,
		}
		if err := dir.Add(ctx, account); err != nil {
			return 0, fmt.Errorf("directory: seed %q: %w", seed.Username, err)
		}
	}

	return len(seedAccounts), nil
}
