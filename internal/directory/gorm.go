package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/userdeck/userdeck/internal/models"
)

// Gorm is the database-backed Directory. It satisfies the same contract as
// Memory; id assignment stays in-process so ids are never reused even when the
// underlying database would recycle a primary key after deletion.
type Gorm struct {
	db *gorm.DB

	mu     sync.Mutex
	nextID uint64
}

// NewGorm wraps an open gorm handle. The id counter resumes past the highest
// id ever stored.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if db == nil {
		return nil, errors.New("directory: db is required")
	}

	var maxID *uint64
	if err := db.Model(&models.Account{}).Select("MAX(id)").Scan(&maxID).Error; err != nil {
		return nil, fmt.Errorf("directory: read max id: %w", err)
	}

	next := uint64(1)
	if maxID != nil {
		next = *maxID + 1
	}

	return &Gorm{db: db, nextID: next}, nil
}

// Add inserts the account after checking uniqueness inside one transaction.
func (g *Gorm) Add(ctx context.Context, account *models.Account) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Email first, matching the conflict precedence of the memory backend.
		var count int64
		if err := tx.Model(&models.Account{}).Where("email = ?", account.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("directory: check email: %w", err)
		}
		if count > 0 {
			return ErrDuplicateEmail
		}

		if err := tx.Model(&models.Account{}).Where("username = ?", account.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("directory: check username: %w", err)
		}
		if count > 0 {
			return ErrDuplicateUsername
		}

		account.ID = g.nextID
		if err := tx.Create(account).Error; err != nil {
			account.ID = 0
			return fmt.Errorf("directory: create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	g.nextID = account.ID + 1
	return nil
}

// GetByID loads an account by id.
func (g *Gorm) GetByID(ctx context.Context, id uint64) (*models.Account, error) {
	return g.getOne(ctx, "id = ?", id)
}

// GetByEmail loads an account by exact email.
func (g *Gorm) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return g.getOne(ctx, "email = ?", email)
}

// GetByUsername loads an account by exact username.
func (g *Gorm) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return g.getOne(ctx, "username = ?", username)
}

// List returns all accounts ordered by id.
func (g *Gorm) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := g.db.WithContext(ctx).Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("directory: list accounts: %w", err)
	}
	return accounts, nil
}

// Search filters by case-insensitive substring over username or email.
func (g *Gorm) Search(ctx context.Context, query string) ([]models.Account, error) {
	q := g.db.WithContext(ctx).Order("id")
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		pattern := "%" + strings.ToLower(trimmed) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var accounts []models.Account
	if err := q.Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("directory: search accounts: %w", err)
	}
	return accounts, nil
}

// Delete hard-removes the account and returns the removed record. Load and
// removal run in one transaction so two racing deletes of the same id cannot
// both report success.
func (g *Gorm) Delete(ctx context.Context, id uint64) (*models.Account, error) {
	var account models.Account
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&account, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("directory: load account: %w", err)
		}

		result := tx.Delete(&models.Account{}, id)
		if result.Error != nil {
			return fmt.Errorf("directory: delete account: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// SetRole updates the role column of an existing account.
func (g *Gorm) SetRole(ctx context.Context, id uint64, role models.Role) (*models.Account, error) {
	result := g.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return nil, fmt.Errorf("directory: set role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return g.GetByID(ctx, id)
}

// Stats counts accounts grouped by role.
func (g *Gorm) Stats(ctx context.Context) (models.Stats, error) {
	type roleCount struct {
		Role  models.Role
		Count int
	}

	var rows []roleCount
	err := g.db.WithContext(ctx).
		Model(&models.Account{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return models.Stats{}, fmt.Errorf("directory: count accounts: %w", err)
	}

	var stats models.Stats
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Role {
		case models.RoleAdmin:
			stats.ByRole.Admin += row.Count
		case models.RoleSuperadmin:
			stats.ByRole.Superadmin += row.Count
		default:
			stats.ByRole.User += row.Count
		}
	}
	return stats, nil
}

func (g *Gorm) getOne(ctx context.Context, cond string, arg any) (*models.Account, error) {
	var account models.Account
	err := g.db.WithContext(ctx).First(&account, cond, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: load account: %w", err)
	}
	return &account, nil
}
