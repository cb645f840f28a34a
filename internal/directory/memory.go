package directory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/userdeck/userdeck/internal/models"
)

// Memory is the default in-process Directory. All mutations are serialised
// behind a single mutex so the uniqueness and counter invariants hold under
// concurrent requests.
type Memory struct {
	mu       sync.RWMutex
	accounts map[uint64]*models.Account
	nextID   uint64
}

// NewMemory constructs an empty in-memory directory. Ids start at 1.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[uint64]*models.Account),
		nextID:   1,
	}
}

// Add inserts the account, assigning the next id. The stored record is a copy;
// the caller's struct is updated with the assigned id.
func (m *Memory) Add(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Email collisions are checked first so the reported conflict is stable
	// when both keys collide with different records.
	for _, existing := range m.accounts {
		if existing.Email == account.Email {
			return ErrDuplicateEmail
		}
	}
	for _, existing := range m.accounts {
		if existing.Username == account.Username {
			return ErrDuplicateUsername
		}
	}

	account.ID = m.nextID
	m.nextID++

	stored := *account
	m.accounts[stored.ID] = &stored
	return nil
}

// GetByID returns a copy of the account with the given id.
func (m *Memory) GetByID(ctx context.Context, id uint64) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	cpy := *account
	return &cpy, nil
}

// GetByEmail returns the account with the exact email, if any.
func (m *Memory) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, account := range m.accounts {
		if account.Email == email {
			cpy := *account
			return &cpy, nil
		}
	}
	return nil, ErrNotFound
}

// GetByUsername returns the account with the exact username, if any.
func (m *Memory) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, account := range m.accounts {
		if account.Username == username {
			cpy := *account
			return &cpy, nil
		}
	}
	return nil, ErrNotFound
}

// List returns all accounts ordered by id.
func (m *Memory) List(ctx context.Context) ([]models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshot(func(*models.Account) bool { return true }), nil
}

// Search filters accounts by case-insensitive substring match on username or
// email. An empty query returns everything.
func (m *Memory) Search(ctx context.Context, query string) ([]models.Account, error) {
	needle := strings.ToLower(strings.TrimSpace(query))

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshot(func(a *models.Account) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(a.Username), needle) ||
			strings.Contains(strings.ToLower(a.Email), needle)
	}), nil
}

// Delete removes the account and returns the removed record. The freed
// username and email become reusable; the id does not.
func (m *Memory) Delete(ctx context.Context, id uint64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	delete(m.accounts, id)
	return account, nil
}

// SetRole updates the role of an existing account.
func (m *Memory) SetRole(ctx context.Context, id uint64, role models.Role) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	account.Role = role
	cpy := *account
	return &cpy, nil
}

// Stats counts the population partitioned by role.
func (m *Memory) Stats(ctx context.Context) (models.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats models.Stats
	for _, account := range m.accounts {
		stats.Add(account.Role)
	}
	return stats, nil
}

// snapshot copies matching accounts sorted by id. Callers must hold the lock.
func (m *Memory) snapshot(match func(*models.Account) bool) []models.Account {
	out := make([]models.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		if match(account) {
			out = append(out, *account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
