package models

import (
	"fmt"
	"time"
)

// Role is the closed set of authority tiers an account can hold.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Roles lists every valid role, lowest authority first.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleSuperadmin}
}

// ParseRole converts a wire string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSuperadmin:
		return RoleSuperadmin, nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

// Valid reports whether the role is one of the three known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// Account describes a directory entry. The password hash never serialises;
// listings and search results are safe to hand to the presentation layer as-is.
type Account struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Role         Role   `gorm:"type:text;not null;default:user" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is the trimmed shape returned after destructive operations.
type Summary struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Summary returns the id/username/role triple for the account.
func (a Account) Summary() Summary {
	return Summary{ID: a.ID, Username: a.Username, Role: a.Role}
}

// Stats is a derived read over the directory population.
type Stats struct {
	Total  int       `json:"total"`
	ByRole RoleStats `json:"byRole"`
}

// RoleStats partitions the account count by role.
type RoleStats struct {
	User       int `json:"user"`
	Admin      int `json:"admin"`
	Superadmin int `json:"superadmin"`
}

// Add increments the partition for the given role.
func (s *Stats) Add(role Role) {
	s.Total++
	switch role {
	case RoleAdmin:
		s.ByRole.Admin++
	case RoleSuperadmin:
		s.ByRole.Superadmin++
	default:
		s.ByRole.User++
	}
}
