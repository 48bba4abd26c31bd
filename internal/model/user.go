package model

import (
	"fmt"
	"slices"
	"time"
)

// Role is a capability tag. A user may hold several at once.
type Role string

// Roles. Owner and tenant are capabilities, not relationships to a
// particular item or loan.
const (
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
	RoleTenant Role = "tenant"
	RoleUser   Role = "user"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// User represents an authentication user.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Roles        []Role     `json:"roles"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role Role) bool {
	return slices.Contains(u.Roles, role)
}

// ValidRole reports whether role is a known role tag.
func ValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleOwner, RoleTenant, RoleUser:
		return true
	}
	return false
}

// ParseRoles converts role names to a deduplicated, sorted role set.
// Unknown names are an error.
func ParseRoles(names []string) ([]Role, error) {
	roles := make([]Role, 0, len(names))
	for _, n := range names {
		r := Role(n)
		if !ValidRole(r) {
			return nil, fmt.Errorf("invalid role %q", n)
		}
		if !slices.Contains(roles, r) {
			roles = append(roles, r)
		}
	}
	slices.Sort(roles)
	return roles, nil
}

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
