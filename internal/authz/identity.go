package authz

import (
	"slices"

	"github.com/erazemk/izposoja/internal/model"
)

// Identity is the authenticated caller. A nil *Identity is a guest.
type Identity struct {
	UserID int64
	Roles  []model.Role
}

// HasRole reports whether the identity holds role. Guests hold none.
func (id *Identity) HasRole(role model.Role) bool {
	return id != nil && slices.Contains(id.Roles, role)
}

// Is reports whether the identity is the given user.
func (id *Identity) Is(userID int64) bool {
	return id != nil && userID != 0 && id.UserID == userID
}
