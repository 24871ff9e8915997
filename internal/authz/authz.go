// Package authz holds the single ownership/authorization check shared by every
// service: a mutating operation is allowed for the resource owner or an admin.
package authz

import (
	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/pkg/domain"
)

// Caller is the authenticated identity resolved from a bearer token.
type Caller struct {
	UserID   string
	Username string
	Role     domain.UserRole
}

// IsAdmin reports whether the caller carries the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}

// OwnerOrAdmin allows the resource owner or an admin.
func OwnerOrAdmin(caller Caller, ownerID string) error {
	if caller.UserID == ownerID || caller.IsAdmin() {
		return nil
	}
	return apperr.Unauthorized("not allowed to modify this resource")
}

// AdminOnly allows only admins.
func AdminOnly(caller Caller) error {
	if caller.IsAdmin() {
		return nil
	}
	return apperr.Unauthorized("admin role required")
}
