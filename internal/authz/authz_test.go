package authz

import (
	"testing"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/pkg/domain"
)

func TestOwnerOrAdmin(t *testing.T) {
	owner := Caller{UserID: "u1", Role: domain.RoleUser}
	admin := Caller{UserID: "u2", Role: domain.RoleAdmin}
	other := Caller{UserID: "u3", Role: domain.RoleUser}

	if err := OwnerOrAdmin(owner, "u1"); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}
	if err := OwnerOrAdmin(admin, "u1"); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
	err := OwnerOrAdmin(other, "u1")
	if err == nil {
		t.Fatalf("non-owner should fail")
	}
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized kind, got %v", apperr.KindOf(err))
	}
}

func TestAdminOnly(t *testing.T) {
	if err := AdminOnly(Caller{UserID: "u1", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
	if err := AdminOnly(Caller{UserID: "u1", Role: domain.RoleUser}); err == nil {
		t.Fatalf("regular user should fail")
	}
}
