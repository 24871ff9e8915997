package app

import (
	"strings"
	"testing"
	"time"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/internal/authtoken"
	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/pkg/domain"
	"github.com/elzpil/bookclub/services/users/internal/store"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(Config{
		Store:  store.NewMemoryStore(),
		Tokens: authtoken.New("test-secret", time.Hour),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func register(t *testing.T, a *App, email, username string) domain.User {
	t.Helper()
	user, _, err := a.Register(RegisterParams{
		Email:    email,
		Username: username,
		Password: "password123",
		Name:     "Test User",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func asCaller(u domain.User) authz.Caller {
	return authz.Caller{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func TestRegisterIssuesTokenAndNormalizesEmail(t *testing.T) {
	a := newTestApp(t)
	user, token, err := a.Register(RegisterParams{
		Email:    "  Alice@Example.COM ",
		Username: "alice",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("new accounts must start as user, got %s", user.Role)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	a := newTestApp(t)
	register(t, a, "alice@example.com", "alice")
	_, _, err := a.Register(RegisterParams{
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "password123",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	a := newTestApp(t)
	_, _, err := a.Register(RegisterParams{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "short",
	})
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestLoginWithBadCredentials(t *testing.T) {
	a := newTestApp(t)
	register(t, a, "alice@example.com", "alice")

	if _, _, err := a.Login("alice@example.com", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, _, err := a.Login("alice@example.com", "wrong-password")
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("expected invalid argument for wrong password, got %v", err)
	}
	_, _, err = a.Login("nobody@example.com", "password123")
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("expected invalid argument for unknown email, got %v", err)
	}
}

func TestGetUserNotFoundMessage(t *testing.T) {
	a := newTestApp(t)
	_, err := a.GetUser("999")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := apperr.Message(err); got != "User not found with ID: 999" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestUpdateUserOwnershipGate(t *testing.T) {
	a := newTestApp(t)
	alice := register(t, a, "alice@example.com", "alice")
	bob := register(t, a, "bob@example.com", "bob")

	name := "Hacked"
	_, err := a.UpdateUser(asCaller(bob), alice.ID, UserUpdate{Name: &name})
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	got, err := a.GetUser(alice.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name == "Hacked" {
		t.Fatalf("denied update must not change state")
	}

	admin := register(t, a, "admin@example.com", "admin")
	adminCaller := asCaller(admin)
	adminCaller.Role = domain.RoleAdmin
	if _, err := a.UpdateUser(adminCaller, alice.ID, UserUpdate{Name: &name}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestFollowRules(t *testing.T) {
	a := newTestApp(t)
	alice := register(t, a, "alice@example.com", "alice")
	bob := register(t, a, "bob@example.com", "bob")

	if _, err := a.Follow(asCaller(alice), alice.ID); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("self-follow should be rejected, got %v", err)
	}
	if _, err := a.Follow(asCaller(alice), bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	_, err := a.Follow(asCaller(alice), bob.ID)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("duplicate follow should conflict, got %v", err)
	}
	if !strings.Contains(apperr.Message(err), "already following") {
		t.Fatalf("unexpected message: %q", apperr.Message(err))
	}

	followers, err := a.Followers(bob.ID)
	if err != nil {
		t.Fatalf("followers: %v", err)
	}
	if len(followers) != 1 || followers[0].UserID != alice.ID {
		t.Fatalf("unexpected followers: %+v", followers)
	}

	if err := a.Unfollow(asCaller(alice), bob.ID); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if err := a.Unfollow(asCaller(alice), bob.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("second unfollow should be not found, got %v", err)
	}
}

func TestDeleteUserRemovesFollowerEdges(t *testing.T) {
	a := newTestApp(t)
	alice := register(t, a, "alice@example.com", "alice")
	bob := register(t, a, "bob@example.com", "bob")
	if _, err := a.Follow(asCaller(alice), bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := a.DeleteUser(asCaller(bob), bob.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	following, err := a.Following(alice.ID)
	if err != nil {
		t.Fatalf("following: %v", err)
	}
	if len(following) != 0 {
		t.Fatalf("edges should be gone, got %+v", following)
	}
}
