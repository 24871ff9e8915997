package authtoken

import (
	"errors"
	"testing"
	"time"

	"github.com/elzpil/bookclub/pkg/domain"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	m := New("test-secret", time.Hour)
	token, err := m.Issue("alice", "user-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected user id: %s", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Fatalf("unexpected username: %s", claims.Username)
	}
	if claims.Role != string(domain.RoleAdmin) {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := New("secret-a", time.Hour).Issue("alice", "user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := New("secret-b", time.Hour).Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseReportsExpiry(t *testing.T) {
	m := New("test-secret", time.Millisecond)
	token, err := m.Issue("alice", "user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := m.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !m.IsExpired(token) {
		t.Fatalf("IsExpired should report true")
	}
}

func TestIssueRequiresUserID(t *testing.T) {
	if _, err := New("test-secret", time.Hour).Issue("alice", "", domain.RoleUser); err == nil {
		t.Fatalf("expected missing user id to fail")
	}
}

func TestExtractors(t *testing.T) {
	m := New("test-secret", time.Hour)
	token, err := m.Issue("bob", "user-2", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := m.ExtractUserID(token)
	if err != nil || id != "user-2" {
		t.Fatalf("extract user id: %q, %v", id, err)
	}
	name, err := m.ExtractUsername(token)
	if err != nil || name != "bob" {
		t.Fatalf("extract username: %q, %v", name, err)
	}
	role, err := m.ExtractRole(token)
	if err != nil || role != domain.RoleUser {
		t.Fatalf("extract role: %q, %v", role, err)
	}
}

func TestEmptySecretFallsBackToDefault(t *testing.T) {
	token, err := New("", time.Hour).Issue("alice", "user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := New(DefaultSecret, time.Hour).Parse(token); err != nil {
		t.Fatalf("default-secret manager should accept token: %v", err)
	}
}
