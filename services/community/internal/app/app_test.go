package app

import (
	"context"
	"errors"
	"testing"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/pkg/domain"
	"github.com/elzpil/bookclub/pkg/probe"
	"github.com/elzpil/bookclub/services/community/internal/store"
)

var (
	alice = authz.Caller{UserID: "u1", Username: "alice", Role: domain.RoleUser}
	bob   = authz.Caller{UserID: "u2", Username: "bob", Role: domain.RoleUser}
	root  = authz.Caller{UserID: "u9", Username: "root", Role: domain.RoleAdmin}
)

type stubProbe struct {
	presence probe.Presence
	err      error
}

func (s stubProbe) Exists(context.Context, string) (probe.Presence, error) {
	return s.presence, s.err
}

func newTestApp(t *testing.T, books, users ExistenceProbe) *App {
	t.Helper()
	if books == nil {
		books = stubProbe{presence: probe.Present}
	}
	if users == nil {
		users = stubProbe{presence: probe.Present}
	}
	a, err := New(Config{Store: store.NewMemoryStore(), Books: books, Users: users})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func createGroup(t *testing.T, a *App, caller authz.Caller, name string) domain.Group {
	t.Helper()
	group, err := a.CreateGroup(caller, GroupParams{Name: name})
	if err != nil {
		t.Fatalf("create group %q: %v", name, err)
	}
	return group
}

func TestCreateGroupEnrollsCreatorAsAdmin(t *testing.T) {
	a := newTestApp(t, nil, nil)
	group := createGroup(t, a, alice, "readers")
	members, err := a.ListMembers(group.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != alice.UserID || members[0].Role != domain.MemberAdmin {
		t.Fatalf("creator membership wrong: %+v", members)
	}
}

func TestJoinAndLeaveGroup(t *testing.T) {
	a := newTestApp(t, nil, nil)
	group := createGroup(t, a, alice, "readers")

	if _, err := a.JoinGroup(bob, group.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := a.JoinGroup(bob, group.ID); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("second join should conflict, got %v", err)
	}
	if err := a.LeaveGroup(alice, group.ID); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("creator leave should be rejected, got %v", err)
	}
	if err := a.LeaveGroup(bob, group.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := a.LeaveGroup(bob, group.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("second leave should be not found, got %v", err)
	}
}

func TestAddMemberProbesUsersService(t *testing.T) {
	a := newTestApp(t, nil, stubProbe{presence: probe.Absent})
	group := createGroup(t, a, alice, "readers")

	_, err := a.AddMember(context.Background(), alice, group.ID, "ghost", domain.MemberMember)
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("absent user should be rejected, got %v", err)
	}

	down := newTestApp(t, nil, stubProbe{presence: probe.Unknown, err: errors.New("connection refused")})
	group2 := createGroup(t, down, alice, "readers")
	_, err = down.AddMember(context.Background(), alice, group2.ID, "u3", domain.MemberMember)
	if apperr.KindOf(err) != apperr.KindUnavailable {
		t.Fatalf("probe failure should read unavailable, got %v", err)
	}
}

func TestAddMemberRequiresModerator(t *testing.T) {
	a := newTestApp(t, nil, nil)
	group := createGroup(t, a, alice, "readers")
	if _, err := a.JoinGroup(bob, group.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	_, err := a.AddMember(context.Background(), bob, group.ID, "u3", domain.MemberMember)
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("regular member must not add members, got %v", err)
	}
	if _, err := a.AddMember(context.Background(), root, group.ID, "u3", domain.MemberMember); err != nil {
		t.Fatalf("platform admin add: %v", err)
	}
}

func TestDiscussionSingleReference(t *testing.T) {
	a := newTestApp(t, nil, nil)
	group := createGroup(t, a, alice, "readers")

	_, err := a.CreateDiscussion(context.Background(), alice, DiscussionParams{
		GroupID: group.ID,
		BookID:  "b1",
		Title:   "two parents",
	})
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("multiple references should be rejected, got %v", err)
	}
}

func TestDiscussionBookProbe(t *testing.T) {
	absent := newTestApp(t, stubProbe{presence: probe.Absent}, nil)
	_, err := absent.CreateDiscussion(context.Background(), alice, DiscussionParams{BookID: "ghost", Title: "t"})
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("absent book should be rejected, got %v", err)
	}

	down := newTestApp(t, stubProbe{presence: probe.Unknown, err: errors.New("timeout")}, nil)
	_, err = down.CreateDiscussion(context.Background(), alice, DiscussionParams{BookID: "b1", Title: "t"})
	if apperr.KindOf(err) != apperr.KindUnavailable {
		t.Fatalf("unreachable books service should read unavailable, got %v", err)
	}

	ok := newTestApp(t, stubProbe{presence: probe.Present}, nil)
	if _, err := ok.CreateDiscussion(context.Background(), alice, DiscussionParams{BookID: "b1", Title: "t"}); err != nil {
		t.Fatalf("present book: %v", err)
	}
}

func TestListDiscussionsFilterPrecedence(t *testing.T) {
	a := newTestApp(t, nil, nil)
	group := createGroup(t, a, alice, "readers")
	ctx := context.Background()

	if _, err := a.CreateDiscussion(ctx, alice, DiscussionParams{GroupID: group.ID, Title: "in group"}); err != nil {
		t.Fatalf("group discussion: %v", err)
	}
	if _, err := a.CreateDiscussion(ctx, alice, DiscussionParams{BookID: "b1", Title: "about book"}); err != nil {
		t.Fatalf("book discussion: %v", err)
	}
	if _, err := a.CreateDiscussion(ctx, alice, DiscussionParams{Title: "free-floating"}); err != nil {
		t.Fatalf("plain discussion: %v", err)
	}

	// groupId wins over bookId
	discussions, err := a.ListDiscussions(group.ID, "b1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(discussions) != 1 || discussions[0].GroupID != group.ID {
		t.Fatalf("group filter should apply alone, got %+v", discussions)
	}

	discussions, err = a.ListDiscussions("", "b1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(discussions) != 1 || discussions[0].BookID != "b1" {
		t.Fatalf("book filter should apply alone, got %+v", discussions)
	}

	discussions, err = a.ListDiscussions("", "", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(discussions) != 3 {
		t.Fatalf("expected all discussions, got %d", len(discussions))
	}
}

func TestCommentsFollowDiscussion(t *testing.T) {
	a := newTestApp(t, nil, nil)
	discussion, err := a.CreateDiscussion(context.Background(), alice, DiscussionParams{Title: "hello"})
	if err != nil {
		t.Fatalf("discussion: %v", err)
	}
	comment, err := a.CreateComment(bob, discussion.ID, "first!")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if err := a.DeleteComment(alice, comment.ID); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("non-author non-admin delete should fail, got %v", err)
	}
	if err := a.DeleteDiscussion(alice, discussion.ID); err != nil {
		t.Fatalf("delete discussion: %v", err)
	}
	if _, err := a.ListComments(discussion.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("comments should be gone with the discussion, got %v", err)
	}
}
