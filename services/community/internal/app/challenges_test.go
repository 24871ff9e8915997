package app

import (
	"testing"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/pkg/domain"
)

func createChallenge(t *testing.T, a *App) domain.Challenge {
	t.Helper()
	challenge, err := a.CreateChallenge(alice, ChallengeParams{
		Name:      "summer reading",
		Goal:      10,
		StartDate: "2026-06-01",
		EndDate:   "2026-08-31",
	})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	return challenge
}

func TestCreateChallengeValidation(t *testing.T) {
	a := newTestApp(t, nil, nil)

	if _, err := a.CreateChallenge(alice, ChallengeParams{Name: "x", Goal: 0, StartDate: "2026-06-01", EndDate: "2026-08-31"}); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("zero goal should be rejected, got %v", err)
	}
	if _, err := a.CreateChallenge(alice, ChallengeParams{Name: "x", Goal: 5, StartDate: "2026-08-31", EndDate: "2026-06-01"}); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("end before start should be rejected, got %v", err)
	}
	if _, err := a.CreateChallenge(alice, ChallengeParams{Name: "x", Goal: 5, StartDate: "June 1st", EndDate: "2026-08-31"}); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("malformed date should be rejected, got %v", err)
	}
}

func TestDeleteMissingChallengeMessage(t *testing.T) {
	a := newTestApp(t, nil, nil)
	err := a.DeleteChallenge(alice, "999")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := apperr.Message(err); got != "Challenge not found with ID: 999" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestJoinChallengeOnce(t *testing.T) {
	a := newTestApp(t, nil, nil)
	challenge := createChallenge(t, a)

	participant, err := a.JoinChallenge(bob, challenge.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if participant.BooksRead != 0 {
		t.Fatalf("new participant should start at zero, got %d", participant.BooksRead)
	}
	if _, err := a.JoinChallenge(bob, challenge.ID); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("second join should conflict, got %v", err)
	}
}

func TestChallengeProgressRequiresParticipation(t *testing.T) {
	a := newTestApp(t, nil, nil)
	challenge := createChallenge(t, a)

	if _, err := a.UpdateChallengeProgress(bob, challenge.ID, 3); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("non-participant should be rejected, got %v", err)
	}
	if _, err := a.JoinChallenge(bob, challenge.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := a.UpdateChallengeProgress(bob, challenge.ID, -1); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("negative count should be rejected, got %v", err)
	}
	participant, err := a.UpdateChallengeProgress(bob, challenge.ID, 3)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if participant.BooksRead != 3 {
		t.Fatalf("progress not recorded: %d", participant.BooksRead)
	}
}

func TestUpdateChallengeOwnershipGate(t *testing.T) {
	a := newTestApp(t, nil, nil)
	challenge := createChallenge(t, a)

	name := "stolen"
	if _, err := a.UpdateChallenge(bob, challenge.ID, ChallengeUpdate{Name: &name}); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("non-creator update should fail, got %v", err)
	}
	if _, err := a.UpdateChallenge(root, challenge.ID, ChallengeUpdate{Name: &name}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestDeleteChallengeCascadesParticipants(t *testing.T) {
	a := newTestApp(t, nil, nil)
	challenge := createChallenge(t, a)
	if _, err := a.JoinChallenge(bob, challenge.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := a.DeleteChallenge(alice, challenge.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := a.ListChallengeParticipants(challenge.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("participants should be gone with the challenge, got %v", err)
	}
}
