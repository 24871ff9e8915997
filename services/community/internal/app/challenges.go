package app

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/internal/util"
	"github.com/elzpil/bookclub/pkg/domain"
)

// ChallengeParams carries the challenge creation payload. Dates use the
// YYYY-MM-DD form.
type ChallengeParams struct {
	Name        string
	Description string
	Goal        int
	StartDate   string
	EndDate     string
}

// CreateChallenge opens a reading challenge owned by the caller.
func (a *App) CreateChallenge(caller authz.Caller, p ChallengeParams) (domain.Challenge, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return domain.Challenge{}, apperr.InvalidArgument("challenge name is required")
	}
	if p.Goal <= 0 {
		return domain.Challenge{}, apperr.InvalidArgument("goal must be a positive number of books")
	}
	start, err := parseDate(p.StartDate)
	if err != nil {
		return domain.Challenge{}, err
	}
	end, err := parseDate(p.EndDate)
	if err != nil {
		return domain.Challenge{}, err
	}
	if !time.Time(end).After(time.Time(start)) {
		return domain.Challenge{}, apperr.InvalidArgument("end date must be after start date")
	}
	challenge := domain.Challenge{
		ID:          util.NewID(),
		CreatorID:   caller.UserID,
		Name:        name,
		Description: strings.TrimSpace(p.Description),
		Goal:        p.Goal,
		StartDate:   start,
		EndDate:     end,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.SaveChallenge(challenge); err != nil {
		return domain.Challenge{}, apperr.Internal("save challenge", err)
	}
	return challenge, nil
}

// GetChallenge returns one challenge by ID.
func (a *App) GetChallenge(id string) (domain.Challenge, error) {
	challenge, ok, err := a.store.GetChallenge(id)
	if err != nil {
		return domain.Challenge{}, apperr.Internal("fetch challenge", err)
	}
	if !ok {
		return domain.Challenge{}, apperr.NotFound("Challenge not found with ID: %s", id)
	}
	return challenge, nil
}

// ListChallenges returns all challenges.
func (a *App) ListChallenges() ([]domain.Challenge, error) {
	challenges, err := a.store.ListChallenges()
	if err != nil {
		return nil, apperr.Internal("list challenges", err)
	}
	return challenges, nil
}

// ChallengeUpdate is a partial update payload; nil fields are left
// unchanged.
type ChallengeUpdate struct {
	Name        *string
	Description *string
	Goal        *int
	StartDate   *string
	EndDate     *string
}

// UpdateChallenge applies a partial update, gated to the creator or an
// admin.
func (a *App) UpdateChallenge(caller authz.Caller, id string, update ChallengeUpdate) (domain.Challenge, error) {
	challenge, err := a.GetChallenge(id)
	if err != nil {
		return domain.Challenge{}, err
	}
	if err := authz.OwnerOrAdmin(caller, challenge.CreatorID); err != nil {
		return domain.Challenge{}, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return domain.Challenge{}, apperr.InvalidArgument("challenge name is required")
		}
		challenge.Name = name
	}
	if update.Description != nil {
		challenge.Description = strings.TrimSpace(*update.Description)
	}
	if update.Goal != nil {
		if *update.Goal <= 0 {
			return domain.Challenge{}, apperr.InvalidArgument("goal must be a positive number of books")
		}
		challenge.Goal = *update.Goal
	}
	if update.StartDate != nil {
		start, err := parseDate(*update.StartDate)
		if err != nil {
			return domain.Challenge{}, err
		}
		challenge.StartDate = start
	}
	if update.EndDate != nil {
		end, err := parseDate(*update.EndDate)
		if err != nil {
			return domain.Challenge{}, err
		}
		challenge.EndDate = end
	}
	if !time.Time(challenge.EndDate).After(time.Time(challenge.StartDate)) {
		return domain.Challenge{}, apperr.InvalidArgument("end date must be after start date")
	}
	if err := a.store.SaveChallenge(challenge); err != nil {
		return domain.Challenge{}, apperr.Internal("update challenge", err)
	}
	return challenge, nil
}

// DeleteChallenge removes a challenge and its participants, gated to the
// creator or an admin. A missing ID reports not-found, not success.
func (a *App) DeleteChallenge(caller authz.Caller, id string) error {
	challenge, err := a.GetChallenge(id)
	if err != nil {
		return err
	}
	if err := authz.OwnerOrAdmin(caller, challenge.CreatorID); err != nil {
		return err
	}
	if err := a.store.DeleteChallenge(id); err != nil {
		return apperr.Internal("delete challenge", err)
	}
	return nil
}

// JoinChallenge enrolls the caller with a zero progress count.
func (a *App) JoinChallenge(caller authz.Caller, challengeID string) (domain.ChallengeParticipant, error) {
	if _, err := a.GetChallenge(challengeID); err != nil {
		return domain.ChallengeParticipant{}, err
	}
	participant := domain.ChallengeParticipant{
		ID:          util.NewID(),
		ChallengeID: challengeID,
		UserID:      caller.UserID,
		BooksRead:   0,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.SaveChallengeParticipant(participant); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ChallengeParticipant{}, apperr.Conflict("already participating in this challenge")
		}
		return domain.ChallengeParticipant{}, apperr.Internal("save participant", err)
	}
	return participant, nil
}

// LeaveChallenge withdraws the caller's participation record.
func (a *App) LeaveChallenge(caller authz.Caller, challengeID string) error {
	if _, err := a.GetChallenge(challengeID); err != nil {
		return err
	}
	removed, err := a.store.DeleteChallengeParticipant(challengeID, caller.UserID)
	if err != nil {
		return apperr.Internal("delete participant", err)
	}
	if !removed {
		return apperr.NotFound("not participating in this challenge")
	}
	return nil
}

// UpdateChallengeProgress sets the caller's books-read count.
func (a *App) UpdateChallengeProgress(caller authz.Caller, challengeID string, booksRead int) (domain.ChallengeParticipant, error) {
	if booksRead < 0 {
		return domain.ChallengeParticipant{}, apperr.InvalidArgument("books read cannot be negative")
	}
	if _, err := a.GetChallenge(challengeID); err != nil {
		return domain.ChallengeParticipant{}, err
	}
	participant, ok, err := a.store.GetChallengeParticipant(challengeID, caller.UserID)
	if err != nil {
		return domain.ChallengeParticipant{}, apperr.Internal("fetch participant", err)
	}
	if !ok {
		return domain.ChallengeParticipant{}, apperr.NotFound("not participating in this challenge")
	}
	participant.BooksRead = booksRead
	if err := a.store.UpdateChallengeParticipant(participant); err != nil {
		return domain.ChallengeParticipant{}, apperr.Internal("update participant", err)
	}
	return participant, nil
}

// ListChallengeParticipants returns a challenge's participants.
func (a *App) ListChallengeParticipants(challengeID string) ([]domain.ChallengeParticipant, error) {
	if _, err := a.GetChallenge(challengeID); err != nil {
		return nil, err
	}
	participants, err := a.store.ListChallengeParticipants(challengeID)
	if err != nil {
		return nil, apperr.Internal("list participants", err)
	}
	return participants, nil
}

// parseDate accepts a required YYYY-MM-DD date string.
func parseDate(s string) (datatypes.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return datatypes.Date{}, apperr.InvalidArgument("date is required, expected YYYY-MM-DD")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return datatypes.Date{}, apperr.InvalidArgument("invalid date %q, expected YYYY-MM-DD", s)
	}
	return datatypes.Date(t), nil
}
