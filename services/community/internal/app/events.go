package app

import (
	"strings"
	"time"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/internal/util"
	"github.com/elzpil/bookclub/pkg/domain"
)

// EventParams carries the event creation payload.
type EventParams struct {
	GroupID     string
	Title       string
	Description string
	Location    string
	EventTime   time.Time
}

// CreateEvent schedules an event in a group. The caller must be a member.
func (a *App) CreateEvent(caller authz.Caller, p EventParams) (domain.Event, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return domain.Event{}, apperr.InvalidArgument("event title is required")
	}
	if p.EventTime.IsZero() {
		return domain.Event{}, apperr.InvalidArgument("event time is required")
	}
	group, err := a.GetGroup(p.GroupID)
	if err != nil {
		return domain.Event{}, err
	}
	if err := a.requireMember(caller, group); err != nil {
		return domain.Event{}, err
	}
	event := domain.Event{
		ID:          util.NewID(),
		GroupID:     p.GroupID,
		CreatorID:   caller.UserID,
		Title:       title,
		Description: strings.TrimSpace(p.Description),
		Location:    strings.TrimSpace(p.Location),
		EventTime:   p.EventTime.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.SaveEvent(event); err != nil {
		return domain.Event{}, apperr.Internal("save event", err)
	}
	return event, nil
}

// GetEvent returns one event by ID.
func (a *App) GetEvent(id string) (domain.Event, error) {
	event, ok, err := a.store.GetEvent(id)
	if err != nil {
		return domain.Event{}, apperr.Internal("fetch event", err)
	}
	if !ok {
		return domain.Event{}, apperr.NotFound("Event not found with ID: %s", id)
	}
	return event, nil
}

// ListEvents returns events, optionally scoped to one group.
func (a *App) ListEvents(groupID string) ([]domain.Event, error) {
	if groupID != "" {
		if _, err := a.GetGroup(groupID); err != nil {
			return nil, err
		}
	}
	events, err := a.store.ListEvents(groupID)
	if err != nil {
		return nil, apperr.Internal("list events", err)
	}
	return events, nil
}

// EventUpdate is a partial update payload; nil fields are left unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Location    *string
	EventTime   *time.Time
}

// UpdateEvent applies a partial update, gated to the event creator or an
// admin.
func (a *App) UpdateEvent(caller authz.Caller, id string, update EventUpdate) (domain.Event, error) {
	event, err := a.GetEvent(id)
	if err != nil {
		return domain.Event{}, err
	}
	if err := authz.OwnerOrAdmin(caller, event.CreatorID); err != nil {
		return domain.Event{}, err
	}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return domain.Event{}, apperr.InvalidArgument("event title is required")
		}
		event.Title = title
	}
	if update.Description != nil {
		event.Description = strings.TrimSpace(*update.Description)
	}
	if update.Location != nil {
		event.Location = strings.TrimSpace(*update.Location)
	}
	if update.EventTime != nil {
		if update.EventTime.IsZero() {
			return domain.Event{}, apperr.InvalidArgument("event time is required")
		}
		event.EventTime = update.EventTime.UTC()
	}
	if err := a.store.SaveEvent(event); err != nil {
		return domain.Event{}, apperr.Internal("update event", err)
	}
	return event, nil
}

// DeleteEvent removes an event and its RSVPs, gated to the creator or an
// admin.
func (a *App) DeleteEvent(caller authz.Caller, id string) error {
	event, err := a.GetEvent(id)
	if err != nil {
		return err
	}
	if err := authz.OwnerOrAdmin(caller, event.CreatorID); err != nil {
		return err
	}
	if err := a.store.DeleteEvent(id); err != nil {
		return apperr.Internal("delete event", err)
	}
	return nil
}

// RSVP records or revises the caller's attendance status for an event.
// Repeating the call updates the status rather than conflicting.
func (a *App) RSVP(caller authz.Caller, eventID, status string) (domain.EventParticipant, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return domain.EventParticipant{}, apperr.InvalidArgument("rsvp status is required")
	}
	if _, err := a.GetEvent(eventID); err != nil {
		return domain.EventParticipant{}, err
	}
	participant := domain.EventParticipant{
		ID:        util.NewID(),
		EventID:   eventID,
		UserID:    caller.UserID,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.UpsertEventParticipant(participant); err != nil {
		return domain.EventParticipant{}, apperr.Internal("save rsvp", err)
	}
	return participant, nil
}

// CancelRSVP withdraws the caller's attendance record.
func (a *App) CancelRSVP(caller authz.Caller, eventID string) error {
	if _, err := a.GetEvent(eventID); err != nil {
		return err
	}
	removed, err := a.store.DeleteEventParticipant(eventID, caller.UserID)
	if err != nil {
		return apperr.Internal("delete rsvp", err)
	}
	if !removed {
		return apperr.NotFound("no rsvp for this event")
	}
	return nil
}

// ListEventParticipants returns an event's RSVPs.
func (a *App) ListEventParticipants(eventID string) ([]domain.EventParticipant, error) {
	if _, err := a.GetEvent(eventID); err != nil {
		return nil, err
	}
	participants, err := a.store.ListEventParticipants(eventID)
	if err != nil {
		return nil, apperr.Internal("list rsvps", err)
	}
	return participants, nil
}

// requireMember passes for group members and platform admins.
func (a *App) requireMember(caller authz.Caller, group domain.Group) error {
	if caller.IsAdmin() {
		return nil
	}
	_, ok, err := a.store.GetMembership(group.ID, caller.UserID)
	if err != nil {
		return apperr.Internal("fetch membership", err)
	}
	if !ok {
		return apperr.Unauthorized("must be a member of this group")
	}
	return nil
}
