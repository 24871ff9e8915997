package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/services/community/internal/app"
)

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	switch r.Method {
	case http.MethodGet:
		events, err := s.app.ListEvents(r.URL.Query().Get("groupId"))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": events, "count": len(events)})
	case http.MethodPost:
		var req eventRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		event, err := s.app.CreateEvent(caller, app.EventParams{
			GroupID:     req.GroupID,
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			EventTime:   req.EventTime,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, event)
	default:
		methodNotAllowed(w)
	}
}

// /events/{id} or /events/{id}/{rsvp|participants}
func (s *Server) handleEventByID(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	id, rest := splitResource(r.URL.Path, "/events/")
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if rest != "" {
		switch rest {
		case "rsvp":
			s.handleRSVP(w, r, caller, id)
		case "participants":
			s.handleEventParticipants(w, r, id)
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		event, err := s.app.GetEvent(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	case http.MethodPatch:
		var req updateEventRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		event, err := s.app.UpdateEvent(caller, id, app.EventUpdate{
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			EventTime:   req.EventTime,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	case http.MethodDelete:
		if err := s.app.DeleteEvent(caller, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleRSVP(w http.ResponseWriter, r *http.Request, caller authz.Caller, eventID string) {
	switch r.Method {
	case http.MethodPost:
		var req rsvpRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		participant, err := s.app.RSVP(caller, eventID, req.Status)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, participant)
	case http.MethodDelete:
		if err := s.app.CancelRSVP(caller, eventID); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleEventParticipants(w http.ResponseWriter, r *http.Request, eventID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	participants, err := s.app.ListEventParticipants(eventID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": participants, "count": len(participants)})
}

type eventRequest struct {
	GroupID     string    `json:"groupId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	EventTime   time.Time `json:"eventTime"`
}

type updateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	EventTime   *time.Time `json:"eventTime"`
}

type rsvpRequest struct {
	Status string `json:"status"`
}
