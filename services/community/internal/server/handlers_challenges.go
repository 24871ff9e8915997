package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/services/community/internal/app"
)

func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	switch r.Method {
	case http.MethodGet:
		challenges, err := s.app.ListChallenges()
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": challenges, "count": len(challenges)})
	case http.MethodPost:
		var req challengeRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		challenge, err := s.app.CreateChallenge(caller, app.ChallengeParams{
			Name:        req.Name,
			Description: req.Description,
			Goal:        req.Goal,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, challenge)
	default:
		methodNotAllowed(w)
	}
}

// /challenges/{id} or /challenges/{id}/{join|leave|progress|participants}
func (s *Server) handleChallengeByID(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	id, rest := splitResource(r.URL.Path, "/challenges/")
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if rest != "" {
		switch rest {
		case "join":
			s.handleJoinChallenge(w, r, caller, id)
		case "leave":
			s.handleLeaveChallenge(w, r, caller, id)
		case "progress":
			s.handleChallengeProgress(w, r, caller, id)
		case "participants":
			s.handleChallengeParticipants(w, r, id)
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		challenge, err := s.app.GetChallenge(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, challenge)
	case http.MethodPatch:
		var req updateChallengeRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		challenge, err := s.app.UpdateChallenge(caller, id, app.ChallengeUpdate{
			Name:        req.Name,
			Description: req.Description,
			Goal:        req.Goal,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, challenge)
	case http.MethodDelete:
		if err := s.app.DeleteChallenge(caller, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleJoinChallenge(w http.ResponseWriter, r *http.Request, caller authz.Caller, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	participant, err := s.app.JoinChallenge(caller, id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, participant)
}

func (s *Server) handleLeaveChallenge(w http.ResponseWriter, r *http.Request, caller authz.Caller, id string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.app.LeaveChallenge(caller, id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (s *Server) handleChallengeProgress(w http.ResponseWriter, r *http.Request, caller authz.Caller, id string) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req challengeProgressRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	participant, err := s.app.UpdateChallengeProgress(caller, id, req.BooksRead)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

func (s *Server) handleChallengeParticipants(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	participants, err := s.app.ListChallengeParticipants(id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": participants, "count": len(participants)})
}

type challengeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Goal        int    `json:"goal"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type updateChallengeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Goal        *int    `json:"goal"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
}

type challengeProgressRequest struct {
	BooksRead int `json:"booksRead"`
}
