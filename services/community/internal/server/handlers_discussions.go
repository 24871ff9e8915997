package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/services/community/internal/app"
)

func (s *Server) handleDiscussions(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		discussions, err := s.app.ListDiscussions(q.Get("groupId"), q.Get("bookId"), q.Get("challengeId"))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": discussions, "count": len(discussions)})
	case http.MethodPost:
		var req discussionRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		discussion, err := s.app.CreateDiscussion(r.Context(), caller, app.DiscussionParams{
			GroupID:     req.GroupID,
			BookID:      req.BookID,
			ChallengeID: req.ChallengeID,
			Title:       req.Title,
			Content:     req.Content,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, discussion)
	default:
		methodNotAllowed(w)
	}
}

// /discussions/{id} or /discussions/{id}/comments
func (s *Server) handleDiscussionByID(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	id, rest := splitResource(r.URL.Path, "/discussions/")
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if rest != "" {
		if rest == "comments" {
			s.handleComments(w, r, caller, id)
			return
		}
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		discussion, err := s.app.GetDiscussion(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, discussion)
	case http.MethodPatch:
		var req updateDiscussionRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		discussion, err := s.app.UpdateDiscussion(caller, id, app.DiscussionUpdate{Title: req.Title, Content: req.Content})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, discussion)
	case http.MethodDelete:
		if err := s.app.DeleteDiscussion(caller, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request, caller authz.Caller, discussionID string) {
	switch r.Method {
	case http.MethodGet:
		comments, err := s.app.ListComments(discussionID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": comments, "count": len(comments)})
	case http.MethodPost:
		var req commentRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		comment, err := s.app.CreateComment(caller, discussionID, req.Content)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, comment)
	default:
		methodNotAllowed(w)
	}
}

// /comments/{id}
func (s *Server) handleCommentByID(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	id := strings.TrimPrefix(r.URL.Path, "/comments/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req commentRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		comment, err := s.app.UpdateComment(caller, id, req.Content)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, comment)
	case http.MethodDelete:
		if err := s.app.DeleteComment(caller, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

type discussionRequest struct {
	GroupID     string `json:"groupId"`
	BookID      string `json:"bookId"`
	ChallengeID string `json:"challengeId"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}

type updateDiscussionRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type commentRequest struct {
	Content string `json:"content"`
}
