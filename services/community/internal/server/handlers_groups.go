package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/pkg/domain"
	"github.com/elzpil/bookclub/services/community/internal/app"
)

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	switch r.Method {
	case http.MethodGet:
		groups, err := s.app.ListGroups()
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": groups, "count": len(groups)})
	case http.MethodPost:
		var req groupRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		group, err := s.app.CreateGroup(caller, app.GroupParams{Name: req.Name, Description: req.Description})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, group)
	default:
		methodNotAllowed(w)
	}
}

// /groups/{id} or /groups/{id}/members[/{join|leave|userId}]
func (s *Server) handleGroupByID(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	id, rest := splitResource(r.URL.Path, "/groups/")
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if rest != "" {
		switch {
		case rest == "members":
			s.handleMembers(w, r, caller, id)
		case rest == "members/join":
			s.handleJoinGroup(w, r, caller, id)
		case rest == "members/leave":
			s.handleLeaveGroup(w, r, caller, id)
		case strings.HasPrefix(rest, "members/"):
			s.handleMemberByID(w, r, caller, id, strings.TrimPrefix(rest, "members/"))
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		group, err := s.app.GetGroup(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, group)
	case http.MethodPatch:
		var req updateGroupRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		group, err := s.app.UpdateGroup(caller, id, app.GroupUpdate{Name: req.Name, Description: req.Description})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, group)
	case http.MethodDelete:
		if err := s.app.DeleteGroup(caller, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request, caller authz.Caller, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	membership, err := s.app.JoinGroup(caller, id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, membership)
}

func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request, caller authz.Caller, id string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.app.LeaveGroup(caller, id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request, caller authz.Caller, groupID string) {
	switch r.Method {
	case http.MethodGet:
		members, err := s.app.ListMembers(groupID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": members, "count": len(members)})
	case http.MethodPost:
		var req addMemberRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		membership, err := s.app.AddMember(r.Context(), caller, groupID, req.UserID, domain.MemberRole(req.Role))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, membership)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleMemberByID(w http.ResponseWriter, r *http.Request, caller authz.Caller, groupID, userID string) {
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.app.RemoveMember(caller, groupID, userID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type addMemberRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}
