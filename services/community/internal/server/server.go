package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/internal/authtoken"
	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/internal/util"
	"github.com/elzpil/bookclub/pkg/domain"
	"github.com/elzpil/bookclub/services/community/internal/app"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App    *app.App
	Tokens *authtoken.Manager
}

// Server exposes HTTP endpoints for the community service.
type Server struct {
	app    *app.App
	tokens *authtoken.Manager
	mux    *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:    cfg.App,
		tokens: cfg.Tokens,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("community", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// authenticated
	s.mux.Handle("/groups", s.withCaller(s.handleGroups))
	s.mux.Handle("/groups/", s.withCaller(s.handleGroupByID))
	s.mux.Handle("/discussions", s.withCaller(s.handleDiscussions))
	s.mux.Handle("/discussions/", s.withCaller(s.handleDiscussionByID))
	s.mux.Handle("/comments/", s.withCaller(s.handleCommentByID))
	s.mux.Handle("/events", s.withCaller(s.handleEvents))
	s.mux.Handle("/events/", s.withCaller(s.handleEventByID))
	s.mux.Handle("/challenges", s.withCaller(s.handleChallenges))
	s.mux.Handle("/challenges/", s.withCaller(s.handleChallengeByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type callerHandler func(http.ResponseWriter, *http.Request, authz.Caller)

func (s *Server) withCaller(next callerHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, caller)
	})
}

func (s *Server) authorize(r *http.Request) (authz.Caller, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return authz.Caller{}, false
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return authz.Caller{}, false
	}
	return authz.Caller{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     domain.UserRole(claims.Role),
	}, true
}

// splitResource picks apart "{id}" or "{id}/{action}..." below a route
// prefix.
func splitResource(path, prefix string) (id, rest string) {
	trimmed := strings.TrimPrefix(path, prefix)
	parts := strings.SplitN(trimmed, "/", 2)
	id = parts[0]
	if len(parts) == 2 {
		rest = parts[1]
	}
	return id, rest
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeAppError(w http.ResponseWriter, err error) {
	writeError(w, apperr.HTTPStatus(err), apperr.Message(err))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errorCode(status),
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "COMMUNITY_INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "AUTH_INVALID_TOKEN"
	case http.StatusForbidden:
		return "COMMUNITY_FORBIDDEN"
	case http.StatusNotFound:
		return "COMMUNITY_NOT_FOUND"
	case http.StatusConflict:
		return "COMMUNITY_CONFLICT"
	case http.StatusMethodNotAllowed:
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case http.StatusServiceUnavailable:
		return "SYSTEM_UNAVAILABLE"
	default:
		return "SYSTEM_INTERNAL_ERROR"
	}
}
