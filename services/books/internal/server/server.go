package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/internal/authtoken"
	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/internal/util"
	"github.com/elzpil/bookclub/pkg/domain"
	"github.com/elzpil/bookclub/services/books/internal/app"
)

// maxCoverSize caps accepted cover uploads.
const maxCoverSize = 8 << 20

// Config wires required dependencies for the HTTP server.
type Config struct {
	App    *app.App
	Tokens *authtoken.Manager
}

// Server exposes HTTP endpoints for the books service.
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
	return util.WithRequestID(util.WithRequestLog("books", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// public probe used by the community service
	s.mux.HandleFunc("/books/exists/", s.handleExists)

	// authenticated
	s.mux.Handle("/books", s.withCaller(s.handleBooks))
	s.mux.Handle("/books/", s.withCaller(s.handleBookByID))
	s.mux.Handle("/reviews/", s.withCaller(s.handleReviewByID))
	s.mux.Handle("/bookshelf", s.withCaller(s.handleShelf))
	s.mux.Handle("/bookshelf/", s.withCaller(s.handleShelfEntry))
	s.mux.Handle("/progress", s.withCaller(s.handleProgress))
	s.mux.Handle("/progress/", s.withCaller(s.handleProgressByID))
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

func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/books/exists/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	exists, err := s.app.BookExists(id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Book not found with ID: "+id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": true})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		books, err := s.app.ListBooks(q.Get("genre"), q.Get("author"), q.Get("title"))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": books, "count": len(books)})
	case http.MethodPost:
		var req bookRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		book, err := s.app.CreateBook(caller, app.BookParams{
			Title:         req.Title,
			Author:        req.Author,
			Description:   req.Description,
			PublishedDate: req.PublishedDate,
			Genre:         req.Genre,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, book)
	default:
		methodNotAllowed(w)
	}
}

// /books/{id} or /books/{id}/{verify|cover|reviews}
func (s *Server) handleBookByID(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	path := strings.TrimPrefix(r.URL.Path, "/books/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "verify":
			s.handleVerify(w, r, caller, id)
		case "cover":
			s.handleCover(w, r, caller, id)
		case "reviews":
			s.handleReviews(w, r, caller, id)
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		book, err := s.app.GetBook(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	case http.MethodPatch:
		var req updateBookRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		book, err := s.app.UpdateBook(caller, id, app.BookUpdate{
			Title:         req.Title,
			Author:        req.Author,
			Description:   req.Description,
			PublishedDate: req.PublishedDate,
			Genre:         req.Genre,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	case http.MethodDelete:
		if err := s.app.DeleteBook(caller, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request, caller authz.Caller, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	book, err := s.app.VerifyBook(caller, id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleCover(w http.ResponseWriter, r *http.Request, caller authz.Caller, id string) {
	switch r.Method {
	case http.MethodGet:
		url, err := s.app.CoverURL(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	case http.MethodPost:
		if err := r.ParseMultipartForm(maxCoverSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()
		book, err := s.app.UploadCover(r.Context(), caller, id, header.Filename, file, header.Size, header.Header.Get("Content-Type"))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request, caller authz.Caller, bookID string) {
	switch r.Method {
	case http.MethodGet:
		reviews, err := s.app.ListReviews(bookID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": reviews, "count": len(reviews)})
	case http.MethodPost:
		var req reviewRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		review, err := s.app.CreateReview(caller, bookID, app.ReviewParams{Content: req.Content, Rating: req.Rating})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, review)
	default:
		methodNotAllowed(w)
	}
}

// /reviews/{id}
func (s *Server) handleReviewByID(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	id := strings.TrimPrefix(r.URL.Path, "/reviews/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		review, err := s.app.GetReview(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, review)
	case http.MethodPatch:
		var req updateReviewRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		review, err := s.app.UpdateReview(caller, id, app.ReviewUpdate{Content: req.Content, Rating: req.Rating})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, review)
	case http.MethodDelete:
		if err := s.app.DeleteReview(caller, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleShelf(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	switch r.Method {
	case http.MethodGet:
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			userID = caller.UserID
		}
		entries, err := s.app.ListShelf(userID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": entries, "count": len(entries)})
	case http.MethodPost:
		var req shelfRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		entry, err := s.app.AddToShelf(caller, req.BookID, domain.ShelfStatus(req.Status))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	default:
		methodNotAllowed(w)
	}
}

// /bookshelf/{id}
func (s *Server) handleShelfEntry(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	id := strings.TrimPrefix(r.URL.Path, "/bookshelf/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req updateShelfRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		entry, err := s.app.UpdateShelfEntry(caller, id, domain.ShelfStatus(req.Status))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	case http.MethodDelete:
		if err := s.app.RemoveFromShelf(caller, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	switch r.Method {
	case http.MethodGet:
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			userID = caller.UserID
		}
		if bookID := r.URL.Query().Get("bookId"); bookID != "" {
			progress, err := s.app.GetProgressForBook(userID, bookID)
			if err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, progress)
			return
		}
		records, err := s.app.ListProgress(userID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": records, "count": len(records)})
	case http.MethodPost:
		var req progressRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		progress, err := s.app.StartProgress(caller, req.BookID, req.Percentage)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, progress)
	default:
		methodNotAllowed(w)
	}
}

// /progress/{id}
func (s *Server) handleProgressByID(w http.ResponseWriter, r *http.Request, caller authz.Caller) {
	id := strings.TrimPrefix(r.URL.Path, "/progress/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req updateProgressRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	progress, err := s.app.UpdateProgress(caller, id, req.Percentage)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type bookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description"`
	PublishedDate string `json:"publishedDate"`
	Genre         string `json:"genre"`
}

type updateBookRequest struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	Description   *string `json:"description"`
	PublishedDate *string `json:"publishedDate"`
	Genre         *string `json:"genre"`
}

type reviewRequest struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

type updateReviewRequest struct {
	Content *string `json:"content"`
	Rating  *int    `json:"rating"`
}

type shelfRequest struct {
	BookID string `json:"bookId"`
	Status string `json:"status"`
}

type updateShelfRequest struct {
	Status string `json:"status"`
}

type progressRequest struct {
	BookID     string `json:"bookId"`
	Percentage int    `json:"percentage"`
}

type updateProgressRequest struct {
	Percentage int `json:"percentage"`
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
		return "BOOK_INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "AUTH_INVALID_TOKEN"
	case http.StatusForbidden:
		return "BOOK_FORBIDDEN"
	case http.StatusNotFound:
		return "BOOK_NOT_FOUND"
	case http.StatusConflict:
		return "BOOK_CONFLICT"
	case http.StatusMethodNotAllowed:
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case http.StatusServiceUnavailable:
		return "SYSTEM_UNAVAILABLE"
	default:
		return "SYSTEM_INTERNAL_ERROR"
	}
}
