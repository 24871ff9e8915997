package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/pkg/probe"
	"github.com/elzpil/bookclub/services/community/internal/store"
)

// ExistenceProbe confirms or denies that a record exists in a sibling
// service.
type ExistenceProbe interface {
	Exists(ctx context.Context, id string) (probe.Presence, error)
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store
	Books       ExistenceProbe
	Users       ExistenceProbe
}

// App is the core application service for groups, discussions, events, and
// reading challenges.
type App struct {
	store store.Store
	books ExistenceProbe
	users ExistenceProbe
}

// New constructs the application with database-backed storage.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}
	if cfg.Books == nil || cfg.Users == nil {
		return nil, fmt.Errorf("books and users probes required")
	}
	return &App{store: dataStore, books: cfg.Books, users: cfg.Users}, nil
}

// checkBookRef verifies a book reference against the books service. Absent
// references are rejected; an unreachable books service reads as unavailable
// rather than as a missing book.
func (a *App) checkBookRef(ctx context.Context, bookID string) error {
	presence, err := a.books.Exists(ctx, bookID)
	switch presence {
	case probe.Present:
		return nil
	case probe.Absent:
		return apperr.InvalidArgument("referenced book %s does not exist", bookID)
	default:
		slog.Warn("book existence probe failed", "bookId", bookID, "err", err)
		return apperr.Unavailable("books service unavailable")
	}
}

// checkUserRef verifies a user reference against the users service.
func (a *App) checkUserRef(ctx context.Context, userID string) error {
	presence, err := a.users.Exists(ctx, userID)
	switch presence {
	case probe.Present:
		return nil
	case probe.Absent:
		return apperr.InvalidArgument("referenced user %s does not exist", userID)
	default:
		slog.Warn("user existence probe failed", "userId", userID, "err", err)
		return apperr.Unavailable("users service unavailable")
	}
}
