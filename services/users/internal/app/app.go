package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/internal/authtoken"
	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/internal/util"
	"github.com/elzpil/bookclub/pkg/auth"
	"github.com/elzpil/bookclub/pkg/domain"
	"github.com/elzpil/bookclub/services/users/internal/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store
	Tokens      *authtoken.Manager
}

// App is the core application service for accounts and the follower graph.
type App struct {
	store  store.Store
	tokens *authtoken.Manager
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
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token manager required")
	}
	return &App{store: dataStore, tokens: cfg.Tokens}, nil
}

// RegisterParams carries the public registration payload.
type RegisterParams struct {
	Email    string
	Username string
	Password string
	Name     string
	Bio      string
}

// Register creates a new account with role user and issues a token.
func (a *App) Register(p RegisterParams) (domain.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(p.Email))
	username := strings.TrimSpace(p.Username)
	if email == "" || username == "" || p.Password == "" {
		return domain.User{}, "", apperr.InvalidArgument("email, username and password are required")
	}
	if err := auth.ValidatePassword(p.Password); err != nil {
		return domain.User{}, "", apperr.InvalidArgument("%s", err.Error())
	}
	passwordHash, err := auth.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, "", apperr.Internal("hash password", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(p.Name),
		Bio:          strings.TrimSpace(p.Bio),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, "", apperr.Conflict("email or username already in use")
		}
		return domain.User{}, "", apperr.Internal("save user", err)
	}
	token, err := a.tokens.Issue(user.Username, user.ID, user.Role)
	if err != nil {
		return domain.User{}, "", apperr.Internal("issue token", err)
	}
	return user, token, nil
}

// Login validates credentials and issues a bearer token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", apperr.Internal("fetch user", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", apperr.InvalidArgument("incorrect email or password")
	}
	token, err := a.tokens.Issue(user.Username, user.ID, user.Role)
	if err != nil {
		return domain.User{}, "", apperr.Internal("issue token", err)
	}
	return user, token, nil
}

// GetUser returns one user by ID.
func (a *App) GetUser(id string) (domain.User, error) {
	user, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return domain.User{}, apperr.Internal("fetch user", err)
	}
	if !ok {
		return domain.User{}, apperr.NotFound("User not found with ID: %s", id)
	}
	return user, nil
}

// UserExists reports whether a user id is known. Used by the public
// existence probe endpoint.
func (a *App) UserExists(id string) (bool, error) {
	_, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return false, apperr.Internal("fetch user", err)
	}
	return ok, nil
}

// ListUsers returns all users.
func (a *App) ListUsers() ([]domain.User, error) {
	users, err := a.store.ListUsers()
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	return users, nil
}

// UserUpdate is a partial update payload; nil fields are left unchanged.
type UserUpdate struct {
	Name *string
	Bio  *string
}

// UpdateUser applies a partial update, gated to the owner or an admin.
func (a *App) UpdateUser(caller authz.Caller, id string, update UserUpdate) (domain.User, error) {
	user, err := a.GetUser(id)
	if err != nil {
		return domain.User{}, err
	}
	if err := authz.OwnerOrAdmin(caller, user.ID); err != nil {
		return domain.User{}, err
	}
	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Bio != nil {
		user.Bio = strings.TrimSpace(*update.Bio)
	}
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, apperr.Internal("update user", err)
	}
	return user, nil
}

// DeleteUser removes an account, gated to the owner or an admin.
func (a *App) DeleteUser(caller authz.Caller, id string) error {
	user, err := a.GetUser(id)
	if err != nil {
		return err
	}
	if err := authz.OwnerOrAdmin(caller, user.ID); err != nil {
		return err
	}
	if err := a.store.DeleteUser(id); err != nil {
		return apperr.Internal("delete user", err)
	}
	return nil
}

// Follow creates a follower edge from the caller to the target user.
func (a *App) Follow(caller authz.Caller, targetID string) (domain.Follower, error) {
	if caller.UserID == targetID {
		return domain.Follower{}, apperr.InvalidArgument("cannot follow yourself")
	}
	if _, err := a.GetUser(targetID); err != nil {
		return domain.Follower{}, err
	}
	edge := domain.Follower{
		ID:          util.NewID(),
		UserID:      caller.UserID,
		FollowingID: targetID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.SaveFollower(edge); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Follower{}, apperr.Conflict("already following this user")
		}
		return domain.Follower{}, apperr.Internal("save follower", err)
	}
	return edge, nil
}

// Unfollow removes the caller's follower edge to the target user.
func (a *App) Unfollow(caller authz.Caller, targetID string) error {
	removed, err := a.store.DeleteFollower(caller.UserID, targetID)
	if err != nil {
		return apperr.Internal("delete follower", err)
	}
	if !removed {
		return apperr.NotFound("not following this user")
	}
	return nil
}

// Followers lists edges pointing at the user.
func (a *App) Followers(id string) ([]domain.Follower, error) {
	if _, err := a.GetUser(id); err != nil {
		return nil, err
	}
	edges, err := a.store.ListFollowers(id)
	if err != nil {
		return nil, apperr.Internal("list followers", err)
	}
	return edges, nil
}

// Following lists edges originating from the user.
func (a *App) Following(id string) ([]domain.Follower, error) {
	if _, err := a.GetUser(id); err != nil {
		return nil, err
	}
	edges, err := a.store.ListFollowing(id)
	if err != nil {
		return nil, apperr.Internal("list following", err)
	}
	return edges, nil
}
