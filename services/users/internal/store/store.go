package store

import (
	"github.com/elzpil/bookclub/pkg/domain"
)

// Store defines persistence operations for users and follower edges.
//
// Uniqueness rules (user email, username, and the (user, following) pair) are
// enforced by database constraints; implementations surface violations as
// gorm.ErrDuplicatedKey so the service layer can translate them to conflicts.
type Store interface {
	// users
	SaveUser(domain.User) error
	GetUserByID(id string) (domain.User, bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)
	DeleteUser(id string) error

	// follower graph
	SaveFollower(domain.Follower) error
	DeleteFollower(userID, followingID string) (bool, error)
	ListFollowers(userID string) ([]domain.Follower, error)
	ListFollowing(userID string) ([]domain.Follower, error)
}
