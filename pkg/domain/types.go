package domain

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type ShelfStatus string

const (
	ShelfReading    ShelfStatus = "READING"
	ShelfRead       ShelfStatus = "READ"
	ShelfWantToRead ShelfStatus = "WANT_TO_READ"
)

type MemberRole string

const (
	MemberAdmin     MemberRole = "admin"
	MemberModerator MemberRole = "moderator"
	MemberMember    MemberRole = "member"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Bio          string    `json:"bio,omitempty"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Follower is a directed edge: UserID follows FollowingID.
type Follower struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	FollowingID string    `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Book struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	Title         string         `json:"title"`
	Author        string         `json:"author"`
	Description   string         `json:"description,omitempty"`
	PublishedDate datatypes.Date `json:"publishedDate"`
	Genre         string         `json:"genre"`
	Verified      bool           `json:"verified"`
	CoverKey      string         `json:"-"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type Review struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

type BookshelfEntry struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	BookID    string      `json:"bookId"`
	Status    ShelfStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

type ReadingProgress struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	BookID     string    `json:"bookId"`
	Percentage int       `json:"percentage"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatorID   string    `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type GroupMembership struct {
	ID        string     `json:"id"`
	GroupID   string     `json:"groupId"`
	UserID    string     `json:"userId"`
	Role      MemberRole `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Discussion references at most one parent: a group, a book, or a challenge.
// Book references point into the books service and are validated only by an
// existence probe at write time.
type Discussion struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	GroupID     string    `json:"groupId,omitempty"`
	BookID      string    `json:"bookId,omitempty"`
	ChallengeID string    `json:"challengeId,omitempty"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Comment struct {
	ID           string    `json:"id"`
	DiscussionID string    `json:"discussionId"`
	UserID       string    `json:"userId"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Event struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"groupId"`
	CreatorID   string    `json:"creatorId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	EventTime   time.Time `json:"eventTime"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EventParticipant records an RSVP. Status is free-form ("going", "maybe", ...).
type EventParticipant struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type Challenge struct {
	ID          string         `json:"id"`
	CreatorID   string         `json:"creatorId"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Goal        int            `json:"goal"`
	StartDate   datatypes.Date `json:"startDate"`
	EndDate     datatypes.Date `json:"endDate"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type ChallengeParticipant struct {
	ID          string    `json:"id"`
	ChallengeID string    `json:"challengeId"`
	UserID      string    `json:"userId"`
	BooksRead   int       `json:"booksRead"`
	CreatedAt   time.Time `json:"createdAt"`
}
