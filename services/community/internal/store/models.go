package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type GroupModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string `gorm:"type:text"`
	CreatorID   string `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
}

type GroupMembershipModel struct {
	ID        string    `gorm:"primaryKey"`
	GroupID   string    `gorm:"not null;uniqueIndex:idx_membership_pair;index"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_membership_pair"`
	Role      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type DiscussionModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"not null;index"`
	GroupID     string `gorm:"index"`
	BookID      string `gorm:"index"`
	ChallengeID string `gorm:"index"`
	Title       string `gorm:"not null"`
	Content     string `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
}

type CommentModel struct {
	ID           string    `gorm:"primaryKey"`
	DiscussionID string    `gorm:"not null;index"`
	UserID       string    `gorm:"not null"`
	Content      string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type EventModel struct {
	ID          string `gorm:"primaryKey"`
	GroupID     string `gorm:"not null;index"`
	CreatorID   string `gorm:"not null"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Location    string
	EventTime   time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

type EventParticipantModel struct {
	ID        string    `gorm:"primaryKey"`
	EventID   string    `gorm:"not null;uniqueIndex:idx_rsvp_pair;index"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_rsvp_pair"`
	Status    string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type ChallengeModel struct {
	ID          string `gorm:"primaryKey"`
	CreatorID   string `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Goal        int    `gorm:"not null"`
	StartDate   datatypes.Date
	EndDate     datatypes.Date
	CreatedAt   time.Time `gorm:"not null"`
}

type ChallengeParticipantModel struct {
	ID          string    `gorm:"primaryKey"`
	ChallengeID string    `gorm:"not null;uniqueIndex:idx_challenger_pair;index"`
	UserID      string    `gorm:"not null;uniqueIndex:idx_challenger_pair"`
	BooksRead   int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
}
