package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type BookModel struct {
	ID            string `gorm:"primaryKey"`
	UserID        string `gorm:"not null;index"`
	Title         string `gorm:"not null"`
	Author        string `gorm:"not null;index"`
	Description   string `gorm:"type:text"`
	PublishedDate datatypes.Date
	Genre         string `gorm:"index"`
	Verified      bool   `gorm:"not null;default:false"`
	CoverKey      string
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

type ReviewModel struct {
	ID        string    `gorm:"primaryKey"`
	BookID    string    `gorm:"not null;uniqueIndex:idx_review_pair;index"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_review_pair"`
	Username  string    `gorm:"not null"`
	Content   string    `gorm:"type:text"`
	Rating    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type BookshelfEntryModel struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_shelf_pair;index"`
	BookID    string    `gorm:"not null;uniqueIndex:idx_shelf_pair"`
	Status    string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type ReadingProgressModel struct {
	ID         string    `gorm:"primaryKey"`
	UserID     string    `gorm:"not null;uniqueIndex:idx_progress_pair;index"`
	BookID     string    `gorm:"not null;uniqueIndex:idx_progress_pair"`
	Percentage int       `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}
