package store

import (
	"github.com/elzpil/bookclub/pkg/domain"
)

// BookFilter narrows a book listing. At most one field is applied; the
// service layer resolves the genre → author → title precedence before the
// filter reaches the store.
type BookFilter struct {
	Genre  string
	Author string
	Title  string
}

// Store defines persistence operations for books, reviews, bookshelf entries,
// and reading progress.
//
// The one-per-(user, book) rules for reviews, bookshelf entries, and progress
// records are enforced by composite database unique indexes; implementations
// surface violations as gorm.ErrDuplicatedKey.
type Store interface {
	// books
	SaveBook(domain.Book) error
	GetBook(id string) (domain.Book, bool, error)
	ListBooks(filter BookFilter) ([]domain.Book, error)
	DeleteBook(id string) error

	// reviews
	SaveReview(domain.Review) error
	GetReview(id string) (domain.Review, bool, error)
	ListReviewsByBook(bookID string) ([]domain.Review, error)
	DeleteReview(id string) error

	// bookshelf
	SaveShelfEntry(domain.BookshelfEntry) error
	GetShelfEntry(id string) (domain.BookshelfEntry, bool, error)
	ListShelfByUser(userID string) ([]domain.BookshelfEntry, error)
	DeleteShelfEntry(id string) error

	// reading progress
	SaveProgress(domain.ReadingProgress) error
	UpdateProgress(domain.ReadingProgress) error
	GetProgress(id string) (domain.ReadingProgress, bool, error)
	GetProgressByPair(userID, bookID string) (domain.ReadingProgress, bool, error)
	ListProgressByUser(userID string) ([]domain.ReadingProgress, error)
}
