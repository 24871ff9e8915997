package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/internal/util"
	"github.com/elzpil/bookclub/pkg/domain"
	"github.com/elzpil/bookclub/pkg/storage"
	"github.com/elzpil/bookclub/services/books/internal/store"
)

// coverURLExpiry bounds how long a presigned cover link stays valid.
const coverURLExpiry = 15 * time.Minute

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store
	Covers      storage.ObjectStore
}

// App is the core application service for the book catalog: books, reviews,
// bookshelves, and reading progress.
type App struct {
	store  store.Store
	covers storage.ObjectStore
}

// New constructs the application with database-backed storage. Covers is
// optional; cover endpoints report unavailable when it is absent.
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
	return &App{store: dataStore, covers: cfg.Covers}, nil
}

// BookParams carries the book creation payload.
type BookParams struct {
	Title         string
	Author        string
	Description   string
	PublishedDate string
	Genre         string
}

// CreateBook adds a book owned by the caller. New books start unverified.
func (a *App) CreateBook(caller authz.Caller, p BookParams) (domain.Book, error) {
	title := strings.TrimSpace(p.Title)
	author := strings.TrimSpace(p.Author)
	if title == "" || author == "" {
		return domain.Book{}, apperr.InvalidArgument("title and author are required")
	}
	published, err := parseDate(p.PublishedDate)
	if err != nil {
		return domain.Book{}, err
	}
	now := time.Now().UTC()
	book := domain.Book{
		ID:            util.NewID(),
		UserID:        caller.UserID,
		Title:         title,
		Author:        author,
		Description:   strings.TrimSpace(p.Description),
		PublishedDate: published,
		Genre:         strings.TrimSpace(p.Genre),
		Verified:      false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.store.SaveBook(book); err != nil {
		return domain.Book{}, apperr.Internal("save book", err)
	}
	return book, nil
}

// GetBook returns one book by ID.
func (a *App) GetBook(id string) (domain.Book, error) {
	book, ok, err := a.store.GetBook(id)
	if err != nil {
		return domain.Book{}, apperr.Internal("fetch book", err)
	}
	if !ok {
		return domain.Book{}, apperr.NotFound("Book not found with ID: %s", id)
	}
	return book, nil
}

// BookExists reports whether a book id is known. Used by the public
// existence probe endpoint.
func (a *App) BookExists(id string) (bool, error) {
	_, ok, err := a.store.GetBook(id)
	if err != nil {
		return false, apperr.Internal("fetch book", err)
	}
	return ok, nil
}

// ListBooks returns books, optionally narrowed by one filter. When several
// filters are supplied only the highest-precedence one applies: genre, then
// author, then title.
func (a *App) ListBooks(genre, author, title string) ([]domain.Book, error) {
	var filter store.BookFilter
	switch {
	case genre != "":
		filter.Genre = genre
	case author != "":
		filter.Author = author
	case title != "":
		filter.Title = title
	}
	books, err := a.store.ListBooks(filter)
	if err != nil {
		return nil, apperr.Internal("list books", err)
	}
	return books, nil
}

// BookUpdate is a partial update payload; nil fields are left unchanged.
type BookUpdate struct {
	Title         *string
	Author        *string
	Description   *string
	PublishedDate *string
	Genre         *string
}

// UpdateBook applies a partial update, gated to the owner or an admin.
func (a *App) UpdateBook(caller authz.Caller, id string, update BookUpdate) (domain.Book, error) {
	book, err := a.GetBook(id)
	if err != nil {
		return domain.Book{}, err
	}
	if err := authz.OwnerOrAdmin(caller, book.UserID); err != nil {
		return domain.Book{}, err
	}
	if update.Title != nil {
		book.Title = strings.TrimSpace(*update.Title)
	}
	if update.Author != nil {
		book.Author = strings.TrimSpace(*update.Author)
	}
	if update.Description != nil {
		book.Description = strings.TrimSpace(*update.Description)
	}
	if update.Genre != nil {
		book.Genre = strings.TrimSpace(*update.Genre)
	}
	if update.PublishedDate != nil {
		published, err := parseDate(*update.PublishedDate)
		if err != nil {
			return domain.Book{}, err
		}
		book.PublishedDate = published
	}
	if book.Title == "" || book.Author == "" {
		return domain.Book{}, apperr.InvalidArgument("title and author are required")
	}
	book.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveBook(book); err != nil {
		return domain.Book{}, apperr.Internal("update book", err)
	}
	return book, nil
}

// DeleteBook removes a book and its dependent records, gated to the owner or
// an admin.
func (a *App) DeleteBook(caller authz.Caller, id string) error {
	book, err := a.GetBook(id)
	if err != nil {
		return err
	}
	if err := authz.OwnerOrAdmin(caller, book.UserID); err != nil {
		return err
	}
	if err := a.store.DeleteBook(id); err != nil {
		return apperr.Internal("delete book", err)
	}
	return nil
}

// VerifyBook marks a book as verified. Admin only.
func (a *App) VerifyBook(caller authz.Caller, id string) (domain.Book, error) {
	if err := authz.AdminOnly(caller); err != nil {
		return domain.Book{}, err
	}
	book, err := a.GetBook(id)
	if err != nil {
		return domain.Book{}, err
	}
	if !book.Verified {
		book.Verified = true
		book.UpdatedAt = time.Now().UTC()
		if err := a.store.SaveBook(book); err != nil {
			return domain.Book{}, apperr.Internal("verify book", err)
		}
	}
	return book, nil
}

// UploadCover stores a cover image for the book, gated to the owner or an
// admin.
func (a *App) UploadCover(ctx context.Context, caller authz.Caller, bookID, filename string, r io.Reader, size int64, contentType string) (domain.Book, error) {
	if a.covers == nil {
		return domain.Book{}, apperr.Unavailable("cover storage not configured")
	}
	book, err := a.GetBook(bookID)
	if err != nil {
		return domain.Book{}, err
	}
	if err := authz.OwnerOrAdmin(caller, book.UserID); err != nil {
		return domain.Book{}, err
	}
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return domain.Book{}, apperr.InvalidArgument("unsupported cover image type %q", ext)
	}
	key := "covers/" + book.ID + ext
	if err := a.covers.Put(ctx, key, r, size, contentType); err != nil {
		return domain.Book{}, apperr.Internal("store cover", err)
	}
	book.CoverKey = key
	book.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveBook(book); err != nil {
		return domain.Book{}, apperr.Internal("save cover key", err)
	}
	return book, nil
}

// CoverURL returns a short-lived download URL for the book's cover.
func (a *App) CoverURL(ctx context.Context, bookID string) (string, error) {
	if a.covers == nil {
		return "", apperr.Unavailable("cover storage not configured")
	}
	book, err := a.GetBook(bookID)
	if err != nil {
		return "", err
	}
	if book.CoverKey == "" {
		return "", apperr.NotFound("no cover for book %s", bookID)
	}
	url, err := a.covers.PresignGet(ctx, book.CoverKey, coverURLExpiry)
	if err != nil {
		return "", apperr.Internal("presign cover", err)
	}
	return url, nil
}

// ReviewParams carries the review creation payload.
type ReviewParams struct {
	Content string
	Rating  int
}

// CreateReview adds the caller's review of a book. One review per user per
// book; the rating must be between 1 and 5.
func (a *App) CreateReview(caller authz.Caller, bookID string, p ReviewParams) (domain.Review, error) {
	if p.Rating < 1 || p.Rating > 5 {
		return domain.Review{}, apperr.InvalidArgument("rating must be between 1 and 5")
	}
	if _, err := a.GetBook(bookID); err != nil {
		return domain.Review{}, err
	}
	review := domain.Review{
		ID:        util.NewID(),
		BookID:    bookID,
		UserID:    caller.UserID,
		Username:  caller.Username,
		Content:   strings.TrimSpace(p.Content),
		Rating:    p.Rating,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveReview(review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Review{}, apperr.Conflict("user has already reviewed this book")
		}
		return domain.Review{}, apperr.Internal("save review", err)
	}
	return review, nil
}

// ListReviews returns a book's reviews.
func (a *App) ListReviews(bookID string) ([]domain.Review, error) {
	if _, err := a.GetBook(bookID); err != nil {
		return nil, err
	}
	reviews, err := a.store.ListReviewsByBook(bookID)
	if err != nil {
		return nil, apperr.Internal("list reviews", err)
	}
	return reviews, nil
}

// GetReview returns one review by ID.
func (a *App) GetReview(id string) (domain.Review, error) {
	review, ok, err := a.store.GetReview(id)
	if err != nil {
		return domain.Review{}, apperr.Internal("fetch review", err)
	}
	if !ok {
		return domain.Review{}, apperr.NotFound("Review not found with ID: %s", id)
	}
	return review, nil
}

// ReviewUpdate is a partial update payload; nil fields are left unchanged.
type ReviewUpdate struct {
	Content *string
	Rating  *int
}

// UpdateReview applies a partial update, gated to the review author or an
// admin.
func (a *App) UpdateReview(caller authz.Caller, id string, update ReviewUpdate) (domain.Review, error) {
	review, err := a.GetReview(id)
	if err != nil {
		return domain.Review{}, err
	}
	if err := authz.OwnerOrAdmin(caller, review.UserID); err != nil {
		return domain.Review{}, err
	}
	if update.Content != nil {
		review.Content = strings.TrimSpace(*update.Content)
	}
	if update.Rating != nil {
		if *update.Rating < 1 || *update.Rating > 5 {
			return domain.Review{}, apperr.InvalidArgument("rating must be between 1 and 5")
		}
		review.Rating = *update.Rating
	}
	if err := a.store.SaveReview(review); err != nil {
		return domain.Review{}, apperr.Internal("update review", err)
	}
	return review, nil
}

// DeleteReview removes a review, gated to the author or an admin.
func (a *App) DeleteReview(caller authz.Caller, id string) error {
	review, err := a.GetReview(id)
	if err != nil {
		return err
	}
	if err := authz.OwnerOrAdmin(caller, review.UserID); err != nil {
		return err
	}
	if err := a.store.DeleteReview(id); err != nil {
		return apperr.Internal("delete review", err)
	}
	return nil
}

// AddToShelf places a book on the caller's bookshelf.
func (a *App) AddToShelf(caller authz.Caller, bookID string, status domain.ShelfStatus) (domain.BookshelfEntry, error) {
	if !validShelfStatus(status) {
		return domain.BookshelfEntry{}, apperr.InvalidArgument("invalid bookshelf status %q", status)
	}
	if _, err := a.GetBook(bookID); err != nil {
		return domain.BookshelfEntry{}, err
	}
	entry := domain.BookshelfEntry{
		ID:        util.NewID(),
		UserID:    caller.UserID,
		BookID:    bookID,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveShelfEntry(entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.BookshelfEntry{}, apperr.Conflict("book is already in the user's bookshelf")
		}
		return domain.BookshelfEntry{}, apperr.Internal("save bookshelf entry", err)
	}
	return entry, nil
}

// ListShelf returns a user's bookshelf.
func (a *App) ListShelf(userID string) ([]domain.BookshelfEntry, error) {
	entries, err := a.store.ListShelfByUser(userID)
	if err != nil {
		return nil, apperr.Internal("list bookshelf", err)
	}
	return entries, nil
}

// UpdateShelfEntry changes an entry's status, gated to the owner or an admin.
func (a *App) UpdateShelfEntry(caller authz.Caller, id string, status domain.ShelfStatus) (domain.BookshelfEntry, error) {
	if !validShelfStatus(status) {
		return domain.BookshelfEntry{}, apperr.InvalidArgument("invalid bookshelf status %q", status)
	}
	entry, ok, err := a.store.GetShelfEntry(id)
	if err != nil {
		return domain.BookshelfEntry{}, apperr.Internal("fetch bookshelf entry", err)
	}
	if !ok {
		return domain.BookshelfEntry{}, apperr.NotFound("Bookshelf entry not found with ID: %s", id)
	}
	if err := authz.OwnerOrAdmin(caller, entry.UserID); err != nil {
		return domain.BookshelfEntry{}, err
	}
	entry.Status = status
	if err := a.store.SaveShelfEntry(entry); err != nil {
		return domain.BookshelfEntry{}, apperr.Internal("update bookshelf entry", err)
	}
	return entry, nil
}

// RemoveFromShelf deletes an entry, gated to the owner or an admin.
func (a *App) RemoveFromShelf(caller authz.Caller, id string) error {
	entry, ok, err := a.store.GetShelfEntry(id)
	if err != nil {
		return apperr.Internal("fetch bookshelf entry", err)
	}
	if !ok {
		return apperr.NotFound("Bookshelf entry not found with ID: %s", id)
	}
	if err := authz.OwnerOrAdmin(caller, entry.UserID); err != nil {
		return err
	}
	if err := a.store.DeleteShelfEntry(id); err != nil {
		return apperr.Internal("delete bookshelf entry", err)
	}
	return nil
}

// StartProgress creates the caller's progress record for a book. One record
// per user per book.
func (a *App) StartProgress(caller authz.Caller, bookID string, percentage int) (domain.ReadingProgress, error) {
	if percentage < 0 || percentage > 100 {
		return domain.ReadingProgress{}, apperr.InvalidArgument("percentage must be between 0 and 100")
	}
	if _, err := a.GetBook(bookID); err != nil {
		return domain.ReadingProgress{}, err
	}
	progress := domain.ReadingProgress{
		ID:         util.NewID(),
		UserID:     caller.UserID,
		BookID:     bookID,
		Percentage: percentage,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := a.store.SaveProgress(progress); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ReadingProgress{}, apperr.Conflict("reading progress already exists for this book")
		}
		return domain.ReadingProgress{}, apperr.Internal("save progress", err)
	}
	return progress, nil
}

// UpdateProgress sets a record's percentage, gated to the owner or an admin.
func (a *App) UpdateProgress(caller authz.Caller, id string, percentage int) (domain.ReadingProgress, error) {
	if percentage < 0 || percentage > 100 {
		return domain.ReadingProgress{}, apperr.InvalidArgument("percentage must be between 0 and 100")
	}
	progress, ok, err := a.store.GetProgress(id)
	if err != nil {
		return domain.ReadingProgress{}, apperr.Internal("fetch progress", err)
	}
	if !ok {
		return domain.ReadingProgress{}, apperr.NotFound("Reading progress not found with ID: %s", id)
	}
	if err := authz.OwnerOrAdmin(caller, progress.UserID); err != nil {
		return domain.ReadingProgress{}, err
	}
	progress.Percentage = percentage
	progress.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdateProgress(progress); err != nil {
		return domain.ReadingProgress{}, apperr.Internal("update progress", err)
	}
	return progress, nil
}

// ListProgress returns all of a user's progress records.
func (a *App) ListProgress(userID string) ([]domain.ReadingProgress, error) {
	records, err := a.store.ListProgressByUser(userID)
	if err != nil {
		return nil, apperr.Internal("list progress", err)
	}
	return records, nil
}

// GetProgressForBook returns a user's progress record for one book.
func (a *App) GetProgressForBook(userID, bookID string) (domain.ReadingProgress, error) {
	progress, ok, err := a.store.GetProgressByPair(userID, bookID)
	if err != nil {
		return domain.ReadingProgress{}, apperr.Internal("fetch progress", err)
	}
	if !ok {
		return domain.ReadingProgress{}, apperr.NotFound("no reading progress for book %s", bookID)
	}
	return progress, nil
}

func validShelfStatus(s domain.ShelfStatus) bool {
	switch s {
	case domain.ShelfReading, domain.ShelfRead, domain.ShelfWantToRead:
		return true
	}
	return false
}

// parseDate accepts an optional YYYY-MM-DD date string.
func parseDate(s string) (datatypes.Date, error) {
	if strings.TrimSpace(s) == "" {
		return datatypes.Date{}, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return datatypes.Date{}, apperr.InvalidArgument("invalid date %q, expected YYYY-MM-DD", s)
	}
	return datatypes.Date(t), nil
}
