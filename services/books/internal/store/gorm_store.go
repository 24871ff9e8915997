package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/elzpil/bookclub/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&BookModel{}, &ReviewModel{}, &BookshelfEntryModel{}, &ReadingProgressModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveBook creates or updates a book.
func (s *GormStore) SaveBook(b domain.Book) error {
	model := bookToModel(b)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "author", "description", "published_date", "genre", "verified", "cover_key", "updated_at"}),
	}).Create(&model).Error
}

// GetBook returns a book by ID.
func (s *GormStore) GetBook(id string) (domain.Book, bool, error) {
	var model BookModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// ListBooks returns books matching the filter, newest first.
func (s *GormStore) ListBooks(filter BookFilter) ([]domain.Book, error) {
	q := s.db.Order("created_at DESC")
	switch {
	case filter.Genre != "":
		q = q.Where("genre = ?", filter.Genre)
	case filter.Author != "":
		q = q.Where("author = ?", filter.Author)
	case filter.Title != "":
		q = q.Where("title = ?", filter.Title)
	}
	var models []BookModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Book, 0, len(models))
	for _, m := range models {
		res = append(res, bookFromModel(m))
	}
	return res, nil
}

// DeleteBook removes the book together with its reviews, shelf entries, and
// progress records.
func (s *GormStore) DeleteBook(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ReviewModel{}, "book_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&BookshelfEntryModel{}, "book_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&ReadingProgressModel{}, "book_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&BookModel{}, "id = ?", id).Error
	})
}

// SaveReview inserts or updates a review. A second review by the same user
// for the same book surfaces as gorm.ErrDuplicatedKey.
func (s *GormStore) SaveReview(r domain.Review) error {
	model := reviewToModel(r)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "rating"}),
	}).Create(&model).Error
}

// GetReview returns a review by ID.
func (s *GormStore) GetReview(id string) (domain.Review, bool, error) {
	var model ReviewModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Review{}, false, nil
		}
		return domain.Review{}, false, err
	}
	return reviewFromModel(model), true, nil
}

// ListReviewsByBook returns a book's reviews, newest first.
func (s *GormStore) ListReviewsByBook(bookID string) ([]domain.Review, error) {
	var models []ReviewModel
	if err := s.db.Where("book_id = ?", bookID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Review, 0, len(models))
	for _, m := range models {
		res = append(res, reviewFromModel(m))
	}
	return res, nil
}

// DeleteReview removes a review by ID.
func (s *GormStore) DeleteReview(id string) error {
	return s.db.Delete(&ReviewModel{}, "id = ?", id).Error
}

// SaveShelfEntry inserts or updates a bookshelf entry. Adding the same book
// twice surfaces as gorm.ErrDuplicatedKey.
func (s *GormStore) SaveShelfEntry(e domain.BookshelfEntry) error {
	model := shelfToModel(e)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status"}),
	}).Create(&model).Error
}

// GetShelfEntry returns a bookshelf entry by ID.
func (s *GormStore) GetShelfEntry(id string) (domain.BookshelfEntry, bool, error) {
	var model BookshelfEntryModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BookshelfEntry{}, false, nil
		}
		return domain.BookshelfEntry{}, false, err
	}
	return shelfFromModel(model), true, nil
}

// ListShelfByUser returns a user's bookshelf, oldest first.
func (s *GormStore) ListShelfByUser(userID string) ([]domain.BookshelfEntry, error) {
	var models []BookshelfEntryModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.BookshelfEntry, 0, len(models))
	for _, m := range models {
		res = append(res, shelfFromModel(m))
	}
	return res, nil
}

// DeleteShelfEntry removes a bookshelf entry by ID.
func (s *GormStore) DeleteShelfEntry(id string) error {
	return s.db.Delete(&BookshelfEntryModel{}, "id = ?", id).Error
}

// SaveProgress inserts a progress record. A second record for the same
// (user, book) pair surfaces as gorm.ErrDuplicatedKey.
func (s *GormStore) SaveProgress(p domain.ReadingProgress) error {
	model := progressToModel(p)
	return s.db.Create(&model).Error
}

// UpdateProgress updates an existing progress record.
func (s *GormStore) UpdateProgress(p domain.ReadingProgress) error {
	return s.db.Model(&ReadingProgressModel{}).Where("id = ?", p.ID).
		Updates(map[string]any{"percentage": p.Percentage, "updated_at": p.UpdatedAt}).Error
}

// GetProgress returns a progress record by ID.
func (s *GormStore) GetProgress(id string) (domain.ReadingProgress, bool, error) {
	var model ReadingProgressModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReadingProgress{}, false, nil
		}
		return domain.ReadingProgress{}, false, err
	}
	return progressFromModel(model), true, nil
}

// GetProgressByPair returns the progress record for one (user, book) pair.
func (s *GormStore) GetProgressByPair(userID, bookID string) (domain.ReadingProgress, bool, error) {
	var model ReadingProgressModel
	if err := s.db.First(&model, "user_id = ? AND book_id = ?", userID, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReadingProgress{}, false, nil
		}
		return domain.ReadingProgress{}, false, err
	}
	return progressFromModel(model), true, nil
}

// ListProgressByUser returns all progress records for a user.
func (s *GormStore) ListProgressByUser(userID string) ([]domain.ReadingProgress, error) {
	var models []ReadingProgressModel
	if err := s.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ReadingProgress, 0, len(models))
	for _, m := range models {
		res = append(res, progressFromModel(m))
	}
	return res, nil
}

func bookToModel(b domain.Book) BookModel {
	return BookModel{
		ID:            b.ID,
		UserID:        b.UserID,
		Title:         b.Title,
		Author:        b.Author,
		Description:   b.Description,
		PublishedDate: b.PublishedDate,
		Genre:         b.Genre,
		Verified:      b.Verified,
		CoverKey:      b.CoverKey,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func bookFromModel(m BookModel) domain.Book {
	return domain.Book{
		ID:            m.ID,
		UserID:        m.UserID,
		Title:         m.Title,
		Author:        m.Author,
		Description:   m.Description,
		PublishedDate: m.PublishedDate,
		Genre:         m.Genre,
		Verified:      m.Verified,
		CoverKey:      m.CoverKey,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func reviewToModel(r domain.Review) ReviewModel {
	return ReviewModel{
		ID:        r.ID,
		BookID:    r.BookID,
		UserID:    r.UserID,
		Username:  r.Username,
		Content:   r.Content,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
	}
}

func reviewFromModel(m ReviewModel) domain.Review {
	return domain.Review{
		ID:        m.ID,
		BookID:    m.BookID,
		UserID:    m.UserID,
		Username:  m.Username,
		Content:   m.Content,
		Rating:    m.Rating,
		CreatedAt: m.CreatedAt,
	}
}

func shelfToModel(e domain.BookshelfEntry) BookshelfEntryModel {
	return BookshelfEntryModel{
		ID:        e.ID,
		UserID:    e.UserID,
		BookID:    e.BookID,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
	}
}

func shelfFromModel(m BookshelfEntryModel) domain.BookshelfEntry {
	return domain.BookshelfEntry{
		ID:        m.ID,
		UserID:    m.UserID,
		BookID:    m.BookID,
		Status:    domain.ShelfStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func progressToModel(p domain.ReadingProgress) ReadingProgressModel {
	return ReadingProgressModel{
		ID:         p.ID,
		UserID:     p.UserID,
		BookID:     p.BookID,
		Percentage: p.Percentage,
		UpdatedAt:  p.UpdatedAt,
	}
}

func progressFromModel(m ReadingProgressModel) domain.ReadingProgress {
	return domain.ReadingProgress{
		ID:         m.ID,
		UserID:     m.UserID,
		BookID:     m.BookID,
		Percentage: m.Percentage,
		UpdatedAt:  m.UpdatedAt,
	}
}
