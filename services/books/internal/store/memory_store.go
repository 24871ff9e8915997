package store

import (
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/elzpil/bookclub/pkg/domain"
)

// MemoryStore keeps the catalog in-process for tests. It mirrors the GORM
// store's duplicate-key behavior on the one-per-(user, book) rules.
type MemoryStore struct {
	mu       sync.RWMutex
	books    map[string]domain.Book
	reviews  map[string]domain.Review
	shelf    map[string]domain.BookshelfEntry
	progress map[string]domain.ReadingProgress
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:    make(map[string]domain.Book),
		reviews:  make(map[string]domain.Review),
		shelf:    make(map[string]domain.BookshelfEntry),
		progress: make(map[string]domain.ReadingProgress),
	}
}

func (m *MemoryStore) SaveBook(b domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[b.ID] = b
	return nil
}

func (m *MemoryStore) GetBook(id string) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	return b, ok, nil
}

func (m *MemoryStore) ListBooks(filter BookFilter) ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0, len(m.books))
	for _, b := range m.books {
		switch {
		case filter.Genre != "" && b.Genre != filter.Genre:
			continue
		case filter.Author != "" && b.Author != filter.Author:
			continue
		case filter.Title != "" && b.Title != filter.Title:
			continue
		}
		res = append(res, b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) DeleteBook(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, id)
	for rid, r := range m.reviews {
		if r.BookID == id {
			delete(m.reviews, rid)
		}
	}
	for sid, e := range m.shelf {
		if e.BookID == id {
			delete(m.shelf, sid)
		}
	}
	for pid, p := range m.progress {
		if p.BookID == id {
			delete(m.progress, pid)
		}
	}
	return nil
}

func (m *MemoryStore) SaveReview(r domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.reviews {
		if id == r.ID {
			continue
		}
		if existing.BookID == r.BookID && existing.UserID == r.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.reviews[r.ID] = r
	return nil
}

func (m *MemoryStore) GetReview(id string) (domain.Review, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reviews[id]
	return r, ok, nil
}

func (m *MemoryStore) ListReviewsByBook(bookID string) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Review, 0)
	for _, r := range m.reviews {
		if r.BookID == bookID {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) DeleteReview(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reviews, id)
	return nil
}

func (m *MemoryStore) SaveShelfEntry(e domain.BookshelfEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.shelf {
		if id == e.ID {
			continue
		}
		if existing.UserID == e.UserID && existing.BookID == e.BookID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.shelf[e.ID] = e
	return nil
}

func (m *MemoryStore) GetShelfEntry(id string) (domain.BookshelfEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.shelf[id]
	return e, ok, nil
}

func (m *MemoryStore) ListShelfByUser(userID string) ([]domain.BookshelfEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.BookshelfEntry, 0)
	for _, e := range m.shelf {
		if e.UserID == userID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) DeleteShelfEntry(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.shelf, id)
	return nil
}

func (m *MemoryStore) SaveProgress(p domain.ReadingProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.progress {
		if id == p.ID {
			continue
		}
		if existing.UserID == p.UserID && existing.BookID == p.BookID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.progress[p.ID] = p
	return nil
}

func (m *MemoryStore) UpdateProgress(p domain.ReadingProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.progress[p.ID]
	if !ok {
		return nil
	}
	existing.Percentage = p.Percentage
	existing.UpdatedAt = p.UpdatedAt
	m.progress[p.ID] = existing
	return nil
}

func (m *MemoryStore) GetProgress(id string) (domain.ReadingProgress, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progress[id]
	return p, ok, nil
}

func (m *MemoryStore) GetProgressByPair(userID, bookID string) (domain.ReadingProgress, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.progress {
		if p.UserID == userID && p.BookID == bookID {
			return p, true, nil
		}
	}
	return domain.ReadingProgress{}, false, nil
}

func (m *MemoryStore) ListProgressByUser(userID string) ([]domain.ReadingProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.ReadingProgress, 0)
	for _, p := range m.progress {
		if p.UserID == userID {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UpdatedAt.After(res[j].UpdatedAt) })
	return res, nil
}
