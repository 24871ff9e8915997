package store

import (
	"sync"

	"gorm.io/gorm"

	"github.com/elzpil/bookclub/pkg/domain"
)

// MemoryStore keeps users and follower edges in-process for tests.
// It mirrors the GORM store's duplicate-key behavior.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	order     []string
	followers map[string]domain.Follower // key: userID|followingID
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]domain.User),
		followers: make(map[string]domain.Follower),
	}
}

// SaveUser stores or replaces a user record.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.users {
		if id == u.ID {
			continue
		}
		if existing.Email == u.Email || existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if _, exists := m.users[u.ID]; !exists {
		m.order = append(m.order, u.ID)
	}
	m.users[u.ID] = u
	return nil
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.User, 0, len(m.order))
	for _, id := range m.order {
		if u, ok := m.users[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

func (m *MemoryStore) DeleteUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	for key, f := range m.followers {
		if f.UserID == id || f.FollowingID == id {
			delete(m.followers, key)
		}
	}
	return nil
}

func (m *MemoryStore) SaveFollower(f domain.Follower) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := f.UserID + "|" + f.FollowingID
	if _, exists := m.followers[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	m.followers[key] = f
	return nil
}

func (m *MemoryStore) DeleteFollower(userID, followingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + "|" + followingID
	if _, exists := m.followers[key]; !exists {
		return false, nil
	}
	delete(m.followers, key)
	return true, nil
}

func (m *MemoryStore) ListFollowers(userID string) ([]domain.Follower, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Follower, 0)
	for _, f := range m.followers {
		if f.FollowingID == userID {
			res = append(res, f)
		}
	}
	return res, nil
}

func (m *MemoryStore) ListFollowing(userID string) ([]domain.Follower, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Follower, 0)
	for _, f := range m.followers {
		if f.UserID == userID {
			res = append(res, f)
		}
	}
	return res, nil
}
