package store

import (
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/elzpil/bookclub/pkg/domain"
)

// MemoryStore keeps community data in-process for tests. It mirrors the GORM
// store's duplicate-key behavior on the one-per-(user, entity) rules.
type MemoryStore struct {
	mu           sync.RWMutex
	groups       map[string]domain.Group
	memberships  map[string]domain.GroupMembership // key: groupID|userID
	discussions  map[string]domain.Discussion
	comments     map[string]domain.Comment
	events       map[string]domain.Event
	rsvps        map[string]domain.EventParticipant // key: eventID|userID
	challenges   map[string]domain.Challenge
	participants map[string]domain.ChallengeParticipant // key: challengeID|userID
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		groups:       make(map[string]domain.Group),
		memberships:  make(map[string]domain.GroupMembership),
		discussions:  make(map[string]domain.Discussion),
		comments:     make(map[string]domain.Comment),
		events:       make(map[string]domain.Event),
		rsvps:        make(map[string]domain.EventParticipant),
		challenges:   make(map[string]domain.Challenge),
		participants: make(map[string]domain.ChallengeParticipant),
	}
}

func (m *MemoryStore) SaveGroup(g domain.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[g.ID] = g
	return nil
}

func (m *MemoryStore) GetGroup(id string) (domain.Group, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	return g, ok, nil
}

func (m *MemoryStore) ListGroups() ([]domain.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Group, 0, len(m.groups))
	for _, g := range m.groups {
		res = append(res, g)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) DeleteGroup(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, id)
	for key, mem := range m.memberships {
		if mem.GroupID == id {
			delete(m.memberships, key)
		}
	}
	for eid, ev := range m.events {
		if ev.GroupID != id {
			continue
		}
		for key, p := range m.rsvps {
			if p.EventID == eid {
				delete(m.rsvps, key)
			}
		}
		delete(m.events, eid)
	}
	for did, d := range m.discussions {
		if d.GroupID != id {
			continue
		}
		for cid, c := range m.comments {
			if c.DiscussionID == did {
				delete(m.comments, cid)
			}
		}
		delete(m.discussions, did)
	}
	return nil
}

func (m *MemoryStore) SaveMembership(mem domain.GroupMembership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := mem.GroupID + "|" + mem.UserID
	if _, exists := m.memberships[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	m.memberships[key] = mem
	return nil
}

func (m *MemoryStore) GetMembership(groupID, userID string) (domain.GroupMembership, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mem, ok := m.memberships[groupID+"|"+userID]
	return mem, ok, nil
}

func (m *MemoryStore) DeleteMembership(groupID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := groupID + "|" + userID
	if _, exists := m.memberships[key]; !exists {
		return false, nil
	}
	delete(m.memberships, key)
	return true, nil
}

func (m *MemoryStore) ListMembers(groupID string) ([]domain.GroupMembership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.GroupMembership, 0)
	for _, mem := range m.memberships {
		if mem.GroupID == groupID {
			res = append(res, mem)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) SaveDiscussion(d domain.Discussion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discussions[d.ID] = d
	return nil
}

func (m *MemoryStore) GetDiscussion(id string) (domain.Discussion, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.discussions[id]
	return d, ok, nil
}

func (m *MemoryStore) ListDiscussions(filter DiscussionFilter) ([]domain.Discussion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Discussion, 0, len(m.discussions))
	for _, d := range m.discussions {
		switch {
		case filter.GroupID != "" && d.GroupID != filter.GroupID:
			continue
		case filter.BookID != "" && d.BookID != filter.BookID:
			continue
		case filter.ChallengeID != "" && d.ChallengeID != filter.ChallengeID:
			continue
		}
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) DeleteDiscussion(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.discussions, id)
	for cid, c := range m.comments {
		if c.DiscussionID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (m *MemoryStore) SaveComment(c domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ID] = c
	return nil
}

func (m *MemoryStore) GetComment(id string) (domain.Comment, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.comments[id]
	return c, ok, nil
}

func (m *MemoryStore) ListComments(discussionID string) ([]domain.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Comment, 0)
	for _, c := range m.comments {
		if c.DiscussionID == discussionID {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) DeleteComment(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.comments, id)
	return nil
}

func (m *MemoryStore) SaveEvent(e domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = e
	return nil
}

func (m *MemoryStore) GetEvent(id string) (domain.Event, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	return e, ok, nil
}

func (m *MemoryStore) ListEvents(groupID string) ([]domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Event, 0)
	for _, e := range m.events {
		if groupID == "" || e.GroupID == groupID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].EventTime.Before(res[j].EventTime) })
	return res, nil
}

func (m *MemoryStore) DeleteEvent(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	for key, p := range m.rsvps {
		if p.EventID == id {
			delete(m.rsvps, key)
		}
	}
	return nil
}

func (m *MemoryStore) UpsertEventParticipant(p domain.EventParticipant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := p.EventID + "|" + p.UserID
	if existing, ok := m.rsvps[key]; ok {
		existing.Status = p.Status
		m.rsvps[key] = existing
		return nil
	}
	m.rsvps[key] = p
	return nil
}

func (m *MemoryStore) DeleteEventParticipant(eventID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := eventID + "|" + userID
	if _, exists := m.rsvps[key]; !exists {
		return false, nil
	}
	delete(m.rsvps, key)
	return true, nil
}

func (m *MemoryStore) ListEventParticipants(eventID string) ([]domain.EventParticipant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.EventParticipant, 0)
	for _, p := range m.rsvps {
		if p.EventID == eventID {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) SaveChallenge(c domain.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challenges[c.ID] = c
	return nil
}

func (m *MemoryStore) GetChallenge(id string) (domain.Challenge, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.challenges[id]
	return c, ok, nil
}

func (m *MemoryStore) ListChallenges() ([]domain.Challenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Challenge, 0, len(m.challenges))
	for _, c := range m.challenges {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) DeleteChallenge(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.challenges, id)
	for key, p := range m.participants {
		if p.ChallengeID == id {
			delete(m.participants, key)
		}
	}
	return nil
}

func (m *MemoryStore) SaveChallengeParticipant(p domain.ChallengeParticipant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := p.ChallengeID + "|" + p.UserID
	if _, exists := m.participants[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	m.participants[key] = p
	return nil
}

func (m *MemoryStore) GetChallengeParticipant(challengeID, userID string) (domain.ChallengeParticipant, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.participants[challengeID+"|"+userID]
	return p, ok, nil
}

func (m *MemoryStore) UpdateChallengeParticipant(p domain.ChallengeParticipant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := p.ChallengeID + "|" + p.UserID
	if existing, ok := m.participants[key]; ok {
		existing.BooksRead = p.BooksRead
		m.participants[key] = existing
	}
	return nil
}

func (m *MemoryStore) DeleteChallengeParticipant(challengeID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := challengeID + "|" + userID
	if _, exists := m.participants[key]; !exists {
		return false, nil
	}
	delete(m.participants, key)
	return true, nil
}

func (m *MemoryStore) ListChallengeParticipants(challengeID string) ([]domain.ChallengeParticipant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.ChallengeParticipant, 0)
	for _, p := range m.participants {
		if p.ChallengeID == challengeID {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}
