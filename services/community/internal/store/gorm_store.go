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
	if err := db.AutoMigrate(
		&GroupModel{}, &GroupMembershipModel{},
		&DiscussionModel{}, &CommentModel{},
		&EventModel{}, &EventParticipantModel{},
		&ChallengeModel{}, &ChallengeParticipantModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveGroup creates or updates a group.
func (s *GormStore) SaveGroup(g domain.Group) error {
	model := groupToModel(g)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description"}),
	}).Create(&model).Error
}

// GetGroup returns a group by ID.
func (s *GormStore) GetGroup(id string) (domain.Group, bool, error) {
	var model GroupModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Group{}, false, nil
		}
		return domain.Group{}, false, err
	}
	return groupFromModel(model), true, nil
}

// ListGroups returns all groups, oldest first.
func (s *GormStore) ListGroups() ([]domain.Group, error) {
	var models []GroupModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Group, 0, len(models))
	for _, m := range models {
		res = append(res, groupFromModel(m))
	}
	return res, nil
}

// DeleteGroup removes a group together with its memberships, events, RSVPs,
// and group-scoped discussions.
func (s *GormStore) DeleteGroup(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&GroupMembershipModel{}, "group_id = ?", id).Error; err != nil {
			return err
		}
		var events []EventModel
		if err := tx.Where("group_id = ?", id).Find(&events).Error; err != nil {
			return err
		}
		for _, ev := range events {
			if err := tx.Delete(&EventParticipantModel{}, "event_id = ?", ev.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&EventModel{}, "group_id = ?", id).Error; err != nil {
			return err
		}
		var discussions []DiscussionModel
		if err := tx.Where("group_id = ?", id).Find(&discussions).Error; err != nil {
			return err
		}
		for _, d := range discussions {
			if err := tx.Delete(&CommentModel{}, "discussion_id = ?", d.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&DiscussionModel{}, "group_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&GroupModel{}, "id = ?", id).Error
	})
}

// SaveMembership inserts a membership. Joining twice surfaces as
// gorm.ErrDuplicatedKey via the composite unique index.
func (s *GormStore) SaveMembership(m domain.GroupMembership) error {
	model := membershipToModel(m)
	return s.db.Create(&model).Error
}

// GetMembership returns one (group, user) membership.
func (s *GormStore) GetMembership(groupID, userID string) (domain.GroupMembership, bool, error) {
	var model GroupMembershipModel
	if err := s.db.First(&model, "group_id = ? AND user_id = ?", groupID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.GroupMembership{}, false, nil
		}
		return domain.GroupMembership{}, false, err
	}
	return membershipFromModel(model), true, nil
}

// DeleteMembership removes a membership and reports whether it existed.
func (s *GormStore) DeleteMembership(groupID, userID string) (bool, error) {
	res := s.db.Delete(&GroupMembershipModel{}, "group_id = ? AND user_id = ?", groupID, userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListMembers returns a group's memberships, oldest first.
func (s *GormStore) ListMembers(groupID string) ([]domain.GroupMembership, error) {
	var models []GroupMembershipModel
	if err := s.db.Where("group_id = ?", groupID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.GroupMembership, 0, len(models))
	for _, m := range models {
		res = append(res, membershipFromModel(m))
	}
	return res, nil
}

// SaveDiscussion creates or updates a discussion.
func (s *GormStore) SaveDiscussion(d domain.Discussion) error {
	model := discussionToModel(d)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "content"}),
	}).Create(&model).Error
}

// GetDiscussion returns a discussion by ID.
func (s *GormStore) GetDiscussion(id string) (domain.Discussion, bool, error) {
	var model DiscussionModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Discussion{}, false, nil
		}
		return domain.Discussion{}, false, err
	}
	return discussionFromModel(model), true, nil
}

// ListDiscussions returns discussions matching the filter, newest first.
func (s *GormStore) ListDiscussions(filter DiscussionFilter) ([]domain.Discussion, error) {
	q := s.db.Order("created_at DESC")
	switch {
	case filter.GroupID != "":
		q = q.Where("group_id = ?", filter.GroupID)
	case filter.BookID != "":
		q = q.Where("book_id = ?", filter.BookID)
	case filter.ChallengeID != "":
		q = q.Where("challenge_id = ?", filter.ChallengeID)
	}
	var models []DiscussionModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Discussion, 0, len(models))
	for _, m := range models {
		res = append(res, discussionFromModel(m))
	}
	return res, nil
}

// DeleteDiscussion removes a discussion and its comments.
func (s *GormStore) DeleteDiscussion(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&CommentModel{}, "discussion_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&DiscussionModel{}, "id = ?", id).Error
	})
}

// SaveComment creates or updates a comment.
func (s *GormStore) SaveComment(c domain.Comment) error {
	model := commentToModel(c)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content"}),
	}).Create(&model).Error
}

// GetComment returns a comment by ID.
func (s *GormStore) GetComment(id string) (domain.Comment, bool, error) {
	var model CommentModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Comment{}, false, nil
		}
		return domain.Comment{}, false, err
	}
	return commentFromModel(model), true, nil
}

// ListComments returns a discussion's comments, oldest first.
func (s *GormStore) ListComments(discussionID string) ([]domain.Comment, error) {
	var models []CommentModel
	if err := s.db.Where("discussion_id = ?", discussionID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Comment, 0, len(models))
	for _, m := range models {
		res = append(res, commentFromModel(m))
	}
	return res, nil
}

// DeleteComment removes a comment by ID.
func (s *GormStore) DeleteComment(id string) error {
	return s.db.Delete(&CommentModel{}, "id = ?", id).Error
}

// SaveEvent creates or updates an event.
func (s *GormStore) SaveEvent(e domain.Event) error {
	model := eventToModel(e)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "location", "event_time"}),
	}).Create(&model).Error
}

// GetEvent returns an event by ID.
func (s *GormStore) GetEvent(id string) (domain.Event, bool, error) {
	var model EventModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Event{}, false, nil
		}
		return domain.Event{}, false, err
	}
	return eventFromModel(model), true, nil
}

// ListEvents returns events, optionally scoped to one group, soonest first.
func (s *GormStore) ListEvents(groupID string) ([]domain.Event, error) {
	q := s.db.Order("event_time ASC")
	if groupID != "" {
		q = q.Where("group_id = ?", groupID)
	}
	var models []EventModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Event, 0, len(models))
	for _, m := range models {
		res = append(res, eventFromModel(m))
	}
	return res, nil
}

// DeleteEvent removes an event and its RSVPs.
func (s *GormStore) DeleteEvent(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&EventParticipantModel{}, "event_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&EventModel{}, "id = ?", id).Error
	})
}

// UpsertEventParticipant records or revises an RSVP. The composite unique
// index keys the upsert, so a second RSVP updates the status in place.
func (s *GormStore) UpsertEventParticipant(p domain.EventParticipant) error {
	model := eventParticipantToModel(p)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status"}),
	}).Create(&model).Error
}

// DeleteEventParticipant removes an RSVP and reports whether it existed.
func (s *GormStore) DeleteEventParticipant(eventID, userID string) (bool, error) {
	res := s.db.Delete(&EventParticipantModel{}, "event_id = ? AND user_id = ?", eventID, userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListEventParticipants returns an event's RSVPs, oldest first.
func (s *GormStore) ListEventParticipants(eventID string) ([]domain.EventParticipant, error) {
	var models []EventParticipantModel
	if err := s.db.Where("event_id = ?", eventID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.EventParticipant, 0, len(models))
	for _, m := range models {
		res = append(res, eventParticipantFromModel(m))
	}
	return res, nil
}

// SaveChallenge creates or updates a challenge.
func (s *GormStore) SaveChallenge(c domain.Challenge) error {
	model := challengeToModel(c)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "goal", "start_date", "end_date"}),
	}).Create(&model).Error
}

// GetChallenge returns a challenge by ID.
func (s *GormStore) GetChallenge(id string) (domain.Challenge, bool, error) {
	var model ChallengeModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Challenge{}, false, nil
		}
		return domain.Challenge{}, false, err
	}
	return challengeFromModel(model), true, nil
}

// ListChallenges returns all challenges, newest first.
func (s *GormStore) ListChallenges() ([]domain.Challenge, error) {
	var models []ChallengeModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Challenge, 0, len(models))
	for _, m := range models {
		res = append(res, challengeFromModel(m))
	}
	return res, nil
}

// DeleteChallenge removes a challenge and its participants.
func (s *GormStore) DeleteChallenge(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ChallengeParticipantModel{}, "challenge_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&ChallengeModel{}, "id = ?", id).Error
	})
}

// SaveChallengeParticipant inserts a participation record. Joining twice
// surfaces as gorm.ErrDuplicatedKey via the composite unique index.
func (s *GormStore) SaveChallengeParticipant(p domain.ChallengeParticipant) error {
	model := challengeParticipantToModel(p)
	return s.db.Create(&model).Error
}

// GetChallengeParticipant returns one (challenge, user) participation record.
func (s *GormStore) GetChallengeParticipant(challengeID, userID string) (domain.ChallengeParticipant, bool, error) {
	var model ChallengeParticipantModel
	if err := s.db.First(&model, "challenge_id = ? AND user_id = ?", challengeID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ChallengeParticipant{}, false, nil
		}
		return domain.ChallengeParticipant{}, false, err
	}
	return challengeParticipantFromModel(model), true, nil
}

// UpdateChallengeParticipant revises a participant's progress count.
func (s *GormStore) UpdateChallengeParticipant(p domain.ChallengeParticipant) error {
	return s.db.Model(&ChallengeParticipantModel{}).Where("id = ?", p.ID).
		Update("books_read", p.BooksRead).Error
}

// DeleteChallengeParticipant removes a participation record and reports
// whether it existed.
func (s *GormStore) DeleteChallengeParticipant(challengeID, userID string) (bool, error) {
	res := s.db.Delete(&ChallengeParticipantModel{}, "challenge_id = ? AND user_id = ?", challengeID, userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListChallengeParticipants returns a challenge's participants, oldest first.
func (s *GormStore) ListChallengeParticipants(challengeID string) ([]domain.ChallengeParticipant, error) {
	var models []ChallengeParticipantModel
	if err := s.db.Where("challenge_id = ?", challengeID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ChallengeParticipant, 0, len(models))
	for _, m := range models {
		res = append(res, challengeParticipantFromModel(m))
	}
	return res, nil
}
