package store

import (
	"github.com/elzpil/bookclub/pkg/domain"
)

// DiscussionFilter narrows a discussion listing. At most one field is
// applied; the service layer resolves the group → book → challenge precedence
// before the filter reaches the store.
type DiscussionFilter struct {
	GroupID     string
	BookID      string
	ChallengeID string
}

// Store defines persistence operations for groups, discussions, events, and
// challenges.
//
// One-per-(user, entity) rules for memberships, event RSVPs, and challenge
// participants are enforced by composite database unique indexes;
// implementations surface violations as gorm.ErrDuplicatedKey.
type Store interface {
	// groups
	SaveGroup(domain.Group) error
	GetGroup(id string) (domain.Group, bool, error)
	ListGroups() ([]domain.Group, error)
	DeleteGroup(id string) error
	SaveMembership(domain.GroupMembership) error
	GetMembership(groupID, userID string) (domain.GroupMembership, bool, error)
	DeleteMembership(groupID, userID string) (bool, error)
	ListMembers(groupID string) ([]domain.GroupMembership, error)

	// discussions
	SaveDiscussion(domain.Discussion) error
	GetDiscussion(id string) (domain.Discussion, bool, error)
	ListDiscussions(filter DiscussionFilter) ([]domain.Discussion, error)
	DeleteDiscussion(id string) error
	SaveComment(domain.Comment) error
	GetComment(id string) (domain.Comment, bool, error)
	ListComments(discussionID string) ([]domain.Comment, error)
	DeleteComment(id string) error

	// events
	SaveEvent(domain.Event) error
	GetEvent(id string) (domain.Event, bool, error)
	ListEvents(groupID string) ([]domain.Event, error)
	DeleteEvent(id string) error
	UpsertEventParticipant(domain.EventParticipant) error
	DeleteEventParticipant(eventID, userID string) (bool, error)
	ListEventParticipants(eventID string) ([]domain.EventParticipant, error)

	// challenges
	SaveChallenge(domain.Challenge) error
	GetChallenge(id string) (domain.Challenge, bool, error)
	ListChallenges() ([]domain.Challenge, error)
	DeleteChallenge(id string) error
	SaveChallengeParticipant(domain.ChallengeParticipant) error
	GetChallengeParticipant(challengeID, userID string) (domain.ChallengeParticipant, bool, error)
	UpdateChallengeParticipant(domain.ChallengeParticipant) error
	DeleteChallengeParticipant(challengeID, userID string) (bool, error)
	ListChallengeParticipants(challengeID string) ([]domain.ChallengeParticipant, error)
}
