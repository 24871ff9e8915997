package store

import (
	"github.com/elzpil/bookclub/pkg/domain"
)

func groupToModel(g domain.Group) GroupModel {
	return GroupModel{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatorID:   g.CreatorID,
		CreatedAt:   g.CreatedAt,
	}
}

func groupFromModel(m GroupModel) domain.Group {
	return domain.Group{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatorID:   m.CreatorID,
		CreatedAt:   m.CreatedAt,
	}
}

func membershipToModel(g domain.GroupMembership) GroupMembershipModel {
	return GroupMembershipModel{
		ID:        g.ID,
		GroupID:   g.GroupID,
		UserID:    g.UserID,
		Role:      string(g.Role),
		CreatedAt: g.CreatedAt,
	}
}

func membershipFromModel(m GroupMembershipModel) domain.GroupMembership {
	role := domain.MemberRole(m.Role)
	if role == "" {
		role = domain.MemberMember
	}
	return domain.GroupMembership{
		ID:        m.ID,
		GroupID:   m.GroupID,
		UserID:    m.UserID,
		Role:      role,
		CreatedAt: m.CreatedAt,
	}
}

func discussionToModel(d domain.Discussion) DiscussionModel {
	return DiscussionModel{
		ID:          d.ID,
		UserID:      d.UserID,
		GroupID:     d.GroupID,
		BookID:      d.BookID,
		ChallengeID: d.ChallengeID,
		Title:       d.Title,
		Content:     d.Content,
		CreatedAt:   d.CreatedAt,
	}
}

func discussionFromModel(m DiscussionModel) domain.Discussion {
	return domain.Discussion{
		ID:          m.ID,
		UserID:      m.UserID,
		GroupID:     m.GroupID,
		BookID:      m.BookID,
		ChallengeID: m.ChallengeID,
		Title:       m.Title,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
	}
}

func commentToModel(c domain.Comment) CommentModel {
	return CommentModel{
		ID:           c.ID,
		DiscussionID: c.DiscussionID,
		UserID:       c.UserID,
		Content:      c.Content,
		CreatedAt:    c.CreatedAt,
	}
}

func commentFromModel(m CommentModel) domain.Comment {
	return domain.Comment{
		ID:           m.ID,
		DiscussionID: m.DiscussionID,
		UserID:       m.UserID,
		Content:      m.Content,
		CreatedAt:    m.CreatedAt,
	}
}

func eventToModel(e domain.Event) EventModel {
	return EventModel{
		ID:          e.ID,
		GroupID:     e.GroupID,
		CreatorID:   e.CreatorID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		EventTime:   e.EventTime,
		CreatedAt:   e.CreatedAt,
	}
}

func eventFromModel(m EventModel) domain.Event {
	return domain.Event{
		ID:          m.ID,
		GroupID:     m.GroupID,
		CreatorID:   m.CreatorID,
		Title:       m.Title,
		Description: m.Description,
		Location:    m.Location,
		EventTime:   m.EventTime,
		CreatedAt:   m.CreatedAt,
	}
}

func eventParticipantToModel(p domain.EventParticipant) EventParticipantModel {
	return EventParticipantModel{
		ID:        p.ID,
		EventID:   p.EventID,
		UserID:    p.UserID,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
}

func eventParticipantFromModel(m EventParticipantModel) domain.EventParticipant {
	return domain.EventParticipant{
		ID:        m.ID,
		EventID:   m.EventID,
		UserID:    m.UserID,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

func challengeToModel(c domain.Challenge) ChallengeModel {
	return ChallengeModel{
		ID:          c.ID,
		CreatorID:   c.CreatorID,
		Name:        c.Name,
		Description: c.Description,
		Goal:        c.Goal,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		CreatedAt:   c.CreatedAt,
	}
}

func challengeFromModel(m ChallengeModel) domain.Challenge {
	return domain.Challenge{
		ID:          m.ID,
		CreatorID:   m.CreatorID,
		Name:        m.Name,
		Description: m.Description,
		Goal:        m.Goal,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		CreatedAt:   m.CreatedAt,
	}
}

func challengeParticipantToModel(p domain.ChallengeParticipant) ChallengeParticipantModel {
	return ChallengeParticipantModel{
		ID:          p.ID,
		ChallengeID: p.ChallengeID,
		UserID:      p.UserID,
		BooksRead:   p.BooksRead,
		CreatedAt:   p.CreatedAt,
	}
}

func challengeParticipantFromModel(m ChallengeParticipantModel) domain.ChallengeParticipant {
	return domain.ChallengeParticipant{
		ID:          m.ID,
		ChallengeID: m.ChallengeID,
		UserID:      m.UserID,
		BooksRead:   m.BooksRead,
		CreatedAt:   m.CreatedAt,
	}
}
