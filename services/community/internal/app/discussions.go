package app

import (
	"context"
	"strings"
	"time"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/internal/util"
	"github.com/elzpil/bookclub/pkg/domain"
	"github.com/elzpil/bookclub/services/community/internal/store"
)

// DiscussionParams carries the discussion creation payload. At most one of
// GroupID, BookID, and ChallengeID may be set.
type DiscussionParams struct {
	GroupID     string
	BookID      string
	ChallengeID string
	Title       string
	Content     string
}

// CreateDiscussion starts a discussion. Group and challenge references are
// checked locally; book references are probed against the books service.
func (a *App) CreateDiscussion(ctx context.Context, caller authz.Caller, p DiscussionParams) (domain.Discussion, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return domain.Discussion{}, apperr.InvalidArgument("discussion title is required")
	}
	refs := 0
	for _, ref := range []string{p.GroupID, p.BookID, p.ChallengeID} {
		if ref != "" {
			refs++
		}
	}
	if refs > 1 {
		return domain.Discussion{}, apperr.InvalidArgument("discussion may reference only one of group, book, or challenge")
	}
	switch {
	case p.GroupID != "":
		if _, err := a.GetGroup(p.GroupID); err != nil {
			return domain.Discussion{}, err
		}
	case p.ChallengeID != "":
		if _, err := a.GetChallenge(p.ChallengeID); err != nil {
			return domain.Discussion{}, err
		}
	case p.BookID != "":
		if err := a.checkBookRef(ctx, p.BookID); err != nil {
			return domain.Discussion{}, err
		}
	}
	discussion := domain.Discussion{
		ID:          util.NewID(),
		UserID:      caller.UserID,
		GroupID:     p.GroupID,
		BookID:      p.BookID,
		ChallengeID: p.ChallengeID,
		Title:       title,
		Content:     strings.TrimSpace(p.Content),
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.SaveDiscussion(discussion); err != nil {
		return domain.Discussion{}, apperr.Internal("save discussion", err)
	}
	return discussion, nil
}

// GetDiscussion returns one discussion by ID.
func (a *App) GetDiscussion(id string) (domain.Discussion, error) {
	discussion, ok, err := a.store.GetDiscussion(id)
	if err != nil {
		return domain.Discussion{}, apperr.Internal("fetch discussion", err)
	}
	if !ok {
		return domain.Discussion{}, apperr.NotFound("Discussion not found with ID: %s", id)
	}
	return discussion, nil
}

// ListDiscussions returns discussions, optionally narrowed by one reference.
// When several filters are supplied only the highest-precedence one applies:
// group, then book, then challenge.
func (a *App) ListDiscussions(groupID, bookID, challengeID string) ([]domain.Discussion, error) {
	var filter store.DiscussionFilter
	switch {
	case groupID != "":
		filter.GroupID = groupID
	case bookID != "":
		filter.BookID = bookID
	case challengeID != "":
		filter.ChallengeID = challengeID
	}
	discussions, err := a.store.ListDiscussions(filter)
	if err != nil {
		return nil, apperr.Internal("list discussions", err)
	}
	return discussions, nil
}

// DiscussionUpdate is a partial update payload; nil fields are left
// unchanged.
type DiscussionUpdate struct {
	Title   *string
	Content *string
}

// UpdateDiscussion applies a partial update, gated to the author or an
// admin. References are immutable after creation.
func (a *App) UpdateDiscussion(caller authz.Caller, id string, update DiscussionUpdate) (domain.Discussion, error) {
	discussion, err := a.GetDiscussion(id)
	if err != nil {
		return domain.Discussion{}, err
	}
	if err := authz.OwnerOrAdmin(caller, discussion.UserID); err != nil {
		return domain.Discussion{}, err
	}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return domain.Discussion{}, apperr.InvalidArgument("discussion title is required")
		}
		discussion.Title = title
	}
	if update.Content != nil {
		discussion.Content = strings.TrimSpace(*update.Content)
	}
	if err := a.store.SaveDiscussion(discussion); err != nil {
		return domain.Discussion{}, apperr.Internal("update discussion", err)
	}
	return discussion, nil
}

// DeleteDiscussion removes a discussion and its comments, gated to the
// author or an admin.
func (a *App) DeleteDiscussion(caller authz.Caller, id string) error {
	discussion, err := a.GetDiscussion(id)
	if err != nil {
		return err
	}
	if err := authz.OwnerOrAdmin(caller, discussion.UserID); err != nil {
		return err
	}
	if err := a.store.DeleteDiscussion(id); err != nil {
		return apperr.Internal("delete discussion", err)
	}
	return nil
}

// CreateComment adds a comment to a discussion.
func (a *App) CreateComment(caller authz.Caller, discussionID, content string) (domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, apperr.InvalidArgument("comment content is required")
	}
	if _, err := a.GetDiscussion(discussionID); err != nil {
		return domain.Comment{}, err
	}
	comment := domain.Comment{
		ID:           util.NewID(),
		DiscussionID: discussionID,
		UserID:       caller.UserID,
		Content:      content,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveComment(comment); err != nil {
		return domain.Comment{}, apperr.Internal("save comment", err)
	}
	return comment, nil
}

// ListComments returns a discussion's comments.
func (a *App) ListComments(discussionID string) ([]domain.Comment, error) {
	if _, err := a.GetDiscussion(discussionID); err != nil {
		return nil, err
	}
	comments, err := a.store.ListComments(discussionID)
	if err != nil {
		return nil, apperr.Internal("list comments", err)
	}
	return comments, nil
}

// UpdateComment revises a comment's content, gated to the author or an
// admin.
func (a *App) UpdateComment(caller authz.Caller, id, content string) (domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, apperr.InvalidArgument("comment content is required")
	}
	comment, ok, err := a.store.GetComment(id)
	if err != nil {
		return domain.Comment{}, apperr.Internal("fetch comment", err)
	}
	if !ok {
		return domain.Comment{}, apperr.NotFound("Comment not found with ID: %s", id)
	}
	if err := authz.OwnerOrAdmin(caller, comment.UserID); err != nil {
		return domain.Comment{}, err
	}
	comment.Content = content
	if err := a.store.SaveComment(comment); err != nil {
		return domain.Comment{}, apperr.Internal("update comment", err)
	}
	return comment, nil
}

// DeleteComment removes a comment, gated to the author or an admin.
func (a *App) DeleteComment(caller authz.Caller, id string) error {
	comment, ok, err := a.store.GetComment(id)
	if err != nil {
		return apperr.Internal("fetch comment", err)
	}
	if !ok {
		return apperr.NotFound("Comment not found with ID: %s", id)
	}
	if err := authz.OwnerOrAdmin(caller, comment.UserID); err != nil {
		return err
	}
	if err := a.store.DeleteComment(id); err != nil {
		return apperr.Internal("delete comment", err)
	}
	return nil
}
