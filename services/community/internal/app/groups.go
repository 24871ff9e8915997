package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/elzpil/bookclub/internal/apperr"
	"github.com/elzpil/bookclub/internal/authz"
	"github.com/elzpil/bookclub/internal/util"
	"github.com/elzpil/bookclub/pkg/domain"
)

// GroupParams carries the group creation payload.
type GroupParams struct {
	Name        string
	Description string
}

// CreateGroup creates a group and enrolls the caller as its admin member.
func (a *App) CreateGroup(caller authz.Caller, p GroupParams) (domain.Group, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return domain.Group{}, apperr.InvalidArgument("group name is required")
	}
	now := time.Now().UTC()
	group := domain.Group{
		ID:          util.NewID(),
		Name:        name,
		Description: strings.TrimSpace(p.Description),
		CreatorID:   caller.UserID,
		CreatedAt:   now,
	}
	if err := a.store.SaveGroup(group); err != nil {
		return domain.Group{}, apperr.Internal("save group", err)
	}
	membership := domain.GroupMembership{
		ID:        util.NewID(),
		GroupID:   group.ID,
		UserID:    caller.UserID,
		Role:      domain.MemberAdmin,
		CreatedAt: now,
	}
	if err := a.store.SaveMembership(membership); err != nil {
		return domain.Group{}, apperr.Internal("save creator membership", err)
	}
	return group, nil
}

// GetGroup returns one group by ID.
func (a *App) GetGroup(id string) (domain.Group, error) {
	group, ok, err := a.store.GetGroup(id)
	if err != nil {
		return domain.Group{}, apperr.Internal("fetch group", err)
	}
	if !ok {
		return domain.Group{}, apperr.NotFound("Group not found with ID: %s", id)
	}
	return group, nil
}

// ListGroups returns all groups.
func (a *App) ListGroups() ([]domain.Group, error) {
	groups, err := a.store.ListGroups()
	if err != nil {
		return nil, apperr.Internal("list groups", err)
	}
	return groups, nil
}

// GroupUpdate is a partial update payload; nil fields are left unchanged.
type GroupUpdate struct {
	Name        *string
	Description *string
}

// UpdateGroup applies a partial update, gated to the creator or an admin.
func (a *App) UpdateGroup(caller authz.Caller, id string, update GroupUpdate) (domain.Group, error) {
	group, err := a.GetGroup(id)
	if err != nil {
		return domain.Group{}, err
	}
	if err := authz.OwnerOrAdmin(caller, group.CreatorID); err != nil {
		return domain.Group{}, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return domain.Group{}, apperr.InvalidArgument("group name is required")
		}
		group.Name = name
	}
	if update.Description != nil {
		group.Description = strings.TrimSpace(*update.Description)
	}
	if err := a.store.SaveGroup(group); err != nil {
		return domain.Group{}, apperr.Internal("update group", err)
	}
	return group, nil
}

// DeleteGroup removes a group and its dependent records, gated to the
// creator or an admin.
func (a *App) DeleteGroup(caller authz.Caller, id string) error {
	group, err := a.GetGroup(id)
	if err != nil {
		return err
	}
	if err := authz.OwnerOrAdmin(caller, group.CreatorID); err != nil {
		return err
	}
	if err := a.store.DeleteGroup(id); err != nil {
		return apperr.Internal("delete group", err)
	}
	return nil
}

// JoinGroup enrolls the caller as a regular member.
func (a *App) JoinGroup(caller authz.Caller, groupID string) (domain.GroupMembership, error) {
	if _, err := a.GetGroup(groupID); err != nil {
		return domain.GroupMembership{}, err
	}
	membership := domain.GroupMembership{
		ID:        util.NewID(),
		GroupID:   groupID,
		UserID:    caller.UserID,
		Role:      domain.MemberMember,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveMembership(membership); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.GroupMembership{}, apperr.Conflict("already a member of this group")
		}
		return domain.GroupMembership{}, apperr.Internal("save membership", err)
	}
	return membership, nil
}

// LeaveGroup removes the caller's membership. The creator cannot leave their
// own group; they delete it instead.
func (a *App) LeaveGroup(caller authz.Caller, groupID string) error {
	group, err := a.GetGroup(groupID)
	if err != nil {
		return err
	}
	if group.CreatorID == caller.UserID {
		return apperr.InvalidArgument("group creator cannot leave the group")
	}
	removed, err := a.store.DeleteMembership(groupID, caller.UserID)
	if err != nil {
		return apperr.Internal("delete membership", err)
	}
	if !removed {
		return apperr.NotFound("not a member of this group")
	}
	return nil
}

// ListMembers returns a group's memberships.
func (a *App) ListMembers(groupID string) ([]domain.GroupMembership, error) {
	if _, err := a.GetGroup(groupID); err != nil {
		return nil, err
	}
	members, err := a.store.ListMembers(groupID)
	if err != nil {
		return nil, apperr.Internal("list members", err)
	}
	return members, nil
}

// AddMember enrolls another user into the group. Only the group creator, a
// group moderator, or a platform admin may add members; the target user is
// verified against the users service before the membership is written.
func (a *App) AddMember(ctx context.Context, caller authz.Caller, groupID, userID string, role domain.MemberRole) (domain.GroupMembership, error) {
	group, err := a.GetGroup(groupID)
	if err != nil {
		return domain.GroupMembership{}, err
	}
	if err := a.requireGroupModerator(caller, group); err != nil {
		return domain.GroupMembership{}, err
	}
	if role == "" {
		role = domain.MemberMember
	}
	if !validMemberRole(role) {
		return domain.GroupMembership{}, apperr.InvalidArgument("invalid member role %q", role)
	}
	if err := a.checkUserRef(ctx, userID); err != nil {
		return domain.GroupMembership{}, err
	}
	membership := domain.GroupMembership{
		ID:        util.NewID(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveMembership(membership); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.GroupMembership{}, apperr.Conflict("user is already a member of this group")
		}
		return domain.GroupMembership{}, apperr.Internal("save membership", err)
	}
	return membership, nil
}

// RemoveMember removes another user from the group, gated to the creator, a
// moderator, or a platform admin.
func (a *App) RemoveMember(caller authz.Caller, groupID, userID string) error {
	group, err := a.GetGroup(groupID)
	if err != nil {
		return err
	}
	if err := a.requireGroupModerator(caller, group); err != nil {
		return err
	}
	if userID == group.CreatorID {
		return apperr.InvalidArgument("group creator cannot be removed")
	}
	removed, err := a.store.DeleteMembership(groupID, userID)
	if err != nil {
		return apperr.Internal("delete membership", err)
	}
	if !removed {
		return apperr.NotFound("user is not a member of this group")
	}
	return nil
}

// requireGroupModerator passes for the group creator, members holding an
// admin or moderator role, and platform admins.
func (a *App) requireGroupModerator(caller authz.Caller, group domain.Group) error {
	if caller.UserID == group.CreatorID || caller.IsAdmin() {
		return nil
	}
	membership, ok, err := a.store.GetMembership(group.ID, caller.UserID)
	if err != nil {
		return apperr.Internal("fetch membership", err)
	}
	if ok && (membership.Role == domain.MemberAdmin || membership.Role == domain.MemberModerator) {
		return nil
	}
	return apperr.Unauthorized("not allowed to manage this group's members")
}

func validMemberRole(r domain.MemberRole) bool {
	switch r {
	case domain.MemberAdmin, domain.MemberModerator, domain.MemberMember:
		return true
	}
	return false
}
