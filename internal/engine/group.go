package engine

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/models"
	"github.com/luanafs/clube/internal/repository"
)

// CreateGroup creates a group and the owner's membership in one
// transaction, so a group can never exist without its owner holding the
// owner role.
func (e *Engine) CreateGroup(ctx context.Context, ownerID uuid.UUID, name, description string) (*models.Group, error) {
	var group *models.Group
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		var err error
		group, err = s.Groups.Create(ctx, name, description, ownerID)
		if err != nil {
			return err
		}
		_, err = s.Memberships.Create(ctx, group.ID, ownerID, models.RoleOwner)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, "group.created", map[string]any{"id": group.ID})
	return group, nil
}

// GetGroup returns the group if the caller is a member of it.
func (e *Engine) GetGroup(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, error) {
	var group *models.Group
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		var err error
		group, err = requireMember(ctx, s, groupID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsForUser returns the groups the user belongs to, newest first.
func (e *Engine) ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	var groups []models.Group
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		ids, err := s.Memberships.GroupIDsForUser(ctx, userID)
		if err != nil {
			return err
		}
		groups, err = s.Groups.ListByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Standing describes a user's relationship to a group: their membership,
// their pending join request, and whether they own it. Any of the pointers
// may be nil.
type Standing struct {
	Membership     *models.Membership  `json:"membership"`
	PendingRequest *models.JoinRequest `json:"pending_request"`
	IsOwner        bool                `json:"is_owner"`
}

// GroupStanding reports where the user stands with the group. Unlike
// GetGroup this works for non-members: it is what a join screen renders.
func (e *Engine) GroupStanding(ctx context.Context, groupID, userID uuid.UUID) (*Standing, error) {
	var standing Standing
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		group, err := s.Groups.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		standing.IsOwner = group.OwnerID == userID

		m, err := s.Memberships.Get(ctx, groupID, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		standing.Membership = m

		jr, err := s.JoinRequests.FindPending(ctx, groupID, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		standing.PendingRequest = jr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &standing, nil
}

// ListMembers returns the group's members, owner first, then mods, then
// members, each tier oldest first. Member-only read.
func (e *Engine) ListMembers(ctx context.Context, groupID, actorID uuid.UUID) ([]models.Membership, error) {
	var members []models.Membership
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := requireMember(ctx, s, groupID, actorID); err != nil {
			return err
		}
		var err error
		members, err = s.Memberships.ListByGroup(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Role.Weight() < members[j].Role.Weight()
	})
	return members, nil
}
