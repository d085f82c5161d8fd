package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/models"
	"github.com/luanafs/clube/internal/repository"
)

// ChangeMemberRole sets a member's role. Owner-only. Setting the role the
// member already holds is a harmless overwrite; a missing membership is
// ErrNotFound from the store.
func (e *Engine) ChangeMemberRole(ctx context.Context, actorID, groupID, userID uuid.UUID, role models.Role) error {
	return e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		group, err := requireOwner(ctx, s, groupID, actorID)
		if err != nil {
			return err
		}
		// The owner's own row must keep the owner role; ownership moves
		// via a transfer, not a role edit.
		if userID == group.OwnerID && role != models.RoleOwner {
			return ErrInvalidState
		}
		return s.Memberships.UpdateRole(ctx, groupID, userID, role)
	})
}

// RemoveMember removes a user from a group. Owner-only. The group owner
// cannot be removed: ownership must be reassigned first, and that policy
// belongs here rather than in the membership store.
func (e *Engine) RemoveMember(ctx context.Context, actorID, groupID, userID uuid.UUID) error {
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		group, err := requireOwner(ctx, s, groupID, actorID)
		if err != nil {
			return err
		}
		if userID == group.OwnerID {
			return ErrInvalidState
		}
		return s.Memberships.Delete(ctx, groupID, userID)
	})
	if err != nil {
		return err
	}

	e.publish(ctx, "group.left", map[string]any{"groupId": groupID, "userId": userID})
	return nil
}

// LeaveGroup is self-removal. The owner cannot leave their own group.
func (e *Engine) LeaveGroup(ctx context.Context, groupID, userID uuid.UUID) error {
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		group, err := s.Groups.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if group.OwnerID == userID {
			return ErrInvalidState
		}
		return s.Memberships.Delete(ctx, groupID, userID)
	})
	if err != nil {
		return err
	}

	e.publish(ctx, "group.left", map[string]any{"groupId": groupID, "userId": userID})
	return nil
}
