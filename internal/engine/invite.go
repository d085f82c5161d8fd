package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/models"
	"github.com/luanafs/clube/internal/repository"
)

// CreateInvite issues a fresh invite for the group. Owner-only. Always
// creates a new row; use RotateInvite to retire earlier ones.
func (e *Engine) CreateInvite(ctx context.Context, actorID, groupID uuid.UUID) (*models.GroupInvite, error) {
	var invite *models.GroupInvite
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := requireOwner(ctx, s, groupID, actorID); err != nil {
			return err
		}
		var err error
		invite, err = s.Invites.Create(ctx, groupID, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, "group.invite_created", map[string]any{
		"inviteId": invite.ID, "groupId": groupID, "createdByUserId": actorID,
	})
	return invite, nil
}

// RotateInvite revokes every live invite for the group and issues a new
// one, atomically: at no point is the group without exactly one live
// invite from the rotation onward.
func (e *Engine) RotateInvite(ctx context.Context, actorID, groupID uuid.UUID) (*models.GroupInvite, error) {
	var invite *models.GroupInvite
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := requireOwner(ctx, s, groupID, actorID); err != nil {
			return err
		}
		if err := s.Invites.RevokeAllLive(ctx, groupID, e.now()); err != nil {
			return err
		}
		var err error
		invite, err = s.Invites.Create(ctx, groupID, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, "group.invite_rotated", map[string]any{
		"inviteId": invite.ID, "groupId": groupID, "createdByUserId": actorID,
	})
	return invite, nil
}

// RevokeInvite retires an invite. Owner-only and idempotent: revoking an
// already-revoked invite is a no-op and the first revocation timestamp
// stands.
func (e *Engine) RevokeInvite(ctx context.Context, actorID, inviteID uuid.UUID) error {
	return e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		invite, err := s.Invites.GetByID(ctx, inviteID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(ctx, s, invite.GroupID, actorID); err != nil {
			return err
		}
		if !invite.Live() {
			return nil
		}
		return s.Invites.Revoke(ctx, inviteID, e.now())
	})
}

// InviteView is what an invite link resolves to before the viewer decides
// to join.
type InviteView struct {
	Invite *models.GroupInvite `json:"invite"`
	Group  *models.Group       `json:"group"`
}

// LookupInvite resolves a live invite to its group. Revoked invites read
// as not found; the link simply stops working.
func (e *Engine) LookupInvite(ctx context.Context, inviteID uuid.UUID) (*InviteView, error) {
	var view InviteView
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		invite, err := s.Invites.GetByID(ctx, inviteID)
		if err != nil {
			return err
		}
		if !invite.Live() {
			return repository.ErrNotFound
		}
		group, err := s.Groups.GetByID(ctx, invite.GroupID)
		if err != nil {
			return err
		}
		view.Invite = invite
		view.Group = group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// DeclineInvite records that the user turned the invite down. Invites are
// multi-use, so declining consumes nothing; the event is what matters, so
// the inviter's client can stop showing the invite as outstanding.
func (e *Engine) DeclineInvite(ctx context.Context, inviteID, userID uuid.UUID) error {
	var groupID uuid.UUID
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		invite, err := s.Invites.GetByID(ctx, inviteID)
		if err != nil {
			return err
		}
		if !invite.Live() {
			return ErrInvalidState
		}
		groupID = invite.GroupID
		return nil
	})
	if err != nil {
		return err
	}

	e.publish(ctx, "group.invite_declined", map[string]any{
		"inviteId": inviteID, "groupId": groupID, "userId": userID,
	})
	return nil
}

// AcceptInvite joins the accepting user to the invite's group. The invite
// is multi-use: acceptance does not consume it, so any number of users can
// join through the same link until it is revoked. Accepting with an
// existing membership is ErrConflict and leaves the invite live. A pending
// join request by the same user becomes moot and is deleted in the same
// transaction.
func (e *Engine) AcceptInvite(ctx context.Context, inviteID, userID uuid.UUID) (*models.Membership, error) {
	var membership *models.Membership
	var groupID uuid.UUID
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		invite, err := s.Invites.GetByID(ctx, inviteID)
		if err != nil {
			return err
		}
		if !invite.Live() {
			return ErrInvalidState
		}
		groupID = invite.GroupID

		membership, err = s.Memberships.Create(ctx, groupID, userID, defaultJoinRole)
		if err != nil {
			return err
		}
		return s.JoinRequests.DeletePending(ctx, groupID, userID)
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, "group.invite_accepted", map[string]any{
		"inviteId": inviteID, "groupId": groupID, "userId": userID,
	})
	return membership, nil
}
