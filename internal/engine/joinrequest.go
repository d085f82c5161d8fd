package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/models"
	"github.com/luanafs/clube/internal/repository"
)

// defaultJoinRole is the role granted when a request is approved or an
// invite accepted.
const defaultJoinRole = models.RoleMember

// RequestToJoin files a pending join request. A user who is already a
// member, or who already has a pending request, gets ErrConflict. A user
// whose previous request was denied may request again; the denied row
// stays behind as history.
func (e *Engine) RequestToJoin(ctx context.Context, groupID, userID uuid.UUID) (*models.JoinRequest, error) {
	var request *models.JoinRequest
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := s.Groups.GetByID(ctx, groupID); err != nil {
			return err
		}
		_, err := s.Memberships.Get(ctx, groupID, userID)
		if err == nil {
			return repository.ErrConflict
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		// The compound unique key backstops this insert: two concurrent
		// requests cannot both create a pending row.
		request, err = s.JoinRequests.Create(ctx, groupID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, "group.join_requested", map[string]any{
		"id": request.ID, "groupId": groupID, "userId": userID,
	})
	return request, nil
}

// ApproveJoinRequest moves a pending request to approved and creates the
// membership in the same transaction. If the membership insert conflicts
// (the user got in through an invite meanwhile), the whole transaction
// aborts and the request stays pending.
func (e *Engine) ApproveJoinRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	var request *models.JoinRequest
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		var err error
		request, err = s.JoinRequests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(ctx, s, request.GroupID, actorID); err != nil {
			return err
		}
		if request.Status != models.StatusPending {
			return ErrInvalidState
		}
		if err := s.JoinRequests.Transition(ctx, requestID, models.StatusPending, models.StatusApproved); err != nil {
			// The row moved out of pending between our read and the
			// conditional update.
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidState
			}
			return err
		}
		_, err = s.Memberships.Create(ctx, request.GroupID, request.UserID, defaultJoinRole)
		return err
	})
	if err != nil {
		return err
	}

	e.publish(ctx, "group.join_approved", map[string]any{
		"requestId": requestID, "groupId": request.GroupID, "userId": request.UserID,
	})
	return nil
}

// DenyJoinRequest moves a pending request to denied. Terminal; no side
// effects elsewhere.
func (e *Engine) DenyJoinRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	var request *models.JoinRequest
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		var err error
		request, err = s.JoinRequests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(ctx, s, request.GroupID, actorID); err != nil {
			return err
		}
		if request.Status != models.StatusPending {
			return ErrInvalidState
		}
		if err := s.JoinRequests.Transition(ctx, requestID, models.StatusPending, models.StatusDenied); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidState
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.publish(ctx, "group.join_denied", map[string]any{
		"requestId": requestID, "groupId": request.GroupID, "userId": request.UserID,
	})
	return nil
}

// ListPendingRequests returns a group's pending requests, oldest first.
// Owner-only.
func (e *Engine) ListPendingRequests(ctx context.Context, actorID, groupID uuid.UUID) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := requireOwner(ctx, s, groupID, actorID); err != nil {
			return err
		}
		var err error
		requests, err = s.JoinRequests.ListPending(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}
