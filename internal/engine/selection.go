package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/models"
	"github.com/luanafs/clube/internal/repository"
)

// historyLimit caps the book-of-the-month history a single read returns.
const historyLimit = 24

// SetBookOfMonth records a new book-of-the-month selection for the group.
// Owner-only. This is an append to a log: earlier selections are never
// updated or deleted, and "current" is resolved at read time by ordering.
// Concurrent setters may race; whichever row carries the latest set_at
// (ties broken by insertion id) is what every reader sees.
func (e *Engine) SetBookOfMonth(ctx context.Context, actorID, groupID uuid.UUID, bookID string) (*models.BookOfMonthSelection, error) {
	var selection *models.BookOfMonthSelection
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := requireOwner(ctx, s, groupID, actorID); err != nil {
			return err
		}
		var err error
		selection, err = s.Selections.Insert(ctx, groupID, bookID, actorID, e.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, "group.book_of_month_set", map[string]any{
		"groupId": groupID, "bookId": bookID, "setByUserId": actorID, "selectionId": selection.ID,
	})
	return selection, nil
}

// CurrentBookOfMonth returns the group's latest selection, or ErrNotFound
// if none was ever set. Member-only.
func (e *Engine) CurrentBookOfMonth(ctx context.Context, actorID, groupID uuid.UUID) (*models.BookOfMonthSelection, error) {
	var selection *models.BookOfMonthSelection
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := requireMember(ctx, s, groupID, actorID); err != nil {
			return err
		}
		var err error
		selection, err = s.Selections.Current(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return selection, nil
}

// BookOfMonthHistory returns the group's selections, newest first, current
// one included. Member-only.
func (e *Engine) BookOfMonthHistory(ctx context.Context, actorID, groupID uuid.UUID) ([]models.BookOfMonthSelection, error) {
	var history []models.BookOfMonthSelection
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := requireMember(ctx, s, groupID, actorID); err != nil {
			return err
		}
		var err error
		history, err = s.Selections.History(ctx, groupID, historyLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}
