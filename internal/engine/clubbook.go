package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/models"
	"github.com/luanafs/clube/internal/repository"
)

// Read-path caps, matching what the room UI renders.
const (
	clubBookListLimit = 60
	messageMaxLimit   = 200
	artifactListLimit = 120
)

// CreateClubBook registers a club-wide reading pick. It starts inactive;
// activation is a separate, guarded step.
func (e *Engine) CreateClubBook(ctx context.Context, actorID uuid.UUID, bookID, title, author, colorKey string) (*models.ClubBook, error) {
	if !models.ValidClubColor(colorKey) {
		return nil, fmt.Errorf("color key %q not in palette: %w", colorKey, ErrInvalidState)
	}

	var clubBook *models.ClubBook
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		var err error
		clubBook, err = s.ClubBooks.Create(ctx, bookID, title, author, colorKey, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, "club_book.created", map[string]any{
		"id": clubBook.ID, "bookId": bookID, "createdByUserId": actorID,
	})
	return clubBook, nil
}

// ActivateClubBook makes the target the one active club book. In a single
// serializable transaction it demotes whatever is currently active and
// promotes the target, so after commit exactly one row is active no matter
// how many activations raced; the losers are retried against the new state
// and, if contention persists past the retry budget, surface
// ErrConcurrency. Activation scope is global: club books belong to the
// whole club, not to a group.
func (e *Engine) ActivateClubBook(ctx context.Context, actorID, clubBookID uuid.UUID) (*models.ClubBook, error) {
	var clubBook *models.ClubBook
	err := e.tx.Serializable(ctx, func(s repository.Stores) error {
		if _, err := s.ClubBooks.GetByID(ctx, clubBookID); err != nil {
			return err
		}
		if err := s.ClubBooks.DeactivateOthers(ctx, clubBookID); err != nil {
			return err
		}
		if err := s.ClubBooks.Activate(ctx, clubBookID, e.now()); err != nil {
			return err
		}
		var err error
		clubBook, err = s.ClubBooks.GetByID(ctx, clubBookID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, "club_book.activated", map[string]any{
		"id": clubBookID, "byUserId": actorID,
	})
	return clubBook, nil
}

// DeactivateClubBook clears the active flag. activated_at is preserved as
// the record of the last activation.
func (e *Engine) DeactivateClubBook(ctx context.Context, actorID, clubBookID uuid.UUID) error {
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		return s.ClubBooks.Deactivate(ctx, clubBookID)
	})
	if err != nil {
		return err
	}

	e.publish(ctx, "club_book.deactivated", map[string]any{
		"id": clubBookID, "byUserId": actorID,
	})
	return nil
}

// ActiveClubBook returns the currently active pick, or ErrNotFound when
// nothing is active.
func (e *Engine) ActiveClubBook(ctx context.Context) (*models.ClubBook, error) {
	var clubBook *models.ClubBook
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		var err error
		clubBook, err = s.ClubBooks.Active(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return clubBook, nil
}

// ListClubBooks returns recent club books, newest first.
func (e *Engine) ListClubBooks(ctx context.Context) ([]models.ClubBook, error) {
	var books []models.ClubBook
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		var err error
		books, err = s.ClubBooks.List(ctx, clubBookListLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// PostClubBookMessage appends a chat message to a club-book room.
func (e *Engine) PostClubBookMessage(ctx context.Context, userID, clubBookID uuid.UUID, text string) (*models.ClubBookMessage, error) {
	var message *models.ClubBookMessage
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := s.ClubBooks.GetByID(ctx, clubBookID); err != nil {
			return err
		}
		var err error
		message, err = s.Messages.Create(ctx, clubBookID, userID, text)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, "club_chat.message_created", map[string]any{
		"id": message.ID, "clubBookId": clubBookID, "userId": userID,
	})
	return message, nil
}

// ListClubBookMessages reads room chat. Clients poll with `after` set to
// the newest created_at they hold; limit is clamped to the room cap.
func (e *Engine) ListClubBookMessages(ctx context.Context, clubBookID uuid.UUID, after time.Time, limit int, descending bool) ([]models.ClubBookMessage, error) {
	if limit <= 0 || limit > messageMaxLimit {
		limit = messageMaxLimit
	}

	var messages []models.ClubBookMessage
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := s.ClubBooks.GetByID(ctx, clubBookID); err != nil {
			return err
		}
		var err error
		messages, err = s.Messages.List(ctx, clubBookID, after, limit, descending)
		return err
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AddClubBookArtifact records file metadata for a room. The file content
// itself lives in object storage; url references it.
func (e *Engine) AddClubBookArtifact(ctx context.Context, userID, clubBookID uuid.UUID, fileName, mimeType string, size int64, url string) (*models.ClubBookArtifact, error) {
	var artifact *models.ClubBookArtifact
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := s.ClubBooks.GetByID(ctx, clubBookID); err != nil {
			return err
		}
		var err error
		artifact, err = s.Artifacts.Create(ctx, clubBookID, userID, fileName, mimeType, size, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, "club_artifact.created", map[string]any{
		"id": artifact.ID, "clubBookId": clubBookID, "uploadedByUserId": userID,
	})
	return artifact, nil
}

// ListClubBookArtifacts returns a room's artifacts, newest first.
func (e *Engine) ListClubBookArtifacts(ctx context.Context, clubBookID uuid.UUID) ([]models.ClubBookArtifact, error) {
	var artifacts []models.ClubBookArtifact
	err := e.tx.ReadCommitted(ctx, func(s repository.Stores) error {
		if _, err := s.ClubBooks.GetByID(ctx, clubBookID); err != nil {
			return err
		}
		var err error
		artifacts, err = s.Artifacts.List(ctx, clubBookID, artifactListLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}
