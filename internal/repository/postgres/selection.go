package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/luanafs/clube/internal/models"
	"github.com/luanafs/clube/internal/repository"
)

type SelectionStore struct {
	db DBTX
}

func NewSelectionStore(db DBTX) *SelectionStore {
	return &SelectionStore{db: db}
}

func (s *SelectionStore) Insert(ctx context.Context, groupID uuid.UUID, bookID string, setByUserID uuid.UUID, setAt time.Time) (*models.BookOfMonthSelection, error) {
	// Append-only: setting a new book of the month never touches earlier
	// rows. "Current" is a read-side question.
	query := `
		INSERT INTO book_of_month_selections (group_id, book_id, set_by_user_id, set_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, group_id, book_id, set_by_user_id, set_at`

	var sel models.BookOfMonthSelection
	err := s.db.QueryRow(ctx, query, groupID, bookID, setByUserID, setAt).Scan(
		&sel.ID,
		&sel.GroupID,
		&sel.BookID,
		&sel.SetByUserID,
		&sel.SetAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert selection: %w", err)
	}
	return &sel, nil
}

func (s *SelectionStore) Current(ctx context.Context, groupID uuid.UUID) (*models.BookOfMonthSelection, error) {
	// id DESC breaks set_at ties so concurrent writers still yield one
	// deterministic answer for every reader.
	query := `
		SELECT id, group_id, book_id, set_by_user_id, set_at
		FROM book_of_month_selections
		WHERE group_id = $1
		ORDER BY set_at DESC, id DESC
		LIMIT 1`

	var sel models.BookOfMonthSelection
	err := s.db.QueryRow(ctx, query, groupID).Scan(
		&sel.ID,
		&sel.GroupID,
		&sel.BookID,
		&sel.SetByUserID,
		&sel.SetAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("selection for group %s: %w", groupID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("current selection: %w", err)
	}
	return &sel, nil
}

func (s *SelectionStore) History(ctx context.Context, groupID uuid.UUID, limit int) ([]models.BookOfMonthSelection, error) {
	query := `
		SELECT id, group_id, book_id, set_by_user_id, set_at
		FROM book_of_month_selections
		WHERE group_id = $1
		ORDER BY set_at DESC, id DESC
		LIMIT $2`

	rows, err := s.db.Query(ctx, query, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	defer rows.Close()

	selections := make([]models.BookOfMonthSelection, 0)
	for rows.Next() {
		var sel models.BookOfMonthSelection
		if err := rows.Scan(
			&sel.ID,
			&sel.GroupID,
			&sel.BookID,
			&sel.SetByUserID,
			&sel.SetAt,
		); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		selections = append(selections, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selections: %w", err)
	}

	return selections, nil
}
