package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/models"
)

type ClubBookMessageStore struct {
	db DBTX
}

func NewClubBookMessageStore(db DBTX) *ClubBookMessageStore {
	return &ClubBookMessageStore{db: db}
}

func (s *ClubBookMessageStore) Create(ctx context.Context, clubBookID, userID uuid.UUID, text string) (*models.ClubBookMessage, error) {
	// Messages use bigserial; Postgres assigns the id and RETURNING gives
	// it back.
	query := `
		INSERT INTO club_book_messages (club_book_id, user_id, text, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, club_book_id, user_id, text, created_at`

	var msg models.ClubBookMessage
	err := s.db.QueryRow(ctx, query, clubBookID, userID, text).Scan(
		&msg.ID,
		&msg.ClubBookID,
		&msg.UserID,
		&msg.Text,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &msg, nil
}

func (s *ClubBookMessageStore) List(ctx context.Context, clubBookID uuid.UUID, after time.Time, limit int, descending bool) ([]models.ClubBookMessage, error) {
	// Clients poll with `after` set to the newest timestamp they have
	// seen; an empty cursor reads from the beginning.
	direction := "ASC"
	if descending {
		direction = "DESC"
	}

	var query string
	var args []any

	if !after.IsZero() {
		query = `
			SELECT id, club_book_id, user_id, text, created_at
			FROM club_book_messages
			WHERE club_book_id = $1 AND created_at > $2
			ORDER BY created_at ` + direction + `, id ` + direction + `
			LIMIT $3`
		args = []any{clubBookID, after, limit}
	} else {
		query = `
			SELECT id, club_book_id, user_id, text, created_at
			FROM club_book_messages
			WHERE club_book_id = $1
			ORDER BY created_at ` + direction + `, id ` + direction + `
			LIMIT $2`
		args = []any{clubBookID, limit}
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.ClubBookMessage, 0)
	for rows.Next() {
		var msg models.ClubBookMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.ClubBookID,
			&msg.UserID,
			&msg.Text,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
