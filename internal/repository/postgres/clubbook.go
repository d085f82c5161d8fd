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

type ClubBookStore struct {
	db DBTX
}

func NewClubBookStore(db DBTX) *ClubBookStore {
	return &ClubBookStore{db: db}
}

const clubBookColumns = `id, book_id, title, author, color_key, is_active, created_by_user_id, created_at, activated_at`

func (s *ClubBookStore) Create(ctx context.Context, bookID, title, author, colorKey string, createdByUserID uuid.UUID) (*models.ClubBook, error) {
	query := `
		INSERT INTO club_books (id, book_id, title, author, color_key, is_active, created_by_user_id, created_at, activated_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, $4, false, $5, now(), NULL)
		RETURNING ` + clubBookColumns

	var cb models.ClubBook
	err := s.db.QueryRow(ctx, query, bookID, title, author, colorKey, createdByUserID).Scan(
		&cb.ID,
		&cb.BookID,
		&cb.Title,
		&cb.Author,
		&cb.ColorKey,
		&cb.IsActive,
		&cb.CreatedByUserID,
		&cb.CreatedAt,
		&cb.ActivatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert club book: %w", err)
	}
	return &cb, nil
}

func (s *ClubBookStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ClubBook, error) {
	query := `
		SELECT ` + clubBookColumns + `
		FROM club_books
		WHERE id = $1`

	var cb models.ClubBook
	err := s.db.QueryRow(ctx, query, id).Scan(
		&cb.ID,
		&cb.BookID,
		&cb.Title,
		&cb.Author,
		&cb.ColorKey,
		&cb.IsActive,
		&cb.CreatedByUserID,
		&cb.CreatedAt,
		&cb.ActivatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("club book %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get club book: %w", err)
	}
	return &cb, nil
}

func (s *ClubBookStore) List(ctx context.Context, limit int) ([]models.ClubBook, error) {
	query := `
		SELECT ` + clubBookColumns + `
		FROM club_books
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list club books: %w", err)
	}
	defer rows.Close()

	books := make([]models.ClubBook, 0)
	for rows.Next() {
		var cb models.ClubBook
		if err := rows.Scan(
			&cb.ID,
			&cb.BookID,
			&cb.Title,
			&cb.Author,
			&cb.ColorKey,
			&cb.IsActive,
			&cb.CreatedByUserID,
			&cb.CreatedAt,
			&cb.ActivatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan club book: %w", err)
		}
		books = append(books, cb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate club books: %w", err)
	}

	return books, nil
}

func (s *ClubBookStore) Active(ctx context.Context) (*models.ClubBook, error) {
	// activated_at DESC keeps the read deterministic if a bug ever leaves
	// two rows flagged; the activation swap exists to prevent that.
	query := `
		SELECT ` + clubBookColumns + `
		FROM club_books
		WHERE is_active = true
		ORDER BY activated_at DESC
		LIMIT 1`

	var cb models.ClubBook
	err := s.db.QueryRow(ctx, query).Scan(
		&cb.ID,
		&cb.BookID,
		&cb.Title,
		&cb.Author,
		&cb.ColorKey,
		&cb.IsActive,
		&cb.CreatedByUserID,
		&cb.CreatedAt,
		&cb.ActivatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("active club book: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get active club book: %w", err)
	}
	return &cb, nil
}

func (s *ClubBookStore) DeactivateOthers(ctx context.Context, keepID uuid.UUID) error {
	query := `
		UPDATE club_books
		SET is_active = false
		WHERE is_active = true AND id <> $1`

	_, err := s.db.Exec(ctx, query, keepID)
	if err != nil {
		return fmt.Errorf("deactivate other club books: %w", err)
	}
	return nil
}

func (s *ClubBookStore) Activate(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE club_books
		SET is_active = true, activated_at = $2
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("activate club book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("club book %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (s *ClubBookStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	// activated_at is left alone: it records when the book was last
	// activated, not whether it currently is.
	query := `
		UPDATE club_books
		SET is_active = false
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate club book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("club book %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
