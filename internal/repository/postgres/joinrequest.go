package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/luanafs/clube/internal/models"
	"github.com/luanafs/clube/internal/repository"
)

type JoinRequestStore struct {
	db DBTX
}

func NewJoinRequestStore(db DBTX) *JoinRequestStore {
	return &JoinRequestStore{db: db}
}

func (s *JoinRequestStore) Create(ctx context.Context, groupID, userID uuid.UUID) (*models.JoinRequest, error) {
	// The (group_id, user_id, status) unique key rejects a second pending
	// request, but a user with only terminal rows (approved/denied) can
	// request again; the old rows stay as history.
	query := `
		INSERT INTO join_requests (id, group_id, user_id, status, created_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, now())
		RETURNING id, group_id, user_id, status, created_at`

	var jr models.JoinRequest
	err := s.db.QueryRow(ctx, query, groupID, userID, string(models.StatusPending)).Scan(
		&jr.ID,
		&jr.GroupID,
		&jr.UserID,
		&jr.Status,
		&jr.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("pending request %s/%s: %w", groupID, userID, repository.ErrConflict)
		}
		return nil, fmt.Errorf("insert join request: %w", err)
	}
	return &jr, nil
}

func (s *JoinRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*models.JoinRequest, error) {
	query := `
		SELECT id, group_id, user_id, status, created_at
		FROM join_requests
		WHERE id = $1`

	var jr models.JoinRequest
	err := s.db.QueryRow(ctx, query, id).Scan(
		&jr.ID,
		&jr.GroupID,
		&jr.UserID,
		&jr.Status,
		&jr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("join request %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get join request: %w", err)
	}
	return &jr, nil
}

func (s *JoinRequestStore) FindPending(ctx context.Context, groupID, userID uuid.UUID) (*models.JoinRequest, error) {
	query := `
		SELECT id, group_id, user_id, status, created_at
		FROM join_requests
		WHERE group_id = $1 AND user_id = $2 AND status = $3`

	var jr models.JoinRequest
	err := s.db.QueryRow(ctx, query, groupID, userID, string(models.StatusPending)).Scan(
		&jr.ID,
		&jr.GroupID,
		&jr.UserID,
		&jr.Status,
		&jr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("pending request %s/%s: %w", groupID, userID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("find pending request: %w", err)
	}
	return &jr, nil
}

func (s *JoinRequestStore) Transition(ctx context.Context, id uuid.UUID, from, to models.RequestStatus) error {
	// Conditional update: only moves the row if it is still in `from`.
	// Zero rows affected means another transaction got there first.
	query := `
		UPDATE join_requests
		SET status = $3
		WHERE id = $1 AND status = $2`

	tag, err := s.db.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		// A historical row already holds `to` for the same (group, user):
		// the unique key blocks a second terminal row of the same kind.
		if isUniqueViolation(err) {
			return fmt.Errorf("join request %s to %s: %w", id, to, repository.ErrConflict)
		}
		return fmt.Errorf("transition join request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("join request %s in status %s: %w", id, from, repository.ErrNotFound)
	}
	return nil
}

func (s *JoinRequestStore) DeletePending(ctx context.Context, groupID, userID uuid.UUID) error {
	// Used when an invite acceptance makes a pending request moot.
	// Deleting zero rows is fine.
	query := `
		DELETE FROM join_requests
		WHERE group_id = $1 AND user_id = $2 AND status = $3`

	_, err := s.db.Exec(ctx, query, groupID, userID, string(models.StatusPending))
	if err != nil {
		return fmt.Errorf("delete pending request: %w", err)
	}
	return nil
}

func (s *JoinRequestStore) ListPending(ctx context.Context, groupID uuid.UUID) ([]models.JoinRequest, error) {
	query := `
		SELECT id, group_id, user_id, status, created_at
		FROM join_requests
		WHERE group_id = $1 AND status = $2
		ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query, groupID, string(models.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	requests := make([]models.JoinRequest, 0)
	for rows.Next() {
		var jr models.JoinRequest
		if err := rows.Scan(
			&jr.ID,
			&jr.GroupID,
			&jr.UserID,
			&jr.Status,
			&jr.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan join request: %w", err)
		}
		requests = append(requests, jr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate join requests: %w", err)
	}

	return requests, nil
}
