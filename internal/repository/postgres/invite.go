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

type InviteStore struct {
	db DBTX
}

func NewInviteStore(db DBTX) *InviteStore {
	return &InviteStore{db: db}
}

func (s *InviteStore) Create(ctx context.Context, groupID, createdByUserID uuid.UUID) (*models.GroupInvite, error) {
	query := `
		INSERT INTO group_invites (id, group_id, created_by_user_id, created_at, revoked_at)
		VALUES (uuid_generate_v4(), $1, $2, now(), NULL)
		RETURNING id, group_id, created_by_user_id, created_at, revoked_at`

	var inv models.GroupInvite
	err := s.db.QueryRow(ctx, query, groupID, createdByUserID).Scan(
		&inv.ID,
		&inv.GroupID,
		&inv.CreatedByUserID,
		&inv.CreatedAt,
		&inv.RevokedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert invite: %w", err)
	}
	return &inv, nil
}

func (s *InviteStore) GetByID(ctx context.Context, id uuid.UUID) (*models.GroupInvite, error) {
	query := `
		SELECT id, group_id, created_by_user_id, created_at, revoked_at
		FROM group_invites
		WHERE id = $1`

	var inv models.GroupInvite
	err := s.db.QueryRow(ctx, query, id).Scan(
		&inv.ID,
		&inv.GroupID,
		&inv.CreatedByUserID,
		&inv.CreatedAt,
		&inv.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invite %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return &inv, nil
}

func (s *InviteStore) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	// The revoked_at IS NULL guard makes the first revocation win: a
	// second call matches nothing and the original timestamp survives.
	query := `
		UPDATE group_invites
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL`

	_, err := s.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("revoke invite: %w", err)
	}
	return nil
}

func (s *InviteStore) RevokeAllLive(ctx context.Context, groupID uuid.UUID, at time.Time) error {
	query := `
		UPDATE group_invites
		SET revoked_at = $2
		WHERE group_id = $1 AND revoked_at IS NULL`

	_, err := s.db.Exec(ctx, query, groupID, at)
	if err != nil {
		return fmt.Errorf("revoke live invites: %w", err)
	}
	return nil
}

func (s *InviteStore) FindLiveByGroup(ctx context.Context, groupID uuid.UUID) (*models.GroupInvite, error) {
	query := `
		SELECT id, group_id, created_by_user_id, created_at, revoked_at
		FROM group_invites
		WHERE group_id = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`

	var inv models.GroupInvite
	err := s.db.QueryRow(ctx, query, groupID).Scan(
		&inv.ID,
		&inv.GroupID,
		&inv.CreatedByUserID,
		&inv.CreatedAt,
		&inv.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("live invite for group %s: %w", groupID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("find live invite: %w", err)
	}
	return &inv, nil
}
