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

type MembershipStore struct {
	db DBTX
}

func NewMembershipStore(db DBTX) *MembershipStore {
	return &MembershipStore{db: db}
}

func (s *MembershipStore) Create(ctx context.Context, groupID, userID uuid.UUID, role models.Role) (*models.Membership, error) {
	// No ON CONFLICT clause: a duplicate (group_id, user_id) must surface,
	// not vanish. Approve and accept-invite treat it as the signal that
	// the user already holds a role, and abort their transaction.
	query := `
		INSERT INTO memberships (id, group_id, user_id, role, created_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, now())
		RETURNING id, group_id, user_id, role, created_at`

	var m models.Membership
	err := s.db.QueryRow(ctx, query, groupID, userID, string(role)).Scan(
		&m.ID,
		&m.GroupID,
		&m.UserID,
		&m.Role,
		&m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("membership %s/%s: %w", groupID, userID, repository.ErrConflict)
		}
		return nil, fmt.Errorf("insert membership: %w", err)
	}
	return &m, nil
}

func (s *MembershipStore) Get(ctx context.Context, groupID, userID uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT id, group_id, user_id, role, created_at
		FROM memberships
		WHERE group_id = $1 AND user_id = $2`

	var m models.Membership
	err := s.db.QueryRow(ctx, query, groupID, userID).Scan(
		&m.ID,
		&m.GroupID,
		&m.UserID,
		&m.Role,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("membership %s/%s: %w", groupID, userID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}

func (s *MembershipStore) UpdateRole(ctx context.Context, groupID, userID uuid.UUID, role models.Role) error {
	query := `
		UPDATE memberships
		SET role = $3
		WHERE group_id = $1 AND user_id = $2`

	tag, err := s.db.Exec(ctx, query, groupID, userID, string(role))
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("membership %s/%s: %w", groupID, userID, repository.ErrNotFound)
	}
	return nil
}

func (s *MembershipStore) Delete(ctx context.Context, groupID, userID uuid.UUID) error {
	// Membership removal is the one hard delete in the model; everything
	// else is soft state or append-only.
	query := `
		DELETE FROM memberships
		WHERE group_id = $1 AND user_id = $2`

	tag, err := s.db.Exec(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("membership %s/%s: %w", groupID, userID, repository.ErrNotFound)
	}
	return nil
}

func (s *MembershipStore) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Membership, error) {
	query := `
		SELECT id, group_id, user_id, role, created_at
		FROM memberships
		WHERE group_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	members := make([]models.Membership, 0)
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(
			&m.ID,
			&m.GroupID,
			&m.UserID,
			&m.Role,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}

	return members, nil
}

func (s *MembershipStore) GroupIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT group_id
		FROM memberships
		WHERE user_id = $1`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list group ids: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group ids: %w", err)
	}

	return ids, nil
}
