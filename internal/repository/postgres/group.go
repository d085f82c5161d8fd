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

type GroupStore struct {
	db DBTX
}

func NewGroupStore(db DBTX) *GroupStore {
	return &GroupStore{db: db}
}

func (s *GroupStore) Create(ctx context.Context, name, description string, ownerID uuid.UUID) (*models.Group, error) {
	query := `
		INSERT INTO groups (id, name, description, owner_id, created_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, now())
		RETURNING id, name, description, owner_id, created_at`

	var g models.Group
	err := s.db.QueryRow(ctx, query, name, description, ownerID).Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.OwnerID,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	return &g, nil
}

func (s *GroupStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	query := `
		SELECT id, name, description, owner_id, created_at
		FROM groups
		WHERE id = $1`

	var g models.Group
	err := s.db.QueryRow(ctx, query, id).Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.OwnerID,
		&g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &g, nil
}

func (s *GroupStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Group, error) {
	groups := make([]models.Group, 0)
	if len(ids) == 0 {
		return groups, nil
	}

	query := `
		SELECT id, name, description, owner_id, created_at
		FROM groups
		WHERE id = ANY($1)
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g models.Group
		if err := rows.Scan(
			&g.ID,
			&g.Name,
			&g.Description,
			&g.OwnerID,
			&g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	return groups, nil
}
