package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/models"
)

type ClubBookArtifactStore struct {
	db DBTX
}

func NewClubBookArtifactStore(db DBTX) *ClubBookArtifactStore {
	return &ClubBookArtifactStore{db: db}
}

func (s *ClubBookArtifactStore) Create(ctx context.Context, clubBookID, uploadedByUserID uuid.UUID, fileName, mimeType string, size int64, url string) (*models.ClubBookArtifact, error) {
	query := `
		INSERT INTO club_book_artifacts (club_book_id, uploaded_by_user_id, file_name, mime_type, size, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, club_book_id, uploaded_by_user_id, file_name, mime_type, size, url, created_at`

	var a models.ClubBookArtifact
	err := s.db.QueryRow(ctx, query, clubBookID, uploadedByUserID, fileName, mimeType, size, url).Scan(
		&a.ID,
		&a.ClubBookID,
		&a.UploadedByUserID,
		&a.FileName,
		&a.MimeType,
		&a.Size,
		&a.URL,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert artifact: %w", err)
	}
	return &a, nil
}

func (s *ClubBookArtifactStore) List(ctx context.Context, clubBookID uuid.UUID, limit int) ([]models.ClubBookArtifact, error) {
	query := `
		SELECT id, club_book_id, uploaded_by_user_id, file_name, mime_type, size, url, created_at
		FROM club_book_artifacts
		WHERE club_book_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.Query(ctx, query, clubBookID, limit)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := make([]models.ClubBookArtifact, 0)
	for rows.Next() {
		var a models.ClubBookArtifact
		if err := rows.Scan(
			&a.ID,
			&a.ClubBookID,
			&a.UploadedByUserID,
			&a.FileName,
			&a.MimeType,
			&a.Size,
			&a.URL,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}

	return artifacts, nil
}
