package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

type sqlImageRepository struct {
	db SQLQuerier
}

// NewSQLImageRepository creates the image row gateway.
func NewSQLImageRepository(db SQLQuerier) port.ImageRepository {
	return &sqlImageRepository{db: db}
}

func (s *sqlImageRepository) Create(ctx context.Context, img domain.Image) (*domain.Image, error) {
	query := `INSERT INTO images (fileset, name, series)
              VALUES ($1, $2, $3)
              RETURNING id, fileset, name, series, created_at`

	var out domain.Image
	err := s.db.QueryRowContext(ctx, query, img.Fileset, img.Name, img.Series).
		Scan(&out.ID, &out.Fileset, &out.Name, &out.Series, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting image: %w", err)
	}
	return &out, nil
}

func (s *sqlImageRepository) FindByFileset(ctx context.Context, fileset uuid.UUID) ([]domain.Image, error) {
	query := `SELECT id, fileset, name, series, created_at
              FROM images WHERE fileset = $1 ORDER BY series`

	rows, err := s.db.QueryContext(ctx, query, fileset)
	if err != nil {
		return nil, fmt.Errorf("error listing images: %w", err)
	}
	defer rows.Close()

	var imgs []domain.Image
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.ID, &img.Fileset, &img.Name, &img.Series, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning image: %w", err)
		}
		imgs = append(imgs, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}
	return imgs, nil
}
