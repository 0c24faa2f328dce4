package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

type sqlPixelsRepository struct {
	db SQLQuerier
}

// NewSQLPixelsRepository creates the pixels row gateway.
func NewSQLPixelsRepository(db SQLQuerier) port.PixelsRepository {
	return &sqlPixelsRepository{db: db}
}

func (s *sqlPixelsRepository) Create(ctx context.Context, px domain.Pixels) (*domain.Pixels, error) {
	query := `INSERT INTO pixels (image_id, size_x, size_y, size_z, size_c, size_t, source_id)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              RETURNING id, image_id, size_x, size_y, size_z, size_c, size_t, source_id, created_at`

	var out domain.Pixels
	err := s.db.QueryRowContext(ctx, query,
		px.ImageID, px.SizeX, px.SizeY, px.SizeZ, px.SizeC, px.SizeT, px.SourceID,
	).Scan(&out.ID, &out.ImageID, &out.SizeX, &out.SizeY, &out.SizeZ, &out.SizeC, &out.SizeT, &out.SourceID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting pixels: %w", err)
	}
	return &out, nil
}

func (s *sqlPixelsRepository) UpdateHash(ctx context.Context, id int64, hash string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE pixels SET hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("error updating pixels hash: %w", err)
	}
	return requireRow(result)
}

func (s *sqlPixelsRepository) UpdateStatistics(ctx context.Context, id int64, min, max float64) error {
	result, err := s.db.ExecContext(ctx, `UPDATE pixels SET stat_min = $1, stat_max = $2 WHERE id = $3`, min, max, id)
	if err != nil {
		return fmt.Errorf("error updating pixels statistics: %w", err)
	}
	return requireRow(result)
}

func (s *sqlPixelsRepository) FindByImage(ctx context.Context, imageID int64) ([]domain.Pixels, error) {
	query := `SELECT id, image_id, size_x, size_y, size_z, size_c, size_t, hash, source_id, created_at
              FROM pixels WHERE image_id = $1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, imageID)
	if err != nil {
		return nil, fmt.Errorf("error listing pixels: %w", err)
	}
	defer rows.Close()

	var out []domain.Pixels
	for rows.Next() {
		var px domain.Pixels
		var hash sql.NullString
		if err := rows.Scan(&px.ID, &px.ImageID, &px.SizeX, &px.SizeY, &px.SizeZ, &px.SizeC, &px.SizeT, &hash, &px.SourceID, &px.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning pixels: %w", err)
		}
		if hash.Valid {
			px.Hash = hash.String
		}
		out = append(out, px)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pixels: %w", err)
	}
	return out, nil
}
