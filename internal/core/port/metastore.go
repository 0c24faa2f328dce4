package port

import (
	"context"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
)

// ObjectMap is the per-type listing of catalog objects created by one import.
type ObjectMap struct {
	Images []domain.Image
	Pixels []domain.Pixels
}

// MetadataStore is the client used by the import pipeline to persist the
// domain objects a decoder discovered. One session per import job.
type MetadataStore interface {
	// SetOverrides applies user-supplied settings (name, description,
	// physical pixel sizes, target container, annotations) before saving.
	SetOverrides(ctx context.Context, settings domain.ImportSettings) error
	// SaveAll persists every discovered image/pixels record in one batch and
	// returns the created objects.
	SaveAll(ctx context.Context, fileset domain.Fileset, series []SeriesInfo) (*ObjectMap, error)
	// PopulateStatistics records min/max statistics for a pixels row.
	PopulateStatistics(ctx context.Context, pixelsID int64, min, max float64) error
	Close() error
}
