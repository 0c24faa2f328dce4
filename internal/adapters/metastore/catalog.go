package metastore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

// SourceResolver maps the absolute path backing a series to its catalog
// record id, for linking pixels rows back to their source file.
type SourceResolver func(ctx context.Context, absPath string) (int64, error)

// CatalogStore persists import metadata straight into the images and pixels
// tables. One instance per import job; Close is idempotent.
type CatalogStore struct {
	uow      port.UnitOfWork
	resolve  SourceResolver
	logger   *slog.Logger
	settings domain.ImportSettings

	closeOnce sync.Once
}

func NewCatalogStore(uow port.UnitOfWork, resolve SourceResolver, logger *slog.Logger) *CatalogStore {
	return &CatalogStore{uow: uow, resolve: resolve, logger: logger}
}

func (s *CatalogStore) SetOverrides(ctx context.Context, settings domain.ImportSettings) error {
	s.settings = settings
	return nil
}

// SaveAll writes one image and one pixels row per series in a single
// transaction. A user-supplied name overrides the first series name only.
func (s *CatalogStore) SaveAll(ctx context.Context, fileset domain.Fileset, series []port.SeriesInfo) (*port.ObjectMap, error) {
	out := &port.ObjectMap{}

	err := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		for i, info := range series {
			name := info.Name
			if i == 0 && s.settings.Name != "" {
				name = s.settings.Name
			}

			img, err := uow.Images().Create(ctx, domain.Image{
				Fileset: fileset.ID,
				Name:    name,
				Series:  i,
			})
			if err != nil {
				return fmt.Errorf("error saving image for series %d: %w", i, err)
			}

			var sourceID int64
			if s.resolve != nil && info.Source != "" {
				sourceID, err = s.resolve(ctx, info.Source)
				if err != nil {
					return fmt.Errorf("error resolving series source %s: %w", info.Source, err)
				}
			}

			px, err := uow.Pixels().Create(ctx, domain.Pixels{
				ImageID:  img.ID,
				SizeX:    info.SizeX,
				SizeY:    info.SizeY,
				SizeZ:    info.SizeZ,
				SizeC:    info.SizeC,
				SizeT:    info.SizeT,
				SourceID: sourceID,
			})
			if err != nil {
				return fmt.Errorf("error saving pixels for series %d: %w", i, err)
			}

			out.Images = append(out.Images, *img)
			out.Pixels = append(out.Pixels, *px)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("import metadata saved", "fileset", fileset.ID, "series", len(series))
	return out, nil
}

func (s *CatalogStore) PopulateStatistics(ctx context.Context, pixelsID int64, min, max float64) error {
	return s.uow.Pixels().UpdateStatistics(ctx, pixelsID, min, max)
}

func (s *CatalogStore) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Debug("metadata store session closed")
	})
	return nil
}
