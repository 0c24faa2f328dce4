package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
)

// RecordRepository is the sole gateway to the file/directory catalog.
type RecordRepository interface {
	// Register inserts a catalog row. A row that already exists for the same
	// (repo, parentPath, name) triple surfaces as domain.ErrRecordExists so
	// that callers can resolve creation races.
	Register(ctx context.Context, rec domain.Record) (*domain.Record, error)
	FindRecord(ctx context.Context, repo uuid.UUID, parentPath, name string) (*domain.Record, error)
	FindByID(ctx context.Context, id int64) (*domain.Record, error)
	ListChildren(ctx context.Context, repo uuid.UUID, dirPath string) ([]domain.Record, error)
	Exists(ctx context.Context, repo uuid.UUID, parentPath, name string) (bool, error)
	Delete(ctx context.Context, id int64) error
	UpdateSize(ctx context.Context, id int64, size int64, mtime time.Time) error
	UpdateHash(ctx context.Context, id int64, hash string, hasher domain.ChecksumAlgo) error
	UpdateMimetype(ctx context.Context, id int64, mimetype string) error
	// TreeList returns every record whose parent path equals dirPath or sits
	// below it, for nested listings and recursive deletes.
	TreeList(ctx context.Context, repo uuid.UUID, dirPath string) ([]domain.Record, error)
}

// ImageRepository stores image rows created during import.
type ImageRepository interface {
	Create(ctx context.Context, img domain.Image) (*domain.Image, error)
	FindByFileset(ctx context.Context, fileset uuid.UUID) ([]domain.Image, error)
}

// PixelsRepository stores pixels rows created during import.
type PixelsRepository interface {
	Create(ctx context.Context, px domain.Pixels) (*domain.Pixels, error)
	UpdateHash(ctx context.Context, id int64, hash string) error
	UpdateStatistics(ctx context.Context, id int64, min, max float64) error
	FindByImage(ctx context.Context, imageID int64) ([]domain.Pixels, error)
}

// UnitOfWork is a pattern that allows to run transactions across different repositories
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(uow UnitOfWork) error) error
	Records() RecordRepository
	Images() ImageRepository
	Pixels() PixelsRepository
}
