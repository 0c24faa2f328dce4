package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
	"github.com/ome/openmicroscopy-sub033/internal/core/repopath"
)

// Materializer guarantees that a chain of directories exists both on disk and
// in the catalog. Creation races against concurrent callers are resolved by a
// single retry: the catalog's uniqueness constraint is the arbiter, not a lock.
type Materializer struct {
	uow        port.UnitOfWork
	repoID     uuid.UUID
	retryDelay time.Duration
	logger     *slog.Logger
}

func NewMaterializer(uow port.UnitOfWork, repoID uuid.UUID, retryDelay time.Duration, logger *slog.Logger) *Materializer {
	return &Materializer{uow: uow, repoID: repoID, retryDelay: retryDelay, logger: logger}
}

// MakeDirs processes the ordered ancestor chain outermost-first. Every entry
// except the last tolerates pre-existing directories; the last one does so
// only when parents is true.
func (m *Materializer) MakeDirs(ctx context.Context, paths []*repopath.Path, parents bool) error {
	for i, p := range paths {
		last := i == len(paths)-1
		allowExisting := parents || !last
		if err := m.ensure(ctx, p, allowExisting); err != nil {
			return fmt.Errorf("materializing %q: %w", p.Logical(), err)
		}
	}
	return nil
}

func (m *Materializer) ensure(ctx context.Context, p *repopath.Path, allowExisting bool) error {
	info, err := os.Stat(p.Abs())
	switch {
	case err == nil:
		if !allowExisting {
			return domain.ErrPathExists
		}
		if !info.IsDir() {
			return domain.ErrNotADirectory
		}
		f, err := os.Open(p.Abs())
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
		}
		f.Close()
		return m.assertRegistered(ctx, p)
	case errors.Is(err, os.ErrNotExist):
		return m.registerAndCreate(ctx, p)
	default:
		return err
	}
}

// assertRegistered fails loudly when a directory is present on disk without a
// catalog row: that indicates external tampering, never a state to adopt.
func (m *Materializer) assertRegistered(ctx context.Context, p *repopath.Path) error {
	rec, err := m.uow.Records().FindRecord(ctx, m.repoID, p.ParentDir(), p.Name())
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrNotRegistered
		}
		return err
	}
	p.SetID(rec.ID)
	return nil
}

func (m *Materializer) registerAndCreate(ctx context.Context, p *repopath.Path) error {
	err := m.tryCreate(ctx, p)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrRecordExists) && !errors.Is(err, os.ErrExist) {
		return err
	}

	// A concurrent creator won the race. Back off once, then re-check and
	// continue; a second collision is a hard failure.
	m.logger.Info("directory creation race detected", "path", p.Logical())
	time.Sleep(m.retryDelay)

	info, statErr := os.Stat(p.Abs())
	if statErr != nil || !info.IsDir() {
		return fmt.Errorf("lost creation race for %q but directory is absent: %w", p.Logical(), err)
	}
	return m.assertRegistered(ctx, p)
}

func (m *Materializer) tryCreate(ctx context.Context, p *repopath.Path) error {
	now := time.Now()
	return m.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		rec, err := uow.Records().Register(ctx, domain.Record{
			Repo:       m.repoID,
			ParentPath: p.ParentDir(),
			Name:       p.Name(),
			Mimetype:   domain.DirectoryMimetype,
			Mtime:      now,
		})
		if err != nil {
			return err
		}
		if err := os.Mkdir(p.Abs(), 0o755); err != nil {
			return err
		}
		p.SetID(rec.ID)
		return nil
	})
}
