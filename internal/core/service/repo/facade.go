package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

// FileExists reports whether a catalog row exists for the path. The catalog,
// not the filesystem, is the source of truth for existence.
func (s *Service) FileExists(ctx context.Context, path string) (bool, error) {
	p, err := s.check(path)
	if err != nil {
		return false, err
	}
	if p.IsRoot() {
		return true, nil
	}
	return s.uow.Records().Exists(ctx, s.repoID, p.ParentDir(), p.Name())
}

// List returns the names of a directory's registered children.
func (s *Service) List(ctx context.Context, path string) ([]string, error) {
	recs, err := s.ListFiles(ctx, path)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	return names, nil
}

// ListFiles returns the catalog rows of a directory's children.
func (s *Service) ListFiles(ctx context.Context, path string) ([]domain.Record, error) {
	p, err := s.check(path)
	if err != nil {
		return nil, err
	}
	return s.uow.Records().ListChildren(ctx, s.repoID, p.Logical())
}

// TreeList returns every registered record at or below the path, keyed by
// logical path.
func (s *Service) TreeList(ctx context.Context, path string) (map[string]domain.Record, error) {
	p, err := s.check(path)
	if err != nil {
		return nil, err
	}
	recs, err := s.uow.Records().TreeList(ctx, s.repoID, p.Logical())
	if err != nil {
		return nil, err
	}
	tree := make(map[string]domain.Record, len(recs))
	for _, r := range recs {
		tree[r.LogicalPath()] = r
	}
	return tree, nil
}

// Register creates a catalog row for a file already present on disk. A second
// register for the same path returns the existing row. Every ancestor must be
// a registered directory.
func (s *Service) Register(ctx context.Context, path, mime string) (*domain.Record, error) {
	p, err := s.check(path)
	if err != nil {
		return nil, err
	}
	if p.IsRoot() {
		return nil, fmt.Errorf("%w: cannot register the root", domain.ErrEmptyPath)
	}

	info, err := os.Stat(p.Abs())
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", p.Logical(), err)
	}
	if info.IsDir() {
		mime = domain.DirectoryMimetype
	} else if mime == "" {
		if mime, err = p.Mimetype(); err != nil {
			return nil, err
		}
	}

	if p.Depth() > 1 {
		parent, _ := p.Parent()
		if err := s.mat.assertRegistered(ctx, parent); err != nil {
			return nil, fmt.Errorf("parent of %q: %w", p.Logical(), err)
		}
	}

	size := info.Size()
	if info.IsDir() {
		size = 0
	}
	rec := domain.Record{
		Repo:       s.repoID,
		ParentPath: p.ParentDir(),
		Name:       p.Name(),
		Size:       size,
		Mtime:      info.ModTime(),
		Hasher:     p.Algorithm(),
		Mimetype:   mime,
	}

	var created *domain.Record
	err = s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		created, err = uow.Records().Register(ctx, rec)
		return err
	})
	if errors.Is(err, domain.ErrRecordExists) {
		created, err = s.uow.Records().FindRecord(ctx, s.repoID, p.ParentDir(), p.Name())
	}
	if err != nil {
		return nil, err
	}
	p.SetID(created.ID)
	return created, nil
}

// MakeDir creates a directory on disk and in the catalog. With parents set,
// missing ancestors are created as well and an existing target is tolerated.
func (s *Service) MakeDir(ctx context.Context, path string, parents bool) error {
	p, err := s.check(path)
	if err != nil {
		return err
	}
	if p.IsRoot() {
		if parents {
			return nil
		}
		return domain.ErrPathExists
	}

	if !parents && p.Depth() > 1 {
		parent, _ := p.Parent()
		if _, err := os.Stat(parent.Abs()); err != nil {
			return fmt.Errorf("parent of %q: %w", p.Logical(), err)
		}
	}
	return s.mat.MakeDirs(ctx, ancestors(p), parents)
}

// DeletePaths removes filesystem entries and their catalog rows, file first,
// row second. With force set, individual failures are reported but do not stop
// the sweep. The returned id identifies the delete job in the logs.
func (s *Service) DeletePaths(ctx context.Context, paths []string, recursive, force bool) (uuid.UUID, error) {
	jobID := uuid.New()
	log := s.logger.With("job", jobID)

	for _, raw := range paths {
		p, err := s.check(raw)
		if err != nil {
			return jobID, err
		}
		if p.IsRoot() {
			return jobID, fmt.Errorf("%w: cannot delete the root", domain.ErrEmptyPath)
		}

		targets := []string{p.Logical()}
		if recursive {
			below, err := s.uow.Records().TreeList(ctx, s.repoID, p.Logical())
			if err != nil {
				return jobID, err
			}
			for _, r := range below {
				targets = append(targets, r.LogicalPath())
			}
			// deepest first so directories empty out before removal
			sort.Slice(targets, func(i, j int) bool {
				return strings.Count(targets[i], "/") > strings.Count(targets[j], "/")
			})
		}

		for _, t := range targets {
			if err := s.deleteOne(ctx, t); err != nil {
				if !force {
					return jobID, err
				}
				log.Error("delete failed, continuing", "path", t, "error", err)
			}
		}
	}
	log.Info("delete job finished", "paths", len(paths))
	return jobID, nil
}

func (s *Service) deleteOne(ctx context.Context, logical string) error {
	p, err := s.check(logical)
	if err != nil {
		return err
	}
	rec, err := s.uow.Records().FindRecord(ctx, s.repoID, p.ParentDir(), p.Name())
	if err != nil {
		return err
	}

	if rec.IsDirectory() {
		children, err := s.uow.Records().ListChildren(ctx, s.repoID, p.Logical())
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return fmt.Errorf("directory %q is not empty", p.Logical())
		}
	}

	if err := os.Remove(p.Abs()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := s.uow.Records().Delete(ctx, rec.ID); err != nil {
		return fmt.Errorf("file removed but row deletion failed for %q: %w", p.Logical(), err)
	}
	return nil
}

// Mimetype sniffs the path's mimetype.
func (s *Service) Mimetype(ctx context.Context, path string) (string, error) {
	p, err := s.check(path)
	if err != nil {
		return "", err
	}
	if exists, err := s.FileExists(ctx, path); err != nil {
		return "", err
	} else if !exists {
		return "", fmt.Errorf("%w: %q", domain.ErrRecordNotFound, p.Logical())
	}
	return p.Mimetype()
}

// File opens a registered file for reading.
func (s *Service) File(ctx context.Context, path string) (port.RawFileHandle, error) {
	p, err := s.check(path)
	if err != nil {
		return nil, err
	}
	if _, err := s.uow.Records().FindRecord(ctx, s.repoID, p.ParentDir(), p.Name()); err != nil {
		return nil, err
	}
	return os.Open(p.Abs())
}

// FileByID opens a registered file by its catalog id.
func (s *Service) FileByID(ctx context.Context, id int64) (port.RawFileHandle, error) {
	rec, err := s.uow.Records().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.IsDirectory() {
		return nil, fmt.Errorf("%w: record %d", domain.ErrIsDirectory, id)
	}
	p, err := s.check(rec.LogicalPath())
	if err != nil {
		return nil, err
	}
	return os.Open(p.Abs())
}

// WriteFile streams content into the sandboxed path, then registers the file.
// Re-writing an already registered file refreshes its stored size.
func (s *Service) WriteFile(ctx context.Context, path string, content io.Reader) (*domain.Record, error) {
	p, err := s.check(path)
	if err != nil {
		return nil, err
	}
	if p.IsRoot() {
		return nil, fmt.Errorf("%w: cannot write the root", domain.ErrEmptyPath)
	}

	f, err := os.OpenFile(p.Abs(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	rec, err := s.Register(ctx, path, "")
	if err != nil {
		return nil, err
	}
	if err := s.PersistSize(ctx, path, rec.ID); err != nil {
		return nil, err
	}
	return s.uow.Records().FindByID(ctx, rec.ID)
}

// touchAndRegister creates an empty file on disk and its catalog row. Used for
// import log files and the admin touch command.
func (s *Service) touchAndRegister(ctx context.Context, logical string) (*domain.Record, error) {
	p, err := s.check(logical)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(p.Abs(), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	f.Close()
	return s.Register(ctx, logical, "text/plain")
}

// TouchLog creates and registers an import log file.
func (s *Service) TouchLog(ctx context.Context, logical string) (*domain.Record, error) {
	return s.touchAndRegister(ctx, logical)
}

// PersistSize re-reads a registered file's on-disk size and stores it on the row.
func (s *Service) PersistSize(ctx context.Context, logical string, id int64) error {
	p, err := s.check(logical)
	if err != nil {
		return err
	}
	info, err := os.Stat(p.Abs())
	if err != nil {
		return err
	}
	return s.uow.Records().UpdateSize(ctx, id, info.Size(), time.Now())
}
