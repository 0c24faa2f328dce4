package importer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
	"github.com/ome/openmicroscopy-sub033/internal/core/service/repo"
)

// MetadataStoreFactory opens one metadata-store session per import job.
type MetadataStoreFactory func(ctx context.Context) (port.MetadataStore, error)

// Service creates and tracks fileset import processes.
type Service struct {
	repo      *repo.Service
	planner   *repo.Planner
	container *Container
	decoder   port.FormatDecoder
	checksums port.ChecksumProvider
	uow       port.UnitOfWork
	stores    MetadataStoreFactory
	thumbs    port.ThumbnailGenerator
	publisher port.EventPublisher
	sink      port.EventSink
	logger    *slog.Logger
}

func NewService(
	repoSvc *repo.Service,
	planner *repo.Planner,
	container *Container,
	decoder port.FormatDecoder,
	checksums port.ChecksumProvider,
	uow port.UnitOfWork,
	stores MetadataStoreFactory,
	thumbs port.ThumbnailGenerator,
	publisher port.EventPublisher,
	sink port.EventSink,
	logger *slog.Logger,
) *Service {
	if sink == nil {
		sink = &logSink{logger: logger}
	}
	return &Service{
		repo:      repoSvc,
		planner:   planner,
		container: container,
		decoder:   decoder,
		checksums: checksums,
		uow:       uow,
		stores:    stores,
		thumbs:    thumbs,
		publisher: publisher,
		sink:      sink,
		logger:    logger,
	}
}

// ImportFileset plans a collision-free destination for the declared files,
// pre-creates the directory tree and log file, and registers a new live
// process in the container.
func (s *Service) ImportFileset(ctx context.Context, declared []string, settings domain.ImportSettings, ectx domain.ExpansionContext) (port.ImportProcess, error) {
	location, checked, logPath, err := s.planner.Plan(ctx, declared, ectx)
	if err != nil {
		return nil, err
	}

	logRec, err := s.repo.TouchLog(ctx, logPath.Logical())
	if err != nil {
		return nil, err
	}

	if settings.Checksum == "" {
		settings.Checksum = checked[0].Algorithm()
	}

	p := &Process{
		id:    uuid.New(),
		group: ectx.Group,
		fileset: domain.Fileset{
			ID:            uuid.New(),
			DeclaredFiles: declared,
			CreatedAt:     time.Now(),
		},
		settings:  settings,
		location:  *location,
		paths:     checked,
		logPath:   logPath,
		logRecID:  logRec.ID,
		checksums: s.checksums,
		startJob:  s.startJob,
		onClose:   func(p *Process) { s.container.Remove(p) },
	}
	s.container.Add(p)
	s.logger.Info("import process created",
		"process", p.id, "fileset", p.fileset.ID,
		"shared_path", location.SharedPath, "files", len(declared))
	return p, nil
}

// startJob runs after the checksum gate passes: register the uploaded files
// in the catalog, then drive the import request on a dedicated worker
// goroutine. The returned id is the job handle.
func (s *Service) startJob(ctx context.Context, p *Process) (uuid.UUID, error) {
	for _, cp := range p.paths {
		rec, err := s.repo.Register(ctx, cp.Logical(), "")
		if err != nil {
			return uuid.Nil, err
		}
		hash, err := cp.Hash(s.checksums)
		if err != nil {
			return uuid.Nil, err
		}
		if err := s.uow.Records().UpdateHash(ctx, rec.ID, hash, cp.Algorithm()); err != nil {
			return uuid.Nil, err
		}
	}

	store, err := s.stores(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	req := &Request{
		id:        uuid.New(),
		repoID:    s.repo.RepoID(),
		process:   p,
		decoder:   s.decoder,
		store:     store,
		thumbs:    s.thumbs,
		checksums: s.checksums,
		publisher: s.publisher,
		sink:      s.sink,
		uow:       s.uow,
		persistLogSize: func(ctx context.Context) error {
			return s.repo.PersistSize(ctx, p.logPath.Logical(), p.logRecID)
		},
		logger: s.logger,
	}

	// The long-running pipeline gets its own worker goroutine, detached from
	// the request that triggered verification.
	go func() {
		jobCtx := context.WithoutCancel(ctx)
		if _, err := req.Run(jobCtx); err != nil {
			s.logger.Error("import job cancelled", "job", req.id, "process", p.id, "error", err)
			return
		}
		s.logger.Info("import job complete", "job", req.id, "process", p.id)
	}()
	return req.id, nil
}

// Process looks a live process up by handle.
func (s *Service) Process(id uuid.UUID) (port.ImportProcess, error) {
	if p, ok := s.container.Get(id); ok {
		return p, nil
	}
	return nil, domain.ErrProcessNotFound
}

// ListProcesses snapshots the live processes for the given groups.
func (s *Service) ListProcesses(groups ...string) []port.ImportProcess {
	return s.container.List(groups...)
}

// PingAll sweeps a keep-alive over every live process.
func (s *Service) PingAll() int {
	return s.container.PingAll()
}

// ShutdownAll terminates every live process.
func (s *Service) ShutdownAll() int {
	return s.container.ShutdownAll()
}

// logSink reports import events to the structured log when no other observer
// is attached.
type logSink struct {
	logger *slog.Logger
}

func (l *logSink) OnEvent(ev domain.ImportEvent) {
	if ev.Err != nil {
		l.logger.Error("import event", "kind", ev.Kind, "process", ev.Process, "file", ev.Filename, "format", ev.Format, "error", ev.Err)
		return
	}
	l.logger.Info("import event", "kind", ev.Kind, "process", ev.Process, "format", ev.Format)
}
