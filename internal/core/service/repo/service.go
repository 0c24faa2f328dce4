package repo

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/config"
	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
	"github.com/ome/openmicroscopy-sub033/internal/core/repopath"
)

// Service is the repository facade: every operation resolves its raw path
// argument through the repopath machinery before touching disk or catalog.
type Service struct {
	uow       port.UnitOfWork
	checksums port.ChecksumProvider
	logger    *slog.Logger

	root        string
	repoID      uuid.UUID
	rules       repopath.RuleSet
	defaultAlgo domain.ChecksumAlgo
	validator   *repopath.Validator
	mat         *Materializer
}

// NewService creates the repository facade. The repository identity (lock +
// UUID file) must already be established via EnsureIdentity.
func NewService(uow port.UnitOfWork, checksums port.ChecksumProvider, cfg config.RepositoryConfig, repoID uuid.UUID, retry config.ImportConfig, logger *slog.Logger) *Service {
	rules := repopath.RuleSet{
		CaseSensitive:      cfg.CaseSensitive,
		RejectWindowsNames: cfg.RejectWindows,
		Transliterate:      cfg.Transliterate,
	}
	return &Service{
		uow:         uow,
		checksums:   checksums,
		logger:      logger,
		root:        cfg.Root,
		repoID:      repoID,
		rules:       rules,
		defaultAlgo: domain.ChecksumAlgo(cfg.DefaultChecksum),
		validator:   repopath.NewValidator(rules),
		mat:         NewMaterializer(uow, repoID, retry.RetryDelay, logger),
	}
}

// Root returns the configured repository root directory.
func (s *Service) Root() string {
	return s.root
}

// RepoID returns the stable identity of this repository root.
func (s *Service) RepoID() uuid.UUID {
	return s.repoID
}

// Rules returns the path rule set in force.
func (s *Service) Rules() repopath.RuleSet {
	return s.rules
}

// Materializer exposes the directory materializer for planners.
func (s *Service) Materializer() *Materializer {
	return s.mat
}

// Validator exposes the naming validator for planners.
func (s *Service) Validator() *repopath.Validator {
	return s.validator
}

// check resolves a raw client path into a sandboxed repopath.Path.
func (s *Service) check(raw string) (*repopath.Path, error) {
	return repopath.New(s.root, raw, s.defaultAlgo, s.rules)
}

// checkWithAlgo resolves a raw path with an explicit checksum algorithm.
func (s *Service) checkWithAlgo(raw string, algo domain.ChecksumAlgo) (*repopath.Path, error) {
	return repopath.New(s.root, raw, algo, s.rules)
}

// Check exposes path resolution to collaborating services (import process
// construction); external input still only enters through facade operations.
func (s *Service) Check(raw string) (*repopath.Path, error) {
	return s.check(raw)
}
