package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
	"github.com/ome/openmicroscopy-sub033/internal/core/service/repo"
)

// Service consumes fileset-registered messages and backfills catalog rows
// with sniffed mimetypes. Runs in its own process, decoupled from imports.
type Service struct {
	repo   *repo.Service
	uow    port.UnitOfWork
	logger *slog.Logger
}

func NewService(repoSvc *repo.Service, uow port.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{repo: repoSvc, uow: uow, logger: logger}
}

// HandleMessage processes one fileset-registered message. Per-path failures
// are logged and skipped so one unreadable file cannot poison the batch.
func (s *Service) HandleMessage(ctx context.Context, data []byte) error {
	var msg domain.FilesetRegistered
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal fileset message: %w", err)
	}
	if msg.Repo != s.repo.RepoID() {
		s.logger.Warn("message for foreign repository ignored", "repo", msg.Repo)
		return nil
	}

	log := s.logger.With("fileset", msg.Fileset)
	updated := 0
	for _, logical := range msg.Paths {
		if err := s.backfill(ctx, logical); err != nil {
			log.Error("mimetype backfill failed", "path", logical, "error", err)
			continue
		}
		updated++
	}
	log.Info("fileset indexed", "paths", len(msg.Paths), "updated", updated)
	return nil
}

func (s *Service) backfill(ctx context.Context, logical string) error {
	parent, name := splitLogical(logical)
	rec, err := s.uow.Records().FindRecord(ctx, s.repo.RepoID(), parent, name)
	if err != nil {
		return err
	}
	if rec.IsDirectory() {
		return nil
	}

	sniffed, err := s.repo.Mimetype(ctx, logical)
	if err != nil {
		return err
	}
	if sniffed == rec.Mimetype {
		return nil
	}
	return s.uow.Records().UpdateMimetype(ctx, rec.ID, sniffed)
}

func splitLogical(logical string) (parent, name string) {
	if i := strings.LastIndex(logical, "/"); i >= 0 {
		return logical[:i], logical[i+1:]
	}
	return "", logical
}
