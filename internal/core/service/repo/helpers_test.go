package repo_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/adapters/checksum"
	"github.com/ome/openmicroscopy-sub033/internal/adapters/repository"
	"github.com/ome/openmicroscopy-sub033/internal/config"
	"github.com/ome/openmicroscopy-sub033/internal/core/service/repo"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bytesReader(s string) io.Reader {
	return strings.NewReader(s)
}

// newTestService builds the facade over a temp-dir sandbox and a mocked
// catalog.
func newTestService(t *testing.T) (*repo.Service, *repository.MockUnitOfWork, string) {
	t.Helper()
	root := t.TempDir()
	uow := repository.NewMockUnitOfWork()

	cfg := config.RepositoryConfig{
		Root:            root,
		CaseSensitive:   true,
		RejectWindows:   true,
		Transliterate:   true,
		DefaultChecksum: "SHA-256",
	}
	retry := config.ImportConfig{RetryDelay: time.Millisecond}

	svc := repo.NewService(uow, checksum.NewProvider(), cfg, uuid.New(), retry, discardLogger())
	return svc, uow, root
}
