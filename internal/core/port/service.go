package port

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
)

// FileWriteHandle is a positional write handle for one file being uploaded.
type FileWriteHandle interface {
	io.WriterAt
	io.Closer
}

// RawFileHandle is a read handle over a registered file.
type RawFileHandle interface {
	io.ReadSeekCloser
}

// RepositoryService is the operation surface over the managed repository.
type RepositoryService interface {
	FileExists(ctx context.Context, path string) (bool, error)
	List(ctx context.Context, path string) ([]string, error)
	ListFiles(ctx context.Context, path string) ([]domain.Record, error)
	TreeList(ctx context.Context, path string) (map[string]domain.Record, error)
	Register(ctx context.Context, path, mimetype string) (*domain.Record, error)
	MakeDir(ctx context.Context, path string, parents bool) error
	DeletePaths(ctx context.Context, paths []string, recursive, force bool) (uuid.UUID, error)
	Mimetype(ctx context.Context, path string) (string, error)
	File(ctx context.Context, path string) (RawFileHandle, error)
	// WriteFile streams content into a sandboxed path and registers the
	// resulting file, updating size on re-write.
	WriteFile(ctx context.Context, path string, content io.Reader) (*domain.Record, error)
	FileByID(ctx context.Context, id int64) (RawFileHandle, error)
	// ExecCommand runs one admin command (touch, exists, mkdir [-p], rm, mv,
	// checksum <algo> <expected> <path>) against repository-relative paths.
	ExecCommand(ctx context.Context, args []string) (string, error)
}

// ImportProcess is a live per-fileset upload session.
type ImportProcess interface {
	ID() uuid.UUID
	Group() string
	Location() domain.ImportLocation
	Uploader(index int) (FileWriteHandle, error)
	UploadOffset(index int) int64
	CloseUploader(index int) error
	// VerifyUpload compares client-declared hashes against server-computed
	// ones; on full agreement it starts the import job and returns its id.
	// Any mismatch rejects the batch with a per-index failure map.
	VerifyUpload(ctx context.Context, hashes []string) (uuid.UUID, map[int]string, error)
	Ping() error
	Close() error
}

// ImportService creates and tracks import processes.
type ImportService interface {
	ImportFileset(ctx context.Context, declared []string, settings domain.ImportSettings, ectx domain.ExpansionContext) (ImportProcess, error)
	Process(id uuid.UUID) (ImportProcess, error)
	ListProcesses(groups ...string) []ImportProcess
	PingAll() int
	ShutdownAll() int
}
