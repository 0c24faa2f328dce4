package importer

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
	"github.com/ome/openmicroscopy-sub033/internal/core/repopath"
)

// Process is one live fileset upload session. It hands out positional write
// handles per file index, tracks upload offsets for resumable uploads, and
// gates the import job behind batch checksum verification.
type Process struct {
	id       uuid.UUID
	group    string
	fileset  domain.Fileset
	settings domain.ImportSettings
	location domain.ImportLocation
	paths    []*repopath.Path
	logPath  *repopath.Path
	logRecID int64

	checksums port.ChecksumProvider
	startJob  func(ctx context.Context, p *Process) (uuid.UUID, error)
	onClose   func(p *Process)

	uploads  sync.Map // index -> *trackedHandle
	lastPing atomic.Int64
	closed   atomic.Bool
}

func (p *Process) ID() uuid.UUID {
	return p.id
}

func (p *Process) Group() string {
	return p.group
}

func (p *Process) Location() domain.ImportLocation {
	return p.location
}

// Uploader returns the write handle for the file at index. Repeated calls
// before closing return the same cached handle; a handle closed and reopened
// starts fresh bookkeeping at offset 0.
func (p *Process) Uploader(index int) (port.FileWriteHandle, error) {
	if p.closed.Load() {
		return nil, domain.ErrProcessNotFound
	}
	if index < 0 || index >= len(p.paths) {
		return nil, fmt.Errorf("file index %d out of range [0,%d)", index, len(p.paths))
	}
	if h, ok := p.uploads.Load(index); ok {
		return h.(*trackedHandle), nil
	}

	// A new handle means the content is about to change; a digest cached by
	// an earlier verification round no longer describes it.
	p.paths[index].Invalidate()

	f, err := os.OpenFile(p.paths[index].Abs(), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening upload target %q: %w", p.location.CheckedPaths[index], err)
	}
	h := &trackedHandle{proc: p, index: index, f: f}
	if prev, loaded := p.uploads.LoadOrStore(index, h); loaded {
		// another thread opened the same index first
		f.Close()
		return prev.(*trackedHandle), nil
	}
	return h, nil
}

// UploadOffset returns the last known write boundary for the file at index,
// or 0 when no handle is currently open for it.
func (p *Process) UploadOffset(index int) int64 {
	if h, ok := p.uploads.Load(index); ok {
		return h.(*trackedHandle).offset.Load()
	}
	return 0
}

// CloseUploader closes the handle at index, removing its bookkeeping entry.
func (p *Process) CloseUploader(index int) error {
	if h, ok := p.uploads.Load(index); ok {
		return h.(*trackedHandle).Close()
	}
	return nil
}

// VerifyUpload compares the client-declared hash of every file against the
// server-computed one. Mismatches are collected across all files before the
// whole batch is rejected; only full agreement starts the import job.
func (p *Process) VerifyUpload(ctx context.Context, hashes []string) (uuid.UUID, map[int]string, error) {
	if p.closed.Load() {
		return uuid.Nil, nil, domain.ErrProcessNotFound
	}
	if len(hashes) != len(p.paths) {
		return uuid.Nil, nil, fmt.Errorf("expected %d hashes, got %d", len(p.paths), len(hashes))
	}

	p.closeAllUploaders()

	failures := make(map[int]string)
	for i, declared := range hashes {
		computed, err := p.paths[i].Hash(p.checksums)
		if err != nil {
			return uuid.Nil, nil, fmt.Errorf("hashing %q: %w", p.location.CheckedPaths[i], err)
		}
		if computed != declared {
			failures[i] = computed
		}
	}
	if len(failures) > 0 {
		return uuid.Nil, failures, fmt.Errorf("%w: %d of %d files", domain.ErrChecksumMismatch, len(failures), len(hashes))
	}

	jobID, err := p.startJob(ctx, p)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return jobID, nil, nil
}

// Ping marks the process live for the container's keep-alive sweep.
func (p *Process) Ping() error {
	if p.closed.Load() {
		return domain.ErrProcessNotFound
	}
	p.lastPing.Store(time.Now().UnixNano())
	return nil
}

// Close shuts the process down, releasing every open upload handle.
func (p *Process) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.closeAllUploaders()
	if p.onClose != nil {
		p.onClose(p)
	}
	return nil
}

func (p *Process) closeAllUploaders() {
	p.uploads.Range(func(key, value any) bool {
		value.(*trackedHandle).Close()
		return true
	})
}

// trackedHandle wraps the underlying file so every write advances the tracked
// offset to position + length. Offsets are monotonically non-decreasing while
// the handle is open.
type trackedHandle struct {
	proc   *Process
	index  int
	f      *os.File
	offset atomic.Int64
	done   atomic.Bool
}

func (h *trackedHandle) WriteAt(b []byte, off int64) (int, error) {
	if h.done.Load() {
		return 0, os.ErrClosed
	}
	n, err := h.f.WriteAt(b, off)
	if n > 0 {
		h.advance(off + int64(n))
	}
	return n, err
}

func (h *trackedHandle) advance(end int64) {
	for {
		cur := h.offset.Load()
		if end <= cur || h.offset.CompareAndSwap(cur, end) {
			return
		}
	}
}

func (h *trackedHandle) Close() error {
	if !h.done.CompareAndSwap(false, true) {
		return nil
	}
	h.proc.uploads.Delete(h.index)
	return h.f.Close()
}
