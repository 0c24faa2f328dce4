package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

// Import steps, executed strictly in increasing order.
const (
	stepMetadata int32 = iota
	stepPixels
	stepThumbnails
	stepNotify
	stepResponse
	stepDone
)

// Request is one resumable import job: open reader, import metadata, process
// pixel data, generate thumbnails, notify downstream, return the object map.
// Cleanup runs exactly once on every exit path.
type Request struct {
	id      uuid.UUID
	repoID  uuid.UUID
	process *Process

	decoder        port.FormatDecoder
	store          port.MetadataStore
	thumbs         port.ThumbnailGenerator
	checksums      port.ChecksumProvider
	publisher      port.EventPublisher
	sink           port.EventSink
	uow            port.UnitOfWork
	persistLogSize func(ctx context.Context) error
	destroySession func() error
	logger         *slog.Logger

	step    atomic.Int32
	reader  port.ReaderHandle
	objects *port.ObjectMap

	cleanupOnce sync.Once
}

// Run drives the whole pipeline on the job's worker goroutine. Any failure
// leaves the job in a terminal cancelled state after cleanup.
func (r *Request) Run(ctx context.Context) (objects *port.ObjectMap, err error) {
	defer func() {
		r.Cleanup(ctx)
		if err != nil && !errors.Is(err, domain.ErrImportCancelled) {
			err = fmt.Errorf("%w: %v", domain.ErrImportCancelled, err)
		}
	}()

	if err = r.Init(ctx); err != nil {
		return nil, err
	}
	if err = r.ImportMetadata(ctx); err != nil {
		return nil, err
	}
	if err = r.PixelData(ctx); err != nil {
		return nil, err
	}
	if err = r.GenerateThumbnails(ctx); err != nil {
		return nil, err
	}
	if err = r.NotifyDownstream(ctx); err != nil {
		return nil, err
	}
	return r.Response(ctx)
}

// Init opens the format reader against the import target and discovers the
// complete set of files the format actually requires. Failure here is fatal;
// no numbered step runs afterwards.
func (r *Request) Init(ctx context.Context) error {
	target := r.process.paths[0].Abs()
	reader, err := r.decoder.Open(ctx, target)
	if err != nil {
		r.report(err, r.process.location.CheckedPaths[0], "")
		return err
	}
	r.reader = reader

	r.appendLog(fmt.Sprintf("opened %s as %s, %d file(s) used", r.process.location.CheckedPaths[0], reader.Format(), len(reader.UsedFiles())))
	r.sink.OnEvent(domain.ImportEvent{
		Kind:      domain.EventFilesetLoaded,
		Process:   r.process.id,
		Format:    reader.Format(),
		UsedFiles: reader.UsedFiles(),
	})
	return nil
}

// ImportMetadata (step 0) applies the user-supplied overrides and persists
// every discovered image/pixels record in one batch.
func (r *Request) ImportMetadata(ctx context.Context) error {
	return r.runStep(ctx, stepMetadata, "importMetadata", func(ctx context.Context) error {
		if err := r.store.SetOverrides(ctx, r.process.settings); err != nil {
			return err
		}
		series := make([]port.SeriesInfo, r.reader.SeriesCount())
		for i := range series {
			series[i] = r.reader.Series(i)
		}
		objects, err := r.store.SaveAll(ctx, r.process.fileset, series)
		if err != nil {
			return err
		}
		r.objects = objects
		r.sink.OnEvent(domain.ImportEvent{Kind: domain.EventMetadataImported, Process: r.process.id, Format: r.reader.Format()})
		return nil
	})
}

// PixelData (step 1) streams every plane of every series through the reader,
// accumulating a running content hash per pixel set and min/max statistics.
func (r *Request) PixelData(ctx context.Context) error {
	return r.runStep(ctx, stepPixels, "pixelData", func(ctx context.Context) error {
		if r.process.settings.SkipStats {
			r.appendLog("pixel statistics suppressed by settings")
			return nil
		}
		for s := 0; s < r.reader.SeriesCount() && s < len(r.objects.Pixels); s++ {
			hasher, err := r.checksums.NewHasher(r.process.settings.Checksum)
			if err != nil {
				return err
			}
			var min, max float64
			sampled := false
			for plane := 0; plane < r.reader.PlaneCount(s); plane++ {
				buf, err := r.reader.ReadPlane(ctx, s, plane)
				if err != nil {
					return err
				}
				if _, err := hasher.Write(buf); err != nil {
					return err
				}
				for _, b := range buf {
					v := float64(b)
					if !sampled {
						min, max = v, v
						sampled = true
						continue
					}
					if v < min {
						min = v
					}
					if v > max {
						max = v
					}
				}
			}

			px := r.objects.Pixels[s]
			if err := r.uow.Pixels().UpdateHash(ctx, px.ID, hasher.Digest()); err != nil {
				return err
			}
			// A series without a single sample has no statistics to persist.
			if !sampled {
				r.appendLog(fmt.Sprintf("series %d: no pixel samples, statistics skipped", s))
				continue
			}
			if err := r.store.PopulateStatistics(ctx, px.ID, min, max); err != nil {
				return err
			}
		}
		r.sink.OnEvent(domain.ImportEvent{Kind: domain.EventPixelsProcessed, Process: r.process.id, Format: r.reader.Format()})
		return nil
	})
}

// GenerateThumbnails (step 2) imports format-specific overlay masks when the
// decoder supports extraction, then triggers thumbnail generation.
func (r *Request) GenerateThumbnails(ctx context.Context) error {
	return r.runStep(ctx, stepThumbnails, "generateThumbnails", func(ctx context.Context) error {
		if extractor, ok := r.reader.(port.OverlayExtractor); ok {
			overlays, err := extractor.ExtractOverlays(ctx)
			if err != nil {
				return err
			}
			r.appendLog(fmt.Sprintf("extracted %d overlay mask(s)", len(overlays)))
		}
		if r.process.settings.SkipThumbs {
			return nil
		}
		for _, px := range r.objects.Pixels {
			if err := r.thumbs.Generate(ctx, px.ID); err != nil {
				return err
			}
		}
		r.sink.OnEvent(domain.ImportEvent{Kind: domain.EventThumbnailsReady, Process: r.process.id})
		return nil
	})
}

// NotifyDownstream (step 3) triggers asynchronous downstream processing.
// Publish failures are logged, never fatal: the broker catches up on its own.
func (r *Request) NotifyDownstream(ctx context.Context) error {
	return r.runStep(ctx, stepNotify, "notifyDownstream", func(ctx context.Context) error {
		msg := domain.FilesetRegistered{
			Fileset: r.process.fileset.ID,
			Repo:    r.repoID,
			Paths:   r.process.location.CheckedPaths,
		}
		for _, img := range r.objects.Images {
			msg.ImageIDs = append(msg.ImageIDs, img.ID)
		}
		for _, px := range r.objects.Pixels {
			msg.PixelsIDs = append(msg.PixelsIDs, px.ID)
		}
		if err := r.publisher.PublishFilesetRegistered(ctx, msg); err != nil {
			r.logger.Error("downstream notification failed", "job", r.id, "error", err)
		}
		return nil
	})
}

// Response (step 4) returns the accumulated object map.
func (r *Request) Response(ctx context.Context) (*port.ObjectMap, error) {
	err := r.runStep(ctx, stepResponse, "response", func(ctx context.Context) error {
		r.sink.OnEvent(domain.ImportEvent{Kind: domain.EventImportFinished, Process: r.process.id})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.objects, nil
}

// runStep enforces step ordering, reports recognized failure categories
// through the event sink, and persists the log-file size on every exit,
// success or failure. A failure persisting the log size is itself fatal.
func (r *Request) runStep(ctx context.Context, step int32, name string, fn func(ctx context.Context) error) error {
	if err := r.assertStep(step); err != nil {
		return err
	}

	err := fn(ctx)

	r.appendLog(fmt.Sprintf("step %d (%s): done=%v", step, name, err == nil))
	if perr := r.persistLogSize(ctx); perr != nil && err == nil {
		err = fmt.Errorf("persisting log size after %s: %w", name, perr)
	}

	if err != nil {
		r.report(err, r.process.location.CheckedPaths[0], name)
		return fmt.Errorf("%w: step %d (%s): %v", domain.ErrImportCancelled, step, name, err)
	}
	r.step.Store(step + 1)
	return nil
}

func (r *Request) assertStep(step int32) error {
	if cur := r.step.Load(); cur != step {
		return fmt.Errorf("%w: expected %d, got %d", domain.ErrStepOrder, cur, step)
	}
	return nil
}

// report classifies a failure and notifies the observer channel with enough
// context to act on it. Unrecognized failures are wrapped generically.
func (r *Request) report(err error, filename, operation string) {
	kind := domain.EventInternalFailure
	switch {
	case errors.Is(err, domain.ErrMissingLibrary):
		kind = domain.EventMissingLibrary
	case errors.Is(err, domain.ErrUnsupportedCompression):
		kind = domain.EventUnsupportedData
	case errors.Is(err, domain.ErrUnknownFormat):
		kind = domain.EventUnknownFormat
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		kind = domain.EventFileReadFailure
	}

	ev := domain.ImportEvent{
		Kind:     kind,
		Process:  r.process.id,
		Filename: filename,
		Err:      err,
	}
	if kind == domain.EventInternalFailure && operation != "" {
		ev.Err = fmt.Errorf("%s on %q: %w", operation, filename, err)
	}
	if r.reader != nil {
		ev.Format = r.reader.Format()
		ev.UsedFiles = r.reader.UsedFiles()
	}
	r.sink.OnEvent(ev)
}

// Cleanup runs the finalization sequence exactly once regardless of outcome:
// close the reader, close the metadata-store session, persist the final log
// size, destroy the backing session, then auto-close the process if requested.
func (r *Request) Cleanup(ctx context.Context) {
	r.cleanupOnce.Do(func() {
		defer func() {
			if r.process.settings.AutoClose {
				r.process.Close()
			}
		}()

		if r.reader != nil {
			if err := r.reader.Close(); err != nil {
				r.logger.Error("closing reader", "job", r.id, "error", err)
			}
		}
		if err := r.store.Close(); err != nil {
			r.logger.Error("closing metadata store", "job", r.id, "error", err)
		}
		if err := r.persistLogSize(ctx); err != nil {
			r.logger.Error("persisting final log size", "job", r.id, "error", err)
		}
		if r.destroySession != nil {
			if err := r.destroySession(); err != nil {
				r.logger.Error("destroying session", "job", r.id, "error", err)
			}
		}
	})
}

func (r *Request) appendLog(line string) {
	f, err := os.OpenFile(r.process.logPath.Abs(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		r.logger.Error("opening import log", "job", r.id, "error", err)
		return
	}
	defer f.Close()
	fmt.Fprintln(f, line)
}
