package port

import "context"

// SeriesInfo describes one image series discovered by a decoder.
type SeriesInfo struct {
	Name   string
	SizeX  int
	SizeY  int
	SizeZ  int
	SizeC  int
	SizeT  int
	Source string // logical path of the file backing this series
}

// ReaderHandle is an open decoder session against one fileset target.
type ReaderHandle interface {
	// Format names the detected format.
	Format() string
	// UsedFiles lists every file the format actually requires, which may
	// exceed the originally declared list (sidecar files, companion indexes).
	UsedFiles() []string
	SeriesCount() int
	Series(i int) SeriesInfo
	PlaneCount(series int) int
	ReadPlane(ctx context.Context, series, plane int) ([]byte, error)
	Close() error
}

// FormatDecoder opens filesets and answers planning hints.
type FormatDecoder interface {
	Open(ctx context.Context, absPath string) (ReaderHandle, error)
	// RequiredDirectoryDepth reports how many trailing directories of the
	// common root a format needs to keep, or false when the format offers no
	// hint.
	RequiredDirectoryDepth(paths []string) (int, bool)
}

// OverlayExtractor is an optional decoder capability for formats carrying
// graphical overlay masks. The import pipeline checks for it instead of
// inspecting concrete decoder types.
type OverlayExtractor interface {
	ExtractOverlays(ctx context.Context) ([][]byte, error)
}
