package decoder

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

// formatDepthHints maps extensions of multi-file formats to the number of
// trailing directories of the common root they need to keep together.
var formatDepthHints = map[string]int{
	".mrxs": 1,
	".vsi":  1,
}

// BuiltinDecoder is a content-sniffing decoder for plain raster formats. Each
// opened file yields a single series with one plane holding the raw bytes.
type BuiltinDecoder struct{}

func NewBuiltinDecoder() *BuiltinDecoder {
	return &BuiltinDecoder{}
}

func (d *BuiltinDecoder) Open(ctx context.Context, absPath string) (port.ReaderHandle, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("error opening fileset target: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", absPath, domain.ErrIsDirectory)
	}

	mtype, err := mimetype.DetectFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("error sniffing %s: %w", absPath, err)
	}
	if mtype.Is("application/octet-stream") {
		return nil, fmt.Errorf("%s: %w", absPath, domain.ErrUnknownFormat)
	}

	series := port.SeriesInfo{
		Name:   strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath)),
		SizeX:  0,
		SizeY:  0,
		SizeZ:  1,
		SizeC:  1,
		SizeT:  1,
		Source: absPath,
	}
	if cfg, ok := decodeDimensions(absPath); ok {
		series.SizeX = cfg.Width
		series.SizeY = cfg.Height
	}

	used := []string{absPath}
	if sidecar := absPath + ".xml"; fileExists(sidecar) {
		used = append(used, sidecar)
	}

	return &builtinHandle{
		format: mtype.String(),
		used:   used,
		series: series,
		path:   absPath,
	}, nil
}

func (d *BuiltinDecoder) RequiredDirectoryDepth(paths []string) (int, bool) {
	depth, found := 0, false
	for _, p := range paths {
		if hint, ok := formatDepthHints[strings.ToLower(filepath.Ext(p))]; ok {
			found = true
			if hint > depth {
				depth = hint
			}
		}
	}
	return depth, found
}

func decodeDimensions(path string) (image.Config, bool) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, false
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, false
	}
	return cfg, true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type builtinHandle struct {
	format string
	used   []string
	series port.SeriesInfo
	path   string
}

func (h *builtinHandle) Format() string      { return h.format }
func (h *builtinHandle) UsedFiles() []string { return h.used }
func (h *builtinHandle) SeriesCount() int    { return 1 }

func (h *builtinHandle) Series(i int) port.SeriesInfo {
	return h.series
}

func (h *builtinHandle) PlaneCount(series int) int {
	return 1
}

func (h *builtinHandle) ReadPlane(ctx context.Context, series, plane int) ([]byte, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("error reading plane: %w", err)
	}
	return data, nil
}

func (h *builtinHandle) Close() error { return nil }
