package port

import "context"

// ThumbnailGenerator renders preview thumbnails for imported pixel sets.
// Rendering itself lives outside the repository core.
type ThumbnailGenerator interface {
	Generate(ctx context.Context, pixelsID int64) error
}
