package thumbnail

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Generator queues thumbnail work for imported pixel sets. Rendering itself
// runs in the imaging pipeline outside this service; this adapter records the
// request and keeps a count for operational visibility.
type Generator struct {
	logger *slog.Logger
	queued atomic.Int64
}

func NewGenerator(logger *slog.Logger) *Generator {
	return &Generator{logger: logger}
}

func (g *Generator) Generate(ctx context.Context, pixelsID int64) error {
	n := g.queued.Add(1)
	g.logger.Info("thumbnail queued", "pixels", pixelsID, "total_queued", n)
	return nil
}

// Queued reports how many thumbnail requests have been recorded.
func (g *Generator) Queued() int64 {
	return g.queued.Load()
}
