package importer

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

// Container is the in-memory registry of live import processes, partitioned
// by access group. List returns snapshots, never live views; the sweep
// operations isolate failures between independent processes.
type Container struct {
	mu      sync.RWMutex
	byGroup map[string]map[uuid.UUID]port.ImportProcess
	logger  *slog.Logger
}

func NewContainer(logger *slog.Logger) *Container {
	return &Container{
		byGroup: make(map[string]map[uuid.UUID]port.ImportProcess),
		logger:  logger,
	}
}

func (c *Container) Add(p port.ImportProcess) {
	c.mu.Lock()
	defer c.mu.Unlock()
	group := c.byGroup[p.Group()]
	if group == nil {
		group = make(map[uuid.UUID]port.ImportProcess)
		c.byGroup[p.Group()] = group
	}
	group[p.ID()] = p
}

func (c *Container) Remove(p port.ImportProcess) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if group, ok := c.byGroup[p.Group()]; ok {
		delete(group, p.ID())
		if len(group) == 0 {
			delete(c.byGroup, p.Group())
		}
	}
}

// Get looks a live process up by id across all groups.
func (c *Container) Get(id uuid.UUID) (port.ImportProcess, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, group := range c.byGroup {
		if p, ok := group[id]; ok {
			return p, true
		}
	}
	return nil, false
}

// List returns a snapshot of live processes, filtered to the requested groups
// or spanning all groups when none are named.
func (c *Container) List(groups ...string) []port.ImportProcess {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []port.ImportProcess
	if len(groups) == 0 {
		for _, group := range c.byGroup {
			for _, p := range group {
				out = append(out, p)
			}
		}
		return out
	}
	for _, g := range groups {
		for _, p := range c.byGroup[g] {
			out = append(out, p)
		}
	}
	return out
}

// PingAll invokes the liveness callback on every process. A failing process
// is counted but does not stop the sweep.
func (c *Container) PingAll() int {
	return c.sweep("ping", port.ImportProcess.Ping)
}

// ShutdownAll terminates every process; used at server shutdown to avoid
// orphaned resources.
func (c *Container) ShutdownAll() int {
	return c.sweep("shutdown", port.ImportProcess.Close)
}

func (c *Container) sweep(name string, fn func(port.ImportProcess) error) int {
	errs := 0
	for _, p := range c.List() {
		if err := fn(p); err != nil {
			errs++
			c.logger.Error("process sweep failure", "op", name, "process", p.ID(), "error", err)
		}
	}
	return errs
}
