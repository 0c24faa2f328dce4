package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
	"github.com/ome/openmicroscopy-sub033/internal/core/repopath"
)

// Planner computes a collision-free destination layout for a fileset import
// and pre-creates the directory tree.
type Planner struct {
	svc         *Service
	decoder     port.FormatDecoder
	template    string
	defaultTrim int
}

func NewPlanner(svc *Service, decoder port.FormatDecoder, template string, defaultTrim int) *Planner {
	return &Planner{svc: svc, decoder: decoder, template: template, defaultTrim: defaultTrim}
}

// Plan turns the client-declared file paths into an ImportLocation. The
// returned checked paths are parallel to location.UsedFiles; the last return
// value is the fileset log file (not yet created).
func (pl *Planner) Plan(ctx context.Context, declared []string, ectx domain.ExpansionContext) (*domain.ImportLocation, []*repopath.Path, *repopath.Path, error) {
	if len(declared) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no files declared", domain.ErrEmptyPath)
	}

	expanded := ExpandTemplate(pl.template, ectx)
	rootPart, userPart := SplitRootOwned(expanded)

	common := CommonRoot(declared)
	keep, ok := pl.decoder.RequiredDirectoryDepth(declared)
	if !ok {
		keep = pl.defaultTrim
	}
	trimmed := TrimPath(common, keep)

	prefix := joinLogical(rootPart, userPart)
	if err := pl.svc.Validator().ValidateAll(prefix, trimmed); err != nil {
		return nil, nil, nil, err
	}

	relFiles := make([]string, len(declared))
	for i, d := range declared {
		rel := strings.Trim(d, "/")
		if common != "" {
			rel = strings.TrimPrefix(rel, common+"/")
		}
		if err := pl.svc.Validator().ValidatePath(rel); err != nil {
			return nil, nil, nil, err
		}
		relFiles[i] = rel
	}

	base, err := pl.freeBase(ctx, joinLogical(prefix, trimmed))
	if err != nil {
		return nil, nil, nil, err
	}

	// The shared base must be fresh; everything above it tolerates existing
	// directories.
	if err := pl.svc.Materializer().MakeDirs(ctx, ancestors(base), false); err != nil {
		return nil, nil, nil, err
	}

	checked := make([]*repopath.Path, len(relFiles))
	seen := make(map[string]struct{})
	for i, rel := range relFiles {
		p, err := pl.svc.check(base.Logical() + "/" + rel)
		if err != nil {
			return nil, nil, nil, err
		}
		checked[i] = p

		parent, err := p.Parent()
		if err != nil {
			return nil, nil, nil, err
		}
		if _, ok := seen[parent.Logical()]; ok || parent.Equals(base) {
			continue
		}
		seen[parent.Logical()] = struct{}{}
		if err := pl.svc.Materializer().MakeDirs(ctx, ancestors(parent), true); err != nil {
			return nil, nil, nil, err
		}
	}

	logPath, err := pl.svc.check(base.Logical() + ".log")
	if err != nil {
		return nil, nil, nil, err
	}

	loc := &domain.ImportLocation{
		SharedPath:   base.Logical(),
		UsedFiles:    relFiles,
		CheckedPaths: make([]string, len(checked)),
		LogFile:      logPath.Logical(),
	}
	for i, p := range checked {
		loc.CheckedPaths[i] = p.Logical()
	}
	return loc, checked, logPath, nil
}

// maxBaseProbes caps the numeric-suffix search for a free base directory.
const maxBaseProbes = 1000

// freeBase appends -1, -2, … until the base directory collides with nothing,
// neither on disk nor in the catalog. Gives up after maxBaseProbes suffixes.
func (pl *Planner) freeBase(ctx context.Context, logical string) (*repopath.Path, error) {
	for n := 0; n <= maxBaseProbes; n++ {
		candidate := logical
		if n > 0 {
			candidate = fmt.Sprintf("%s-%d", logical, n)
		}
		p, err := pl.svc.check(candidate)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(p.Abs()); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		exists, err := pl.svc.uow.Records().Exists(ctx, pl.svc.repoID, p.ParentDir(), p.Name())
		if err != nil {
			return nil, err
		}
		if !exists {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no free name for %q after %d probes", domain.ErrPathExists, logical, maxBaseProbes)
}

// CommonRoot computes the longest directory prefix shared by every input path.
// The terminal filename component of a path is never part of the common root.
func CommonRoot(paths []string) string {
	var common []string
	for i, p := range paths {
		comps := strings.Split(strings.Trim(p, "/"), "/")
		dirs := comps[:len(comps)-1]
		if i == 0 {
			common = dirs
			continue
		}
		n := len(common)
		if len(dirs) < n {
			n = len(dirs)
		}
		j := 0
		for j < n && common[j] == dirs[j] {
			j++
		}
		common = common[:j]
	}
	return strings.Join(common, "/")
}

// TrimPath keeps exactly the trailing `keep` directories of the common root.
// A keep larger than the root is a no-op; negative values are clamped.
func TrimPath(common string, keep int) string {
	if common == "" {
		return ""
	}
	comps := strings.Split(common, "/")
	if keep >= len(comps) {
		return common
	}
	if keep <= 0 {
		return ""
	}
	return strings.Join(comps[len(comps)-keep:], "/")
}

func joinLogical(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}

// ancestors returns the chain of paths from the first component down to p.
func ancestors(p *repopath.Path) []*repopath.Path {
	chain := make([]*repopath.Path, p.Depth())
	cur := p
	for i := p.Depth() - 1; i >= 0; i-- {
		chain[i] = cur
		if i > 0 {
			parent, _ := cur.Parent()
			cur = parent
		}
	}
	return chain
}
