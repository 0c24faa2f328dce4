package repopath

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

// Path is one validated, sandbox-bound filesystem location: the logical path
// relative to the repository root plus the resolved absolute path. Immutable
// once constructed except for the three lazily filled caches (catalog id,
// content hash, mimetype).
type Path struct {
	root       string
	components []string
	abs        string
	algo       domain.ChecksumAlgo
	rules      RuleSet

	mu   sync.Mutex
	id   *int64
	hash string
	mime string
}

// New validates a raw client-supplied path against the repository root.
// '.' segments are dropped and '..' segments pop the previous component;
// popping past the start means the path references above the root and fails.
func New(root, raw string, algo domain.ChecksumAlgo, rules RuleSet) (*Path, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}

	san := NewSanitizer(rules)
	var components []string
	for _, c := range splitAny(raw) {
		switch c {
		case "", ".":
			continue
		case "..":
			if len(components) == 0 {
				return nil, fmt.Errorf("%w: %q", domain.ErrPathEscapesRoot, raw)
			}
			components = components[:len(components)-1]
		default:
			safe, err := san.Component(c)
			if err != nil {
				return nil, err
			}
			components = append(components, safe)
		}
	}

	abs := filepath.Join(append([]string{absRoot}, components...)...)
	if !isDescendant(absRoot, abs, rules.CaseSensitive) {
		return nil, fmt.Errorf("%w: %q", domain.ErrPathEscapesRoot, raw)
	}

	return &Path{root: absRoot, components: components, abs: abs, algo: algo, rules: rules}, nil
}

// splitAny splits on both separator styles so that windows clients cannot
// smuggle a separator inside a single component.
func splitAny(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

func isDescendant(root, abs string, caseSensitive bool) bool {
	r, a := root, abs
	if !caseSensitive {
		r, a = strings.ToLower(r), strings.ToLower(a)
	}
	return a == r || strings.HasPrefix(a, r+string(filepath.Separator))
}

// Logical returns the "/"-joined path relative to the repository root.
func (p *Path) Logical() string {
	return strings.Join(p.components, "/")
}

// Abs returns the resolved native filesystem path.
func (p *Path) Abs() string {
	return p.abs
}

// IsRoot reports whether the path denotes the repository root itself.
func (p *Path) IsRoot() bool {
	return len(p.components) == 0
}

// Name returns the final component, or "" for the root.
func (p *Path) Name() string {
	if p.IsRoot() {
		return ""
	}
	return p.components[len(p.components)-1]
}

// ParentDir returns the "/"-joined path of the parent directory.
func (p *Path) ParentDir() string {
	if len(p.components) <= 1 {
		return ""
	}
	return strings.Join(p.components[:len(p.components)-1], "/")
}

// Depth returns the number of components.
func (p *Path) Depth() int {
	return len(p.components)
}

// Algorithm returns the checksum algorithm selected at construction.
func (p *Path) Algorithm() domain.ChecksumAlgo {
	return p.algo
}

// Parent strips the final component. The returned value carries no cached
// hash, mimetype or id.
func (p *Path) Parent() (*Path, error) {
	if p.IsRoot() {
		return nil, fmt.Errorf("%w: root has no parent", domain.ErrEmptyPath)
	}
	components := p.components[:len(p.components)-1]
	abs := filepath.Join(append([]string{p.root}, components...)...)
	return &Path{root: p.root, components: components, abs: abs, algo: p.algo, rules: p.rules}, nil
}

// Child appends one component. The name must be a single plain component.
func (p *Path) Child(name string) (*Path, error) {
	if name == "" || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: separator in %q", domain.ErrInvalidName, name)
	}
	safe, err := NewSanitizer(p.rules).Component(name)
	if err != nil {
		return nil, err
	}
	components := append(append([]string(nil), p.components...), safe)
	abs := filepath.Join(append([]string{p.root}, components...)...)
	return &Path{root: p.root, components: components, abs: abs, algo: p.algo, rules: p.rules}, nil
}

// Equals compares by absolute filesystem path, case-folded when the rule set
// marks the filesystem as case-insensitive.
func (p *Path) Equals(other *Path) bool {
	if other == nil {
		return false
	}
	if p.rules.CaseSensitive {
		return p.abs == other.abs
	}
	return strings.EqualFold(p.abs, other.abs)
}

// ID returns the cached catalog row id, if known.
func (p *Path) ID() (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.id == nil {
		return 0, false
	}
	return *p.id, true
}

// SetID fills the write-once catalog id cache. A second call with a different
// id is ignored; the catalog is the source of truth and never re-keys a path.
func (p *Path) SetID(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.id == nil {
		p.id = &id
	}
}

// Invalidate drops the cached content hash and mimetype so the next Hash or
// Mimetype call reads the file again. The catalog id survives; rewriting a
// file never re-keys it.
func (p *Path) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hash = ""
	p.mime = ""
}

// Hash streams the file through the provider's hasher for the algorithm
// selected at construction. The digest is computed once and cached; directories
// have no content hash.
func (p *Path) Hash(provider port.ChecksumProvider) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hash != "" {
		return p.hash, nil
	}

	info, err := os.Stat(p.abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", p.abs, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", domain.ErrIsDirectory, p.Logical())
	}

	h, err := provider.NewHasher(p.algo)
	if err != nil {
		return "", err
	}
	f, err := os.Open(p.abs)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", p.abs, err)
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", p.Logical(), err)
	}

	p.hash = h.Digest()
	return p.hash, nil
}

// Mimetype sniffs and caches the file's mimetype.
func (p *Path) Mimetype() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mime != "" {
		return p.mime, nil
	}

	info, err := os.Stat(p.abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", p.abs, err)
	}
	if info.IsDir() {
		p.mime = domain.DirectoryMimetype
		return p.mime, nil
	}

	mt, err := mimetype.DetectFile(p.abs)
	if err != nil {
		return "", fmt.Errorf("detecting mimetype of %s: %w", p.Logical(), err)
	}
	p.mime = mt.String()
	return p.mime, nil
}
