package repopath

import (
	"fmt"
	"strings"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
)

// RuleSet holds the naming restrictions applied to every path component that
// enters the repository. It is a plain value threaded through constructors,
// never a process-wide singleton.
type RuleSet struct {
	// CaseSensitive controls path equality. On case-insensitive filesystems
	// two paths differing only in case must compare equal.
	CaseSensitive bool

	// RejectWindowsNames additionally rejects device names (CON, NUL, COM1…)
	// and names with trailing dots or spaces, so that a repository written on
	// one platform stays readable on another.
	RejectWindowsNames bool

	// Transliterate replaces unsafe characters with '_' instead of rejecting
	// the whole component.
	Transliterate bool
}

// unsafe characters beyond the separator itself; control characters are
// handled separately because they are never transliterable into anything
// meaningful.
const unsafeChars = `\:*?"<>|`

var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// Sanitizer turns a single raw path component into a filesystem-safe string
// according to its rule set.
type Sanitizer struct {
	rules RuleSet
}

func NewSanitizer(rules RuleSet) *Sanitizer {
	return &Sanitizer{rules: rules}
}

// Component sanitizes one path component. It never sees separators; callers
// split first. When sanitization cannot make the component safe the original
// input is echoed in the error.
func (s *Sanitizer) Component(c string) (string, error) {
	if c == "" {
		return "", fmt.Errorf("%w: empty component", domain.ErrInvalidName)
	}
	if c == "." || c == ".." {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidName, c)
	}

	var b strings.Builder
	for _, r := range c {
		switch {
		case r < 0x20 || r == 0x7f:
			return "", fmt.Errorf("%w: control character in %q", domain.ErrInvalidName, c)
		case r == '/':
			return "", fmt.Errorf("%w: separator in %q", domain.ErrInvalidName, c)
		case strings.ContainsRune(unsafeChars, r):
			if !s.rules.Transliterate {
				return "", fmt.Errorf("%w: unsafe character %q in %q", domain.ErrInvalidName, r, c)
			}
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()

	if s.rules.RejectWindowsNames {
		base := out
		if i := strings.IndexByte(base, '.'); i >= 0 {
			base = base[:i]
		}
		if _, ok := reservedNames[strings.ToUpper(base)]; ok {
			if !s.rules.Transliterate {
				return "", fmt.Errorf("%w: reserved name %q", domain.ErrInvalidName, c)
			}
			out = "_" + out
		}
		if strings.HasSuffix(out, ".") || strings.HasSuffix(out, " ") {
			if !s.rules.Transliterate {
				return "", fmt.Errorf("%w: trailing dot or space in %q", domain.ErrInvalidName, c)
			}
			out = strings.TrimRight(out, ". ") + "_"
		}
	}

	// A component that transliterated into nothing but underscores carries no
	// usable name anymore.
	if out != c && strings.Trim(out, "_") == "" {
		return "", fmt.Errorf("%w: %q cannot be made safe", domain.ErrInvalidName, c)
	}
	return out, nil
}
