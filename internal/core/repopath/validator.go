package repopath

import (
	"fmt"
	"strings"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
)

// Validator checks full logical paths against the naming rules without
// touching the filesystem. Unlike the sanitizer it never rewrites anything:
// a component the sanitizer would have to change is a validation failure.
type Validator struct {
	rules RuleSet
}

func NewValidator(rules RuleSet) *Validator {
	return &Validator{rules: rules}
}

// ValidatePath validates every component of a "/"-joined logical path.
// The empty path (the repository root) is valid.
func (v *Validator) ValidatePath(logical string) error {
	if logical == "" {
		return nil
	}

	strict := v.rules
	strict.Transliterate = false
	san := NewSanitizer(strict)

	for _, c := range strings.Split(logical, "/") {
		if c == "" {
			return fmt.Errorf("%w: empty component in %q", domain.ErrInvalidName, logical)
		}
		if _, err := san.Component(c); err != nil {
			return fmt.Errorf("%w (in %q)", err, logical)
		}
	}
	return nil
}

// ValidateAll validates a batch of logical paths, failing on the first offender.
func (v *Validator) ValidateAll(paths ...string) error {
	for _, p := range paths {
		if err := v.ValidatePath(p); err != nil {
			return err
		}
	}
	return nil
}
