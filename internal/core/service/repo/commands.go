package repo

import (
	"context"
	"fmt"
	"os"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
)

// ExecCommand runs one admin command against repository-relative paths. Every
// path goes through the same sandbox validation as the regular operations.
//
// Supported: touch <path>, exists <path>, mkdir [-p] <path>, rm <path>,
// mv <src> <dst>, checksum <algo> <expected> <path>.
func (s *Service) ExecCommand(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: empty command", domain.ErrEmptyPath)
	}

	switch cmd := args[0]; cmd {
	case "touch":
		if len(args) != 2 {
			return "", usageErr("touch <path>")
		}
		if _, err := s.touchAndRegister(ctx, args[1]); err != nil {
			return "", err
		}
		return "ok", nil

	case "exists":
		if len(args) != 2 {
			return "", usageErr("exists <path>")
		}
		ok, err := s.FileExists(ctx, args[1])
		if err != nil {
			return "", err
		}
		if !ok {
			return "false", nil
		}
		return "true", nil

	case "mkdir":
		parents := false
		rest := args[1:]
		if len(rest) > 0 && rest[0] == "-p" {
			parents = true
			rest = rest[1:]
		}
		if len(rest) != 1 {
			return "", usageErr("mkdir [-p] <path>")
		}
		if err := s.MakeDir(ctx, rest[0], parents); err != nil {
			return "", err
		}
		return "ok", nil

	case "rm":
		if len(args) != 2 {
			return "", usageErr("rm <path>")
		}
		if _, err := s.DeletePaths(ctx, []string{args[1]}, false, false); err != nil {
			return "", err
		}
		return "ok", nil

	case "mv":
		if len(args) != 3 {
			return "", usageErr("mv <src> <dst>")
		}
		return s.move(ctx, args[1], args[2])

	case "checksum":
		if len(args) != 4 {
			return "", usageErr("checksum <algo> <expected> <path>")
		}
		return s.verifyChecksum(ctx, domain.ChecksumAlgo(args[1]), args[2], args[3])

	default:
		return "", fmt.Errorf("unknown command %q", cmd)
	}
}

func (s *Service) move(ctx context.Context, src, dst string) (string, error) {
	from, err := s.check(src)
	if err != nil {
		return "", err
	}
	to, err := s.check(dst)
	if err != nil {
		return "", err
	}

	rec, err := s.uow.Records().FindRecord(ctx, s.repoID, from.ParentDir(), from.Name())
	if err != nil {
		return "", err
	}
	if err := os.Rename(from.Abs(), to.Abs()); err != nil {
		return "", err
	}
	// re-register under the new path, then drop the old row
	if _, err := s.Register(ctx, to.Logical(), rec.Mimetype); err != nil {
		return "", err
	}
	if err := s.uow.Records().Delete(ctx, rec.ID); err != nil {
		return "", fmt.Errorf("moved on disk but old row remains for %q: %w", from.Logical(), err)
	}
	return "ok", nil
}

func (s *Service) verifyChecksum(ctx context.Context, algo domain.ChecksumAlgo, expected, path string) (string, error) {
	p, err := s.checkWithAlgo(path, algo)
	if err != nil {
		return "", err
	}
	got, err := p.Hash(s.checksums)
	if err != nil {
		return "", err
	}
	if got != expected {
		return "", fmt.Errorf("%w: expected %s, got %s", domain.ErrChecksumMismatch, expected, got)
	}
	return got, nil
}

func usageErr(usage string) error {
	return fmt.Errorf("usage: %s", usage)
}
