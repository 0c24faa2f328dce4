package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	uuidFileName = ".repo_uuid"
	lockFileName = ".repo_lock"
)

// EnsureIdentity assigns a stable identity to a repository root on first
// startup and detects concurrent initialization. The lock file is created
// exclusively; whoever wins writes the one-line UUID file, everyone else
// rereads it.
func EnsureIdentity(root string) (uuid.UUID, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return uuid.Nil, fmt.Errorf("creating repository root: %w", err)
	}

	uuidPath := filepath.Join(root, uuidFileName)
	if id, err := readIdentity(uuidPath); err == nil {
		return id, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return uuid.Nil, err
	}

	lockPath := filepath.Join(root, lockFileName)
	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			// another process is initializing the same root right now
			return readIdentity(uuidPath)
		}
		return uuid.Nil, fmt.Errorf("creating repository lock: %w", err)
	}
	defer lock.Close()
	defer os.Remove(lockPath)

	id := uuid.New()
	if err := os.WriteFile(uuidPath, []byte(id.String()+"\n"), 0o644); err != nil {
		return uuid.Nil, fmt.Errorf("writing repository uuid: %w", err)
	}
	return id, nil
}

func readIdentity(path string) (uuid.UUID, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(strings.TrimSpace(string(b)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt repository uuid file %s: %w", path, err)
	}
	return id, nil
}
