package repo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
)

func TestService_ExecCommand(t *testing.T) {
	t.Run("touch creates and registers", func(t *testing.T) {
		// Arrange
		svc, uow, root := newTestService(t)
		rec := &domain.Record{ID: 1, Name: "note.log"}
		uow.On("Execute", mock.Anything, mock.Anything).Return(nil)
		uow.GetRecordRepoMock().On("Register", mock.Anything, mock.Anything).Return(rec, nil)

		// Act
		out, err := svc.ExecCommand(context.Background(), []string{"touch", "note.log"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		_, statErr := os.Stat(filepath.Join(root, "note.log"))
		assert.NoError(t, statErr)
	})

	t.Run("exists consults the catalog", func(t *testing.T) {
		svc, uow, _ := newTestService(t)
		uow.GetRecordRepoMock().On("Exists", mock.Anything, svc.RepoID(), "", "x.tiff").Return(false, nil)

		out, err := svc.ExecCommand(context.Background(), []string{"exists", "x.tiff"})
		require.NoError(t, err)
		assert.Equal(t, "false", out)
	})

	t.Run("mkdir -p", func(t *testing.T) {
		svc, uow, root := newTestService(t)
		rec := &domain.Record{ID: 2, Mimetype: domain.DirectoryMimetype}
		uow.On("Execute", mock.Anything, mock.Anything).Return(nil)
		uow.GetRecordRepoMock().On("Register", mock.Anything, mock.Anything).Return(rec, nil)

		out, err := svc.ExecCommand(context.Background(), []string{"mkdir", "-p", "a/b/c"})
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		info, statErr := os.Stat(filepath.Join(root, "a", "b", "c"))
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	})

	t.Run("mkdir without -p needs an existing parent", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.ExecCommand(context.Background(), []string{"mkdir", "a/b"})
		assert.Error(t, err)
	})

	t.Run("checksum verifies content", func(t *testing.T) {
		svc, _, root := newTestService(t)
		require.NoError(t, os.WriteFile(filepath.Join(root, "abc.bin"), []byte("abc"), 0o644))

		const sha = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
		out, err := svc.ExecCommand(context.Background(), []string{"checksum", "SHA-256", sha, "abc.bin"})
		require.NoError(t, err)
		assert.Equal(t, sha, out)

		_, err = svc.ExecCommand(context.Background(), []string{"checksum", "MD5-128", sha, "abc.bin"})
		assert.ErrorIs(t, err, domain.ErrChecksumMismatch)
	})

	t.Run("mv renames disk and catalog", func(t *testing.T) {
		svc, uow, root := newTestService(t)
		require.NoError(t, os.WriteFile(filepath.Join(root, "old.txt"), []byte("z"), 0o644))

		oldRec := &domain.Record{ID: 7, Name: "old.txt", Mimetype: "text/plain"}
		newRec := &domain.Record{ID: 8, Name: "new.txt", Mimetype: "text/plain"}
		records := uow.GetRecordRepoMock()
		records.On("FindRecord", mock.Anything, svc.RepoID(), "", "old.txt").Return(oldRec, nil)
		uow.On("Execute", mock.Anything, mock.Anything).Return(nil)
		records.On("Register", mock.Anything, mock.Anything).Return(newRec, nil)
		records.On("Delete", mock.Anything, int64(7)).Return(nil)

		out, err := svc.ExecCommand(context.Background(), []string{"mv", "old.txt", "new.txt"})
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		_, statErr := os.Stat(filepath.Join(root, "new.txt"))
		assert.NoError(t, statErr)
		_, statErr = os.Stat(filepath.Join(root, "old.txt"))
		assert.ErrorIs(t, statErr, os.ErrNotExist)
		records.AssertCalled(t, "Delete", mock.Anything, int64(7))
	})

	t.Run("commands stay inside the sandbox", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.ExecCommand(context.Background(), []string{"rm", "../../etc/passwd"})
		assert.ErrorIs(t, err, domain.ErrPathEscapesRoot)
	})

	t.Run("unknown command", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.ExecCommand(context.Background(), []string{"chmod", "777", "x"})
		assert.ErrorContains(t, err, "unknown command")
	})

	t.Run("empty command", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.ExecCommand(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrEmptyPath)
	})
}
