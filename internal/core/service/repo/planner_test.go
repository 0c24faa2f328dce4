package repo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ome/openmicroscopy-sub033/internal/adapters/decoder"
	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/service/repo"
)

func TestCommonRoot(t *testing.T) {
	cases := []struct {
		name  string
		paths []string
		want  string
	}{
		{"shared directories", []string{"a/b/c/f1.tiff", "a/b/c/f2.tiff"}, "a/b/c"},
		{"partial overlap", []string{"a/b/c/f1.tiff", "a/b/d/f2.tiff"}, "a/b"},
		{"no overlap", []string{"a/f1.tiff", "b/f2.tiff"}, ""},
		{"single file keeps its directory", []string{"plate/well/scan.tiff"}, "plate/well"},
		{"bare filenames", []string{"f1.tiff", "f2.tiff"}, ""},
		{"filename never joins the root", []string{"a/b", "a/b/c.tiff"}, "a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, repo.CommonRoot(tc.paths))
		})
	}
}

func TestTrimPath(t *testing.T) {
	cases := []struct {
		common string
		keep   int
		want   string
	}{
		{"a/b/c", 1, "c"},
		{"a/b/c", 2, "b/c"},
		{"a/b/c", 3, "a/b/c"},
		{"a/b/c", 9, "a/b/c"},
		{"a/b/c", 0, ""},
		{"a/b/c", -2, ""},
		{"", 1, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, repo.TrimPath(tc.common, tc.keep), "common=%q keep=%d", tc.common, tc.keep)
	}
}

func TestPlanner_Plan(t *testing.T) {
	t.Run("user template end to end", func(t *testing.T) {
		// Arrange
		svc, uow, root := newTestService(t)
		rec := &domain.Record{ID: 1, Mimetype: domain.DirectoryMimetype}
		uow.On("Execute", mock.Anything, mock.Anything).Return(nil)
		uow.GetRecordRepoMock().On("Register", mock.Anything, mock.Anything).Return(rec, nil)
		uow.GetRecordRepoMock().On("Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

		dec := decoder.NewMockFormatDecoder()
		dec.On("RequiredDirectoryDepth", mock.Anything).Return(0, false)

		planner := repo.NewPlanner(svc, dec, "%user%/%year%", 1)
		declared := []string{
			"2026-08-28/plateA/scan1.tiff",
			"2026-08-28/plateA/scan2.tiff",
		}

		// Act
		loc, checked, logPath, err := planner.Plan(context.Background(), declared, expansionContext())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "alice/2026/plateA", loc.SharedPath)
		assert.Equal(t, []string{"scan1.tiff", "scan2.tiff"}, loc.UsedFiles)
		assert.Equal(t, []string{"alice/2026/plateA/scan1.tiff", "alice/2026/plateA/scan2.tiff"}, loc.CheckedPaths)
		assert.Equal(t, "alice/2026/plateA.log", loc.LogFile)
		assert.Equal(t, "alice/2026/plateA.log", logPath.Logical())
		require.Len(t, checked, 2)
		assert.Equal(t, "alice/2026/plateA/scan1.tiff", checked[0].Logical())

		// the shared base exists on disk after planning
		info, err := os.Stat(filepath.Join(root, "alice", "2026", "plateA"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("root owned prefix", func(t *testing.T) {
		svc, uow, _ := newTestService(t)
		rec := &domain.Record{ID: 1, Mimetype: domain.DirectoryMimetype}
		uow.On("Execute", mock.Anything, mock.Anything).Return(nil)
		uow.GetRecordRepoMock().On("Register", mock.Anything, mock.Anything).Return(rec, nil)
		uow.GetRecordRepoMock().On("Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

		dec := decoder.NewMockFormatDecoder()
		dec.On("RequiredDirectoryDepth", mock.Anything).Return(0, false)

		planner := repo.NewPlanner(svc, dec, "%user%_%userId%//%year%-%month%", 1)

		loc, _, _, err := planner.Plan(context.Background(), []string{"well/scan.tiff"}, expansionContext())
		require.NoError(t, err)
		assert.Equal(t, "alice_3/2026-08/well", loc.SharedPath)
	})

	t.Run("decoder depth hint wins over default", func(t *testing.T) {
		svc, uow, _ := newTestService(t)
		rec := &domain.Record{ID: 1, Mimetype: domain.DirectoryMimetype}
		uow.On("Execute", mock.Anything, mock.Anything).Return(nil)
		uow.GetRecordRepoMock().On("Register", mock.Anything, mock.Anything).Return(rec, nil)
		uow.GetRecordRepoMock().On("Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

		dec := decoder.NewMockFormatDecoder()
		dec.On("RequiredDirectoryDepth", mock.Anything).Return(2, true)

		planner := repo.NewPlanner(svc, dec, "%user%", 1)

		loc, _, _, err := planner.Plan(context.Background(), []string{"run7/plateA/scan.tiff"}, expansionContext())
		require.NoError(t, err)
		assert.Equal(t, "alice/run7/plateA", loc.SharedPath)
	})

	t.Run("base collision appends numeric suffix", func(t *testing.T) {
		svc, uow, root := newTestService(t)
		rec := &domain.Record{ID: 1, Mimetype: domain.DirectoryMimetype}
		uow.On("Execute", mock.Anything, mock.Anything).Return(nil)
		uow.GetRecordRepoMock().On("Register", mock.Anything, mock.Anything).Return(rec, nil)
		uow.GetRecordRepoMock().On("Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
		uow.GetRecordRepoMock().On("FindRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(rec, nil)

		// both plateA and plateA-1 are taken on disk already
		require.NoError(t, os.MkdirAll(filepath.Join(root, "alice", "2026", "plateA"), 0o755))
		require.NoError(t, os.MkdirAll(filepath.Join(root, "alice", "2026", "plateA-1"), 0o755))

		dec := decoder.NewMockFormatDecoder()
		dec.On("RequiredDirectoryDepth", mock.Anything).Return(0, false)

		planner := repo.NewPlanner(svc, dec, "%user%/%year%", 1)

		loc, _, _, err := planner.Plan(context.Background(), []string{"2026-08-28/plateA/scan.tiff"}, expansionContext())
		require.NoError(t, err)
		assert.Equal(t, "alice/2026/plateA-2", loc.SharedPath)
	})

	t.Run("collision probing gives up eventually", func(t *testing.T) {
		// Arrange - every candidate name is already taken in the catalog
		svc, uow, _ := newTestService(t)
		uow.GetRecordRepoMock().On("Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

		dec := decoder.NewMockFormatDecoder()
		dec.On("RequiredDirectoryDepth", mock.Anything).Return(0, false)

		planner := repo.NewPlanner(svc, dec, "%user%", 1)

		// Act
		_, _, _, err := planner.Plan(context.Background(), []string{"plateA/scan.tiff"}, expansionContext())

		// Assert
		require.ErrorIs(t, err, domain.ErrPathExists)
		assert.ErrorContains(t, err, "no free name")
	})

	t.Run("no declared files", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		dec := decoder.NewMockFormatDecoder()
		planner := repo.NewPlanner(svc, dec, "%user%", 1)

		_, _, _, err := planner.Plan(context.Background(), nil, expansionContext())
		assert.ErrorIs(t, err, domain.ErrEmptyPath)
	})

	t.Run("invalid declared name", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		dec := decoder.NewMockFormatDecoder()
		dec.On("RequiredDirectoryDepth", mock.Anything).Return(0, false)
		planner := repo.NewPlanner(svc, dec, "%user%", 1)

		_, _, _, err := planner.Plan(context.Background(), []string{"plate/bad|name.tiff"}, expansionContext())
		assert.ErrorIs(t, err, domain.ErrInvalidName)
	})
}
