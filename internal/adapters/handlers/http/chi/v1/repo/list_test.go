package repo_test

import (
	"encoding/json"
	http2 "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	repov1 "github.com/ome/openmicroscopy-sub033/internal/adapters/handlers/http/chi/v1/repo"
	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/service/repo"
)

func TestListV1(t *testing.T) {
	t.Run("success - directory listing", func(t *testing.T) {
		// Arrange
		mockService := repo.NewMockRepositoryService()
		mockService.On("ListFiles", mock.Anything, "plates").Return([]domain.Record{
			{ID: 1, ParentPath: "plates", Name: "run1", Mimetype: domain.DirectoryMimetype},
			{ID: 2, ParentPath: "plates", Name: "scan.tiff", Size: 2048, Mimetype: "image/tiff"},
		}, nil)
		h := newRepoRouter(mockService, "")
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodGet, "/api/v1/repo/list?path=plates", nil)

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)
		var response []repov1.V1RecordResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response, 2)
		assert.Equal(t, "plates/run1", response[0].Path)
		assert.Equal(t, "plates/scan.tiff", response[1].Path)
		mockService.AssertNotCalled(t, "TreeList", mock.Anything, mock.Anything)
	})

	t.Run("success - tree listing", func(t *testing.T) {
		mockService := repo.NewMockRepositoryService()
		mockService.On("TreeList", mock.Anything, "plates").Return(map[string]domain.Record{
			"plates/run1":          {ID: 1, ParentPath: "plates", Name: "run1", Mimetype: domain.DirectoryMimetype},
			"plates/run1/deep.txt": {ID: 3, ParentPath: "plates/run1", Name: "deep.txt", Mimetype: "text/plain"},
		}, nil)
		h := newRepoRouter(mockService, "")
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodGet, "/api/v1/repo/list?path=plates&tree=true", nil)

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusOK, w.Code)
		var response []repov1.V1RecordResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Len(t, response, 2)
		mockService.AssertNotCalled(t, "ListFiles", mock.Anything, mock.Anything)
	})

	t.Run("error - not a directory", func(t *testing.T) {
		mockService := repo.NewMockRepositoryService()
		mockService.On("ListFiles", mock.Anything, "scan.tiff").
			Return([]domain.Record(nil), domain.ErrNotADirectory)
		h := newRepoRouter(mockService, "")
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodGet, "/api/v1/repo/list?path=scan.tiff", nil)

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusConflict, w.Code)
	})

	t.Run("error - unknown path", func(t *testing.T) {
		mockService := repo.NewMockRepositoryService()
		mockService.On("ListFiles", mock.Anything, "ghost").
			Return([]domain.Record(nil), domain.ErrRecordNotFound)
		h := newRepoRouter(mockService, "")
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodGet, "/api/v1/repo/list?path=ghost", nil)

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusNotFound, w.Code)
	})
}

func TestMimetypeV1(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService := repo.NewMockRepositoryService()
		mockService.On("Mimetype", mock.Anything, "scan.tiff").Return("image/tiff", nil)
		h := newRepoRouter(mockService, "")
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodGet, "/api/v1/repo/mimetype?path=scan.tiff", nil)

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusOK, w.Code)
		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "image/tiff", response["mimetype"])
	})

	t.Run("error - directory", func(t *testing.T) {
		mockService := repo.NewMockRepositoryService()
		mockService.On("Mimetype", mock.Anything, "plates").Return("", domain.ErrIsDirectory)
		h := newRepoRouter(mockService, "")
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodGet, "/api/v1/repo/mimetype?path=plates", nil)

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusConflict, w.Code)
	})
}
