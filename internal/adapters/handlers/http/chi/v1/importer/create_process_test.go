package importer_test

import (
	"encoding/json"
	http2 "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	importv1 "github.com/ome/openmicroscopy-sub033/internal/adapters/handlers/http/chi/v1/importer"
	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
	"github.com/ome/openmicroscopy-sub033/internal/core/service/importer"
)

func liveProcess(group string, loc domain.ImportLocation) *importer.MockImportProcess {
	p := importer.NewMockImportProcess()
	p.On("ID").Return(uuid.New())
	p.On("Group").Return(group)
	p.On("Location").Return(loc)
	return p
}

func TestCreateProcessV1(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		// Arrange
		loc := domain.ImportLocation{
			SharedPath:   "alice_3/2026-08/plateA",
			UsedFiles:    []string{"scan1.tiff", "scan2.tiff"},
			CheckedPaths: []string{"alice_3/2026-08/plateA/scan1.tiff", "alice_3/2026-08/plateA/scan2.tiff"},
			LogFile:      "alice_3/2026-08/plateA.log",
		}
		mockProcess := liveProcess("lab", loc)
		mockService := importer.NewMockImportService()
		mockService.On("ImportFileset", mock.Anything,
			[]string{"plateA/scan1.tiff", "plateA/scan2.tiff"},
			mock.MatchedBy(func(s domain.ImportSettings) bool {
				return s.Checksum == domain.ChecksumSHA256 && s.AutoClose
			}),
			mock.MatchedBy(func(e domain.ExpansionContext) bool {
				return e.User == "alice" && e.Group == "lab" && !e.Now.IsZero()
			}),
		).Return(mockProcess, nil)
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		body := `{
			"files": ["plateA/scan1.tiff", "plateA/scan2.tiff"],
			"settings": {"checksum": "SHA-256", "auto_close": true},
			"context": {"user": "alice", "user_id": 3, "group": "lab", "group_id": 9}
		}`
		req := httptest.NewRequest(http2.MethodPost, "/api/v1/import/", strings.NewReader(body))

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusCreated, w.Code)
		var response importv1.V1ProcessResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "lab", response.Group)
		assert.Equal(t, "alice_3/2026-08/plateA", response.SharedPath)
		assert.Equal(t, "alice_3/2026-08/plateA.log", response.LogFile)
		assert.Len(t, response.UsedFiles, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("error - no files", func(t *testing.T) {
		mockService := importer.NewMockImportService()
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		body := `{"files": [], "context": {"user": "alice", "group": "lab"}}`
		req := httptest.NewRequest(http2.MethodPost, "/api/v1/import/", strings.NewReader(body))

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "ImportFileset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - missing identity", func(t *testing.T) {
		mockService := importer.NewMockImportService()
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		body := `{"files": ["a.tiff"], "context": {"user": "", "group": "lab"}}`
		req := httptest.NewRequest(http2.MethodPost, "/api/v1/import/", strings.NewReader(body))

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusBadRequest, w.Code)
	})

	t.Run("error - rejected fileset", func(t *testing.T) {
		mockService := importer.NewMockImportService()
		mockService.On("ImportFileset", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, domain.ErrInvalidName)
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		body := `{"files": ["bad|name.tiff"], "context": {"user": "alice", "group": "lab"}}`
		req := httptest.NewRequest(http2.MethodPost, "/api/v1/import/", strings.NewReader(body))

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusUnprocessableEntity, w.Code)
	})
}

func TestListProcessesV1(t *testing.T) {
	t.Run("all groups", func(t *testing.T) {
		mockService := importer.NewMockImportService()
		mockService.On("ListProcesses", []string(nil)).Return([]port.ImportProcess{
			liveProcess("lab", domain.ImportLocation{SharedPath: "a"}),
			liveProcess("screening", domain.ImportLocation{SharedPath: "b"}),
		})
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodGet, "/api/v1/import/", nil)

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusOK, w.Code)
		var response []importv1.V1ProcessResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Len(t, response, 2)
	})

	t.Run("filtered by group", func(t *testing.T) {
		mockService := importer.NewMockImportService()
		mockService.On("ListProcesses", []string{"lab"}).Return([]port.ImportProcess{
			liveProcess("lab", domain.ImportLocation{SharedPath: "a"}),
		})
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodGet, "/api/v1/import/?group=lab", nil)

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusOK, w.Code)
		var response []importv1.V1ProcessResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response, 1)
		assert.Equal(t, "lab", response[0].Group)
	})
}
