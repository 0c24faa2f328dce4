package importer_test

import (
	"encoding/json"
	"io"
	"log/slog"
	http2 "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ome/openmicroscopy-sub033/internal/adapters/handlers/http/chi"
	importv1 "github.com/ome/openmicroscopy-sub033/internal/adapters/handlers/http/chi/v1/importer"
	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/service/importer"
)

func newImportRouter(service *importer.MockImportService) http2.Handler {
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := importv1.NewImportHandlerV1(service, discardLogger)
	return chi.NewRouter(discardLogger, nil, handler, "")
}

// memWriteHandle collects positional writes in memory.
type memWriteHandle struct {
	chunks map[int64][]byte
}

func (h *memWriteHandle) WriteAt(p []byte, off int64) (int, error) {
	if h.chunks == nil {
		h.chunks = make(map[int64][]byte)
	}
	h.chunks[off] = append([]byte(nil), p...)
	return len(p), nil
}

func (h *memWriteHandle) Close() error { return nil }

func TestUploadChunkV1(t *testing.T) {
	t.Run("success - chunk written at offset", func(t *testing.T) {
		// Arrange
		processID := uuid.New()
		handle := &memWriteHandle{}
		mockProcess := importer.NewMockImportProcess()
		mockProcess.On("ID").Return(processID)
		mockProcess.On("Uploader", 0).Return(handle, nil)
		mockProcess.On("UploadOffset", 0).Return(int64(1029))

		mockService := importer.NewMockImportService()
		mockService.On("Process", processID).Return(mockProcess, nil)
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPut,
			"/api/v1/import/"+processID.String()+"/files/0?offset=1024",
			strings.NewReader("chunk"))

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)
		var response map[string]int64
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, int64(5), response["written"])
		assert.Equal(t, int64(1029), response["offset"])
		assert.Equal(t, []byte("chunk"), handle.chunks[1024])
	})

	t.Run("error - unknown process", func(t *testing.T) {
		mockService := importer.NewMockImportService()
		mockService.On("Process", mock.Anything).Return(nil, domain.ErrProcessNotFound)
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPut,
			"/api/v1/import/"+uuid.NewString()+"/files/0", strings.NewReader("chunk"))

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusNotFound, w.Code)
	})

	t.Run("error - invalid process id", func(t *testing.T) {
		mockService := importer.NewMockImportService()
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPut,
			"/api/v1/import/not-a-uuid/files/0", strings.NewReader("chunk"))

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Process", mock.Anything)
	})

	t.Run("error - negative offset", func(t *testing.T) {
		processID := uuid.New()
		mockProcess := importer.NewMockImportProcess()
		mockService := importer.NewMockImportService()
		mockService.On("Process", processID).Return(mockProcess, nil)
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPut,
			"/api/v1/import/"+processID.String()+"/files/0?offset=-5",
			strings.NewReader("chunk"))

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusBadRequest, w.Code)
		mockProcess.AssertNotCalled(t, "Uploader", mock.Anything)
	})

	t.Run("error - index out of range", func(t *testing.T) {
		processID := uuid.New()
		mockProcess := importer.NewMockImportProcess()
		mockProcess.On("ID").Return(processID)
		mockProcess.On("Uploader", 9).Return(nil, assert.AnError)
		mockService := importer.NewMockImportService()
		mockService.On("Process", processID).Return(mockProcess, nil)
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPut,
			"/api/v1/import/"+processID.String()+"/files/9", strings.NewReader("chunk"))

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusConflict, w.Code)
	})
}

func TestUploadOffsetV1(t *testing.T) {
	processID := uuid.New()
	mockProcess := importer.NewMockImportProcess()
	mockProcess.On("UploadOffset", 2).Return(int64(4096))
	mockService := importer.NewMockImportService()
	mockService.On("Process", processID).Return(mockProcess, nil)
	h := newImportRouter(mockService)
	w := httptest.NewRecorder()

	req := httptest.NewRequest(http2.MethodGet,
		"/api/v1/import/"+processID.String()+"/files/2/offset", nil)

	h.ServeHTTP(w, req)

	assert.Equal(t, http2.StatusOK, w.Code)
	var response map[string]int64
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, int64(4096), response["offset"])
}

func TestVerifyUploadV1(t *testing.T) {
	t.Run("success - job accepted", func(t *testing.T) {
		// Arrange
		processID := uuid.New()
		jobID := uuid.New()
		mockProcess := importer.NewMockImportProcess()
		mockProcess.On("VerifyUpload", mock.Anything, []string{"aaa", "bbb"}).
			Return(jobID, nil, nil)
		mockService := importer.NewMockImportService()
		mockService.On("Process", processID).Return(mockProcess, nil)
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPost,
			"/api/v1/import/"+processID.String()+"/verify",
			strings.NewReader(`{"hashes":["aaa","bbb"]}`))

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusAccepted, w.Code)
		var response importv1.V1VerifyResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, jobID.String(), response.Job)
		assert.Empty(t, response.Failures)
	})

	t.Run("error - checksum mismatch reports failures", func(t *testing.T) {
		processID := uuid.New()
		mockProcess := importer.NewMockImportProcess()
		mockProcess.On("ID").Return(processID)
		mockProcess.On("VerifyUpload", mock.Anything, []string{"aaa", "bbb"}).
			Return(uuid.Nil, map[int]string{1: "cafe"}, domain.ErrChecksumMismatch)
		mockService := importer.NewMockImportService()
		mockService.On("Process", processID).Return(mockProcess, nil)
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPost,
			"/api/v1/import/"+processID.String()+"/verify",
			strings.NewReader(`{"hashes":["aaa","bbb"]}`))

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusConflict, w.Code)
		var response importv1.V1VerifyResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Empty(t, response.Job)
		assert.Equal(t, "cafe", response.Failures[1])
	})
}

func TestPingAndCloseV1(t *testing.T) {
	t.Run("ping keeps a live process", func(t *testing.T) {
		processID := uuid.New()
		mockProcess := importer.NewMockImportProcess()
		mockProcess.On("Ping").Return(nil)
		mockService := importer.NewMockImportService()
		mockService.On("Process", processID).Return(mockProcess, nil)
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPost, "/api/v1/import/"+processID.String()+"/ping", nil)

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusNoContent, w.Code)
	})

	t.Run("ping on a dead process reports gone", func(t *testing.T) {
		processID := uuid.New()
		mockProcess := importer.NewMockImportProcess()
		mockProcess.On("Ping").Return(domain.ErrProcessNotFound)
		mockService := importer.NewMockImportService()
		mockService.On("Process", processID).Return(mockProcess, nil)
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPost, "/api/v1/import/"+processID.String()+"/ping", nil)

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusGone, w.Code)
	})

	t.Run("close terminates the process", func(t *testing.T) {
		processID := uuid.New()
		mockProcess := importer.NewMockImportProcess()
		mockProcess.On("Close").Return(nil)
		mockService := importer.NewMockImportService()
		mockService.On("Process", processID).Return(mockProcess, nil)
		h := newImportRouter(mockService)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodDelete, "/api/v1/import/"+processID.String(), nil)

		h.ServeHTTP(w, req)

		assert.Equal(t, http2.StatusNoContent, w.Code)
		mockProcess.AssertCalled(t, "Close")
	})
}
