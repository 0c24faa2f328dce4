package importer

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

// HandlerV1 is the handler for v1 import routes
type HandlerV1 struct {
	importService port.ImportService
	logger        *slog.Logger
}

// NewImportHandlerV1 creates HandlerV1
func NewImportHandlerV1(service port.ImportService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		importService: service,
		logger:        logger,
	}
}

// Routes exposes routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.CreateProcessV1)
	router.Get("/", h.ListProcessesV1)
	router.Put("/{processID}/files/{index}", h.UploadChunkV1)
	router.Get("/{processID}/files/{index}/offset", h.UploadOffsetV1)
	router.Delete("/{processID}/files/{index}", h.CloseUploaderV1)
	router.Post("/{processID}/verify", h.VerifyUploadV1)
	router.Post("/{processID}/ping", h.PingV1)
	router.Delete("/{processID}", h.CloseProcessV1)

	return router
}

// process resolves the processID url parameter to a live process.
func (h *HandlerV1) process(w http.ResponseWriter, r *http.Request) (port.ImportProcess, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "processID"))
	if err != nil {
		http.Error(w, "invalid process id", http.StatusBadRequest)
		return nil, false
	}
	p, err := h.importService.Process(id)
	if err != nil {
		if errors.Is(err, domain.ErrProcessNotFound) {
			http.Error(w, "process not found", http.StatusNotFound)
		} else {
			h.logger.Error("error resolving process", "process", id, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return nil, false
	}
	return p, true
}
