package repo

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

// HandlerV1 is the handler for v1 repository routes
type HandlerV1 struct {
	repoService port.RepositoryService
	adminToken  string
	logger      *slog.Logger
}

// NewRepoHandlerV1 creates HandlerV1
func NewRepoHandlerV1(service port.RepositoryService, adminToken string, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		repoService: service,
		adminToken:  adminToken,
		logger:      logger,
	}
}

// Routes exposes routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/list", h.ListV1)
	router.Post("/mkdir", h.MakeDirV1)
	router.Post("/register", h.RegisterV1)
	router.Delete("/", h.DeletePathsV1)
	router.Get("/mimetype", h.MimetypeV1)
	router.Get("/file", h.GetFileV1)
	router.Put("/file", h.PutFileV1)
	router.Get("/file/{id}", h.GetFileByIDV1)
	router.Post("/command", h.CommandV1)

	return router
}

// statusFor maps domain sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPathEscapesRoot),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrEmptyPath),
		errors.Is(err, domain.ErrUnknownChecksumAlgo):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, domain.ErrProcessNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRecordExists),
		errors.Is(err, domain.ErrPathExists),
		errors.Is(err, domain.ErrNotRegistered),
		errors.Is(err, domain.ErrNotADirectory),
		errors.Is(err, domain.ErrIsDirectory):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
