package repo

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// GetFileV1 streams a registered file's content
func (h *HandlerV1) GetFileV1(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}

	f, err := h.repoService.File(r.Context(), path)
	if err != nil {
		h.logger.Error("error opening file", "path", path, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Error("error streaming file", "path", path, "error", err)
	}
}

// GetFileByIDV1 streams a registered file's content by catalog id
func (h *HandlerV1) GetFileByIDV1(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	f, err := h.repoService.FileByID(r.Context(), id)
	if err != nil {
		h.logger.Error("error opening file", "id", id, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Error("error streaming file", "id", id, "error", err)
	}
}

// PutFileV1 writes the request body into a sandboxed path and registers it
func (h *HandlerV1) PutFileV1(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}

	rec, err := h.repoService.WriteFile(r.Context(), path, r.Body)
	if err != nil {
		h.logger.Error("error writing file", "path", path, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toRecordResponse(*rec))
}
