package repo

import (
	"encoding/json"
	"net/http"
)

// V1MakeDirRequest is the body request for MakeDir
type V1MakeDirRequest struct {
	Path    string `json:"path"`
	Parents bool   `json:"parents"`
}

// MakeDirV1 is the handler for directory creation
func (h *HandlerV1) MakeDirV1(w http.ResponseWriter, r *http.Request) {
	var req V1MakeDirRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding mkdir request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}

	if err := h.repoService.MakeDir(r.Context(), req.Path, req.Parents); err != nil {
		h.logger.Error("error creating directory", "path", req.Path, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// V1RegisterRequest is the body request for Register
type V1RegisterRequest struct {
	Path     string `json:"path"`
	Mimetype string `json:"mimetype,omitempty"`
}

// RegisterV1 is the handler for registering an on-disk file in the catalog
func (h *HandlerV1) RegisterV1(w http.ResponseWriter, r *http.Request) {
	var req V1RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding register request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}

	rec, err := h.repoService.Register(r.Context(), req.Path, req.Mimetype)
	if err != nil {
		h.logger.Error("error registering path", "path", req.Path, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toRecordResponse(*rec))
}

// V1DeletePathsRequest is the body request for DeletePaths
type V1DeletePathsRequest struct {
	Paths     []string `json:"paths"`
	Recursive bool     `json:"recursive"`
	Force     bool     `json:"force"`
}

// DeletePathsV1 is the handler for path deletion
func (h *HandlerV1) DeletePathsV1(w http.ResponseWriter, r *http.Request) {
	var req V1DeletePathsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding delete request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Paths) == 0 {
		http.Error(w, "paths required", http.StatusBadRequest)
		return
	}

	jobID, err := h.repoService.DeletePaths(r.Context(), req.Paths, req.Recursive, req.Force)
	if err != nil {
		h.logger.Error("error deleting paths", "job", jobID, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"job": jobID.String()})
}
