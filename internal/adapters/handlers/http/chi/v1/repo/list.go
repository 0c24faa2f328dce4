package repo

import (
	"encoding/json"
	"net/http"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
)

// V1RecordResponse is one catalog entry in listing responses
type V1RecordResponse struct {
	ID       int64  `json:"id"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Mimetype string `json:"mimetype"`
	Hash     string `json:"hash,omitempty"`
	Hasher   string `json:"hasher,omitempty"`
}

func toRecordResponse(rec domain.Record) V1RecordResponse {
	return V1RecordResponse{
		ID:       rec.ID,
		Path:     rec.LogicalPath(),
		Size:     rec.Size,
		Mimetype: rec.Mimetype,
		Hash:     rec.Hash,
		Hasher:   string(rec.Hasher),
	}
}

// ListV1 is the handler for directory listings. With tree=true the listing
// covers the whole subtree instead of the immediate children.
func (h *HandlerV1) ListV1(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	var out []V1RecordResponse
	if r.URL.Query().Get("tree") == "true" {
		tree, err := h.repoService.TreeList(r.Context(), path)
		if err != nil {
			h.logger.Error("error listing tree", "path", path, "error", err)
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		for _, rec := range tree {
			out = append(out, toRecordResponse(rec))
		}
	} else {
		recs, err := h.repoService.ListFiles(r.Context(), path)
		if err != nil {
			h.logger.Error("error listing directory", "path", path, "error", err)
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		for _, rec := range recs {
			out = append(out, toRecordResponse(rec))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// MimetypeV1 is the handler for mimetype sniffing
func (h *HandlerV1) MimetypeV1(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	mime, err := h.repoService.Mimetype(r.Context(), path)
	if err != nil {
		h.logger.Error("error sniffing mimetype", "path", path, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"path": path, "mimetype": mime})
}
