package importer

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

func fileIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		http.Error(w, "invalid file index", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

// UploadChunkV1 streams the request body into one file of the fileset at the
// given byte offset. Chunks for the same file may arrive on parallel
// connections.
func (h *HandlerV1) UploadChunkV1(w http.ResponseWriter, r *http.Request) {
	p, ok := h.process(w, r)
	if !ok {
		return
	}
	index, ok := fileIndex(w, r)
	if !ok {
		return
	}

	offset := int64(0)
	if q := r.URL.Query().Get("offset"); q != "" {
		var err error
		if offset, err = strconv.ParseInt(q, 10, 64); err != nil || offset < 0 {
			http.Error(w, "invalid offset", http.StatusBadRequest)
			return
		}
	}

	uploader, err := p.Uploader(index)
	if err != nil {
		h.logger.Error("error opening uploader", "process", p.ID(), "index", index, "error", err)
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	written, err := io.Copy(&offsetWriter{w: uploader, off: offset}, r.Body)
	if err != nil {
		h.logger.Error("error writing chunk", "process", p.ID(), "index", index, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{
		"written": written,
		"offset":  p.UploadOffset(index),
	})
}

// offsetWriter adapts an io.WriterAt to io.Writer starting at off.
type offsetWriter struct {
	w   port.FileWriteHandle
	off int64
}

func (o *offsetWriter) Write(p []byte) (int, error) {
	n, err := o.w.WriteAt(p, o.off)
	o.off += int64(n)
	return n, err
}

// UploadOffsetV1 reports the next expected byte offset for one file
func (h *HandlerV1) UploadOffsetV1(w http.ResponseWriter, r *http.Request) {
	p, ok := h.process(w, r)
	if !ok {
		return
	}
	index, ok := fileIndex(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"offset": p.UploadOffset(index)})
}

// CloseUploaderV1 closes the write handle for one file
func (h *HandlerV1) CloseUploaderV1(w http.ResponseWriter, r *http.Request) {
	p, ok := h.process(w, r)
	if !ok {
		return
	}
	index, ok := fileIndex(w, r)
	if !ok {
		return
	}

	if err := p.CloseUploader(index); err != nil {
		h.logger.Error("error closing uploader", "process", p.ID(), "index", index, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// V1VerifyRequest carries the client-computed hashes, ordered like the
// declared files
type V1VerifyRequest struct {
	Hashes []string `json:"hashes"`
}

// V1VerifyResponse reports the started job or the per-index mismatches
type V1VerifyResponse struct {
	Job      string         `json:"job,omitempty"`
	Failures map[int]string `json:"failures,omitempty"`
}

// VerifyUploadV1 runs the checksum gate. All hashes must match before the
// import job starts; any mismatch rejects the whole batch.
func (h *HandlerV1) VerifyUploadV1(w http.ResponseWriter, r *http.Request) {
	p, ok := h.process(w, r)
	if !ok {
		return
	}

	var req V1VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding verify request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	jobID, failures, err := p.VerifyUpload(r.Context(), req.Hashes)
	switch {
	case errors.Is(err, domain.ErrChecksumMismatch):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(V1VerifyResponse{Failures: failures})
	case err != nil:
		h.logger.Error("error verifying upload", "process", p.ID(), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(V1VerifyResponse{Job: jobID.String()})
	}
}

// PingV1 keeps one process alive
func (h *HandlerV1) PingV1(w http.ResponseWriter, r *http.Request) {
	p, ok := h.process(w, r)
	if !ok {
		return
	}
	if err := p.Ping(); err != nil {
		http.Error(w, err.Error(), http.StatusGone)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloseProcessV1 terminates one process
func (h *HandlerV1) CloseProcessV1(w http.ResponseWriter, r *http.Request) {
	p, ok := h.process(w, r)
	if !ok {
		return
	}
	if err := p.Close(); err != nil {
		h.logger.Error("error closing process", "process", p.ID(), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
