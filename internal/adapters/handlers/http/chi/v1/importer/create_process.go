package importer

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
)

// V1ImportSettings mirrors domain.ImportSettings on the wire
type V1ImportSettings struct {
	Checksum      string   `json:"checksum,omitempty"`
	Name          string   `json:"name,omitempty"`
	Description   string   `json:"description,omitempty"`
	TargetID      *int64   `json:"target_id,omitempty"`
	Annotations   []string `json:"annotations,omitempty"`
	AutoClose     bool     `json:"auto_close,omitempty"`
	SkipStats     bool     `json:"skip_stats,omitempty"`
	SkipThumbs    bool     `json:"skip_thumbs,omitempty"`
	PhysicalSizeX *float64 `json:"physical_size_x,omitempty"`
	PhysicalSizeY *float64 `json:"physical_size_y,omitempty"`
	PhysicalSizeZ *float64 `json:"physical_size_z,omitempty"`
}

// V1ExpansionContext carries the caller identity expanded into the
// destination template
type V1ExpansionContext struct {
	User      string `json:"user"`
	UserID    int64  `json:"user_id"`
	Group     string `json:"group"`
	GroupID   int64  `json:"group_id"`
	Session   string `json:"session,omitempty"`
	SessionID int64  `json:"session_id,omitempty"`
	EventID   int64  `json:"event_id,omitempty"`
	Perms     string `json:"perms,omitempty"`
}

// V1CreateProcessRequest is the body request for starting a fileset import
type V1CreateProcessRequest struct {
	Files    []string           `json:"files"`
	Settings V1ImportSettings   `json:"settings"`
	Context  V1ExpansionContext `json:"context"`
}

// V1ProcessResponse describes one live import process
type V1ProcessResponse struct {
	ID         string   `json:"id"`
	Group      string   `json:"group"`
	SharedPath string   `json:"shared_path"`
	UsedFiles  []string `json:"used_files"`
	LogFile    string   `json:"log_file"`
}

func toProcessResponse(id, group string, loc domain.ImportLocation) V1ProcessResponse {
	return V1ProcessResponse{
		ID:         id,
		Group:      group,
		SharedPath: loc.SharedPath,
		UsedFiles:  loc.UsedFiles,
		LogFile:    loc.LogFile,
	}
}

// CreateProcessV1 is the handler for starting a fileset import
func (h *HandlerV1) CreateProcessV1(w http.ResponseWriter, r *http.Request) {
	var req V1CreateProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding create process request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Files) == 0 {
		http.Error(w, "files required", http.StatusBadRequest)
		return
	}
	if req.Context.User == "" || req.Context.Group == "" {
		http.Error(w, "user and group required", http.StatusBadRequest)
		return
	}

	settings := domain.ImportSettings{
		Checksum:      domain.ChecksumAlgo(req.Settings.Checksum),
		Name:          req.Settings.Name,
		Description:   req.Settings.Description,
		TargetID:      req.Settings.TargetID,
		Annotations:   req.Settings.Annotations,
		AutoClose:     req.Settings.AutoClose,
		SkipStats:     req.Settings.SkipStats,
		SkipThumbs:    req.Settings.SkipThumbs,
		PhysicalSizeX: req.Settings.PhysicalSizeX,
		PhysicalSizeY: req.Settings.PhysicalSizeY,
		PhysicalSizeZ: req.Settings.PhysicalSizeZ,
	}
	ectx := domain.ExpansionContext{
		User:      req.Context.User,
		UserID:    req.Context.UserID,
		Group:     req.Context.Group,
		GroupID:   req.Context.GroupID,
		Session:   req.Context.Session,
		SessionID: req.Context.SessionID,
		EventID:   req.Context.EventID,
		Perms:     req.Context.Perms,
		Now:       time.Now(),
	}

	p, err := h.importService.ImportFileset(r.Context(), req.Files, settings, ectx)
	if err != nil {
		h.logger.Error("error creating import process", "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toProcessResponse(p.ID().String(), p.Group(), p.Location()))
}

// ListProcessesV1 is the handler for listing live processes, optionally
// filtered by group
func (h *HandlerV1) ListProcessesV1(w http.ResponseWriter, r *http.Request) {
	var groups []string
	if g := r.URL.Query().Get("group"); g != "" {
		groups = append(groups, g)
	}

	procs := h.importService.ListProcesses(groups...)
	out := make([]V1ProcessResponse, 0, len(procs))
	for _, p := range procs {
		out = append(out, toProcessResponse(p.ID().String(), p.Group(), p.Location()))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
