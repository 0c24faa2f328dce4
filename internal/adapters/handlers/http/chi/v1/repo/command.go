package repo

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// V1CommandRequest is the body request for the admin command channel
type V1CommandRequest struct {
	Args []string `json:"args"`
}

// CommandV1 is the handler for admin commands (touch, exists, mkdir, rm, mv,
// checksum). Gated by the X-Admin-Token header.
func (h *HandlerV1) CommandV1(w http.ResponseWriter, r *http.Request) {
	if h.adminToken == "" ||
		subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Admin-Token")), []byte(h.adminToken)) != 1 {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req V1CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding command request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Args) == 0 {
		http.Error(w, "args required", http.StatusBadRequest)
		return
	}

	out, err := h.repoService.ExecCommand(r.Context(), req.Args)
	if err != nil {
		h.logger.Error("command failed", "cmd", req.Args[0], "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"output": out})
}
