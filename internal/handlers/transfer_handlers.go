package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// CopyRequest is the body of POST /api/{archive}/copy
type CopyRequest struct {
	Filename string `json:"filename"`
}

// GOESFiles handles GET /api/goes/files?product=&year=&day=&hour=
func (h *APIHandler) GOESFiles(w http.ResponseWriter, r *http.Request) {
	q, ok := h.requiredQuery(w, r, "product", "year", "day", "hour")
	if !ok {
		return
	}
	h.sendList(w, r, "[API_GOES_FILES_ERROR]", func(ctx context.Context) ([]string, error) {
		return h.transfer.ListGOESFiles(ctx, q[0], q[1], q[2], q[3])
	})
}

// NEXRADFiles handles GET /api/nexrad/files?year=&month=&day=&station=
func (h *APIHandler) NEXRADFiles(w http.ResponseWriter, r *http.Request) {
	q, ok := h.requiredQuery(w, r, "year", "month", "day", "station")
	if !ok {
		return
	}
	h.sendList(w, r, "[API_NEXRAD_FILES_ERROR]", func(ctx context.Context) ([]string, error) {
		return h.transfer.ListNEXRADFiles(ctx, q[0], q[1], q[2], q[3])
	})
}

// Copy handles POST /api/{archive}/copy
func (h *APIHandler) Copy(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.archiveKind(w, r)
	if !ok {
		return
	}

	var req CopyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		h.sendError(w, "filename must not be empty", http.StatusBadRequest)
		return
	}

	result, err := h.transfer.Copy(r.Context(), kind, req.Filename)
	if err != nil {
		h.sendServiceError(w, r, "[API_COPY_ERROR]", err)
		return
	}
	h.sendJSON(w, result, http.StatusOK)
}
