package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"noaa-archive/internal/archive"
	"noaa-archive/internal/resolver"
	"noaa-archive/pkg/logging"
)

// maxBatchFilenames bounds POST /api/{archive}/resolve
const maxBatchFilenames = 100

// ResolveResponse is the body of a single resolution
type ResolveResponse struct {
	Archive  string `json:"archive"`
	Filename string `json:"filename"`
	Outcome  string `json:"outcome"`
	URL      string `json:"url,omitempty"`
}

// ResolveBatchRequest is the body of POST /api/{archive}/resolve
type ResolveBatchRequest struct {
	Filenames []string `json:"filenames"`
}

// ResolveBatchResponse lists outcomes in request order
type ResolveBatchResponse struct {
	Archive string            `json:"archive"`
	Results []ResolveResponse `json:"results"`
}

func outcomeStatusCode(o resolver.Outcome) int {
	switch o.Status {
	case resolver.StatusResolved:
		return http.StatusOK
	case resolver.StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

// Resolve handles GET /api/{archive}/resolve?filename=
func (h *APIHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind, ok := h.archiveKind(w, r)
	if !ok {
		return
	}

	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	if filename == "" {
		h.sendError(w, "filename query parameter is required", http.StatusBadRequest)
		return
	}

	outcome, err := h.resolver.Resolve(ctx, kind, filename)
	if err != nil {
		h.sendResolveError(w, r, kind, filename, err)
		return
	}

	h.sendJSON(w, ResolveResponse{
		Archive:  kind.String(),
		Filename: filename,
		Outcome:  outcome.Status.String(),
		URL:      outcome.URL,
	}, outcomeStatusCode(outcome))
}

// ResolveBatch handles POST /api/{archive}/resolve. Outcomes are returned in
// request order; a transport failure fails the whole request.
func (h *APIHandler) ResolveBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind, ok := h.archiveKind(w, r)
	if !ok {
		return
	}

	var req ResolveBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Filenames) == 0 {
		h.sendError(w, "filenames must not be empty", http.StatusBadRequest)
		return
	}
	if len(req.Filenames) > maxBatchFilenames {
		h.sendError(w, "too many filenames in one request", http.StatusRequestEntityTooLarge)
		return
	}

	results, err := h.resolver.ResolveMany(ctx, kind, req.Filenames)
	if err != nil {
		failed := ""
		if len(results) < len(req.Filenames) {
			failed = req.Filenames[len(results)]
		}
		h.sendResolveError(w, r, kind, failed, err)
		return
	}

	response := ResolveBatchResponse{Archive: kind.String(), Results: make([]ResolveResponse, 0, len(results))}
	for _, res := range results {
		response.Results = append(response.Results, ResolveResponse{
			Archive:  kind.String(),
			Filename: strings.TrimSpace(res.Filename),
			Outcome:  res.Outcome.Status.String(),
			URL:      res.Outcome.URL,
		})
	}
	h.sendJSON(w, response, http.StatusOK)
}

func (h *APIHandler) sendResolveError(w http.ResponseWriter, r *http.Request, kind archive.Kind, filename string, err error) {
	if resolver.IsTransportError(err) {
		h.logger.Error(r.Context(), "[API_RESOLVE_ERROR] Archive probe failed", logging.Fields{
			"archive":  kind.String(),
			"filename": filename,
		}, err)
		h.metrics.RecordAPIError("transport_error", r.URL.Path)
		h.sendError(w, "archive unreachable: "+err.Error(), http.StatusBadGateway)
		return
	}
	h.sendServiceError(w, r, "[API_RESOLVE_ERROR]", err)
}
