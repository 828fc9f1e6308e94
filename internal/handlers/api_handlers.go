package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"noaa-archive/internal/archive"
	"noaa-archive/internal/models"
	"noaa-archive/internal/repository"
	"noaa-archive/internal/resolver"
	"noaa-archive/internal/services"
	"noaa-archive/internal/storage"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

// RequestIDHeader carries the request ID in and out of the API
const RequestIDHeader = "X-Request-ID"

// APIHandler serves the archive browser API
type APIHandler struct {
	resolver *resolver.Resolver
	catalog  *services.CatalogService
	transfer *services.TransferService
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(
	res *resolver.Resolver,
	catalog *services.CatalogService,
	transfer *services.TransferService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *APIHandler {
	return &APIHandler{
		resolver: res,
		catalog:  catalog,
		transfer: transfer,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ListResponse wraps a pick-list or file listing
type ListResponse struct {
	Data  interface{} `json:"data"`
	Total int         `json:"total"`
}

// RegisterRoutes registers all API routes
func (h *APIHandler) RegisterRoutes(router *mux.Router) {
	router.Use(h.requestID, h.instrument)

	api := router.PathPrefix("/api").Subrouter()

	goes := api.PathPrefix("/goes").Subrouter()
	goes.HandleFunc("/products", h.GOESProducts).Methods("GET")
	goes.HandleFunc("/years", h.GOESYears).Methods("GET")
	goes.HandleFunc("/days", h.GOESDays).Methods("GET")
	goes.HandleFunc("/hours", h.GOESHours).Methods("GET")
	goes.HandleFunc("/files", h.GOESFiles).Methods("GET")

	nexrad := api.PathPrefix("/nexrad").Subrouter()
	nexrad.HandleFunc("/years", h.NEXRADYears).Methods("GET")
	nexrad.HandleFunc("/months", h.NEXRADMonths).Methods("GET")
	nexrad.HandleFunc("/days", h.NEXRADDays).Methods("GET")
	nexrad.HandleFunc("/stations", h.NEXRADStations).Methods("GET")
	nexrad.HandleFunc("/sites", h.NEXRADSites).Methods("GET")
	nexrad.HandleFunc("/files", h.NEXRADFiles).Methods("GET")

	api.HandleFunc("/{archive}/resolve", h.Resolve).Methods("GET")
	api.HandleFunc("/{archive}/resolve", h.ResolveBatch).Methods("POST")
	api.HandleFunc("/{archive}/copy", h.Copy).Methods("POST")

	router.HandleFunc(openAPIPath, OpenAPISpec).Methods("GET")
	api.HandleFunc("/docs", SwaggerUI).Methods("GET")

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}

// HealthCheck handles GET /health
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.catalog.HealthCheck(ctx); err != nil {
		h.logger.Warn(ctx, "[HEALTH_CHECK] Catalog database unreachable", logging.Fields{
			"error": err.Error(),
		})
		status["status"] = "degraded"
		status["database"] = err.Error()
		h.sendJSON(w, status, http.StatusServiceUnavailable)
		return
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// archiveKind reads the {archive} route variable
func (h *APIHandler) archiveKind(w http.ResponseWriter, r *http.Request) (archive.Kind, bool) {
	kind, err := archive.ParseKind(mux.Vars(r)["archive"])
	if err != nil {
		h.sendError(w, err.Error(), http.StatusNotFound)
		return 0, false
	}
	return kind, true
}

// sendServiceError maps service errors onto status codes
func (h *APIHandler) sendServiceError(w http.ResponseWriter, r *http.Request, tag string, err error) {
	ctx := r.Context()

	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.metrics.RecordAPIError("validation_error", r.URL.Path)
		h.sendError(w, vErr.Error(), http.StatusBadRequest)
	case errors.Is(err, archive.ErrInvalidFormat):
		h.metrics.RecordAPIError("invalid_format", r.URL.Path)
		h.sendError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, repository.ErrIndexEmpty):
		h.metrics.RecordAPIError("index_empty", r.URL.Path)
		h.sendError(w, "database not populated", http.StatusServiceUnavailable)
	case errors.Is(err, storage.ErrCopyDisabled):
		h.metrics.RecordAPIError("copy_disabled", r.URL.Path)
		h.sendError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		h.logger.Error(ctx, tag+" Request failed", logging.Fields{
			"path": r.URL.Path,
		}, err)
		h.metrics.RecordAPIError("internal_error", r.URL.Path)
		h.sendError(w, "internal error", http.StatusInternalServerError)
	}
}

// sendJSON sends a JSON response
func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *APIHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// requestID stamps every request with an ID taken from the request header
// or freshly generated, and echoes it back
func (h *APIHandler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument records request counts and latency per route template
func (h *APIHandler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tmpl
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		timer := h.metrics.NewTimer(h.metrics.APIRequestDuration.WithLabelValues(endpoint))
		next.ServeHTTP(rec, r)
		timer.ObserveDuration()

		h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(rec.status))
	})
}
