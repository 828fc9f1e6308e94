package handlers

import (
	"context"
	"net/http"
)

// requiredQuery reads the named query parameters, answering 400 when any is
// missing
func (h *APIHandler) requiredQuery(w http.ResponseWriter, r *http.Request, names ...string) ([]string, bool) {
	q := r.URL.Query()
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = q.Get(name)
		if values[i] == "" {
			h.sendError(w, name+" query parameter is required", http.StatusBadRequest)
			return nil, false
		}
	}
	return values, true
}

func (h *APIHandler) sendList(w http.ResponseWriter, r *http.Request, tag string, fetch func(ctx context.Context) ([]string, error)) {
	values, err := fetch(r.Context())
	if err != nil {
		h.sendServiceError(w, r, tag, err)
		return
	}
	if values == nil {
		values = []string{}
	}
	h.sendJSON(w, ListResponse{Data: values, Total: len(values)}, http.StatusOK)
}

// GOESProducts handles GET /api/goes/products
func (h *APIHandler) GOESProducts(w http.ResponseWriter, r *http.Request) {
	h.sendList(w, r, "[API_GOES_PRODUCTS_ERROR]", h.catalog.GOESProducts)
}

// GOESYears handles GET /api/goes/years?product=
func (h *APIHandler) GOESYears(w http.ResponseWriter, r *http.Request) {
	q, ok := h.requiredQuery(w, r, "product")
	if !ok {
		return
	}
	h.sendList(w, r, "[API_GOES_YEARS_ERROR]", func(ctx context.Context) ([]string, error) {
		return h.catalog.GOESYears(ctx, q[0])
	})
}

// GOESDays handles GET /api/goes/days?product=&year=
func (h *APIHandler) GOESDays(w http.ResponseWriter, r *http.Request) {
	q, ok := h.requiredQuery(w, r, "product", "year")
	if !ok {
		return
	}
	h.sendList(w, r, "[API_GOES_DAYS_ERROR]", func(ctx context.Context) ([]string, error) {
		return h.catalog.GOESDays(ctx, q[1], q[0])
	})
}

// GOESHours handles GET /api/goes/hours?product=&year=&day=
func (h *APIHandler) GOESHours(w http.ResponseWriter, r *http.Request) {
	q, ok := h.requiredQuery(w, r, "product", "year", "day")
	if !ok {
		return
	}
	h.sendList(w, r, "[API_GOES_HOURS_ERROR]", func(ctx context.Context) ([]string, error) {
		return h.catalog.GOESHours(ctx, q[2], q[1], q[0])
	})
}

// NEXRADYears handles GET /api/nexrad/years
func (h *APIHandler) NEXRADYears(w http.ResponseWriter, r *http.Request) {
	h.sendList(w, r, "[API_NEXRAD_YEARS_ERROR]", h.catalog.NEXRADYears)
}

// NEXRADMonths handles GET /api/nexrad/months?year=
func (h *APIHandler) NEXRADMonths(w http.ResponseWriter, r *http.Request) {
	q, ok := h.requiredQuery(w, r, "year")
	if !ok {
		return
	}
	h.sendList(w, r, "[API_NEXRAD_MONTHS_ERROR]", func(ctx context.Context) ([]string, error) {
		return h.catalog.NEXRADMonths(ctx, q[0])
	})
}

// NEXRADDays handles GET /api/nexrad/days?year=&month=
func (h *APIHandler) NEXRADDays(w http.ResponseWriter, r *http.Request) {
	q, ok := h.requiredQuery(w, r, "year", "month")
	if !ok {
		return
	}
	h.sendList(w, r, "[API_NEXRAD_DAYS_ERROR]", func(ctx context.Context) ([]string, error) {
		return h.catalog.NEXRADDays(ctx, q[1], q[0])
	})
}

// NEXRADStations handles GET /api/nexrad/stations?year=&month=&day=
func (h *APIHandler) NEXRADStations(w http.ResponseWriter, r *http.Request) {
	q, ok := h.requiredQuery(w, r, "year", "month", "day")
	if !ok {
		return
	}
	h.sendList(w, r, "[API_NEXRAD_STATIONS_ERROR]", func(ctx context.Context) ([]string, error) {
		return h.catalog.NEXRADStations(ctx, q[2], q[1], q[0])
	})
}

// NEXRADSites handles GET /api/nexrad/sites
func (h *APIHandler) NEXRADSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.catalog.NEXRADSites(r.Context())
	if err != nil {
		h.sendServiceError(w, r, "[API_NEXRAD_SITES_ERROR]", err)
		return
	}
	h.sendJSON(w, ListResponse{Data: sites, Total: len(sites)}, http.StatusOK)
}
