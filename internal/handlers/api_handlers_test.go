package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noaa-archive/internal/archive"
	"noaa-archive/internal/models"
	"noaa-archive/internal/repository"
	"noaa-archive/internal/resolver"
	"noaa-archive/internal/services"
	"noaa-archive/internal/storage"
	"noaa-archive/migrations"
	"noaa-archive/pkg/database"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

const (
	nexradBase   = "https://noaa-nexrad-level2.s3.amazonaws.com/"
	goesBase     = "https://noaa-goes18.s3.amazonaws.com/"
	nexradName   = "KTLX20230615_123456_V06"
	nexradURL    = nexradBase + "2023/06/15/KTLX/" + nexradName
	goesName     = "OR_ABI-L1b-RadC-M6C02_G18_s20230010000000_e20230010009000_c20230010009500.nc"
	missingName  = "KTLX20230615_000000_V06"
	failingName  = "KTLX20230615_999999_V06"
	transportURL = nexradBase + "2023/06/15/KTLX/" + failingName
)

// fakeProber answers from a fixed set of existing URLs
type fakeProber struct {
	mu     sync.Mutex
	exists map[string]bool
	calls  []string
}

func (p *fakeProber) Probe(_ context.Context, url string) (resolver.ProbeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, url)
	if url == transportURL {
		return 0, &resolver.TransportError{URL: url, StatusCode: http.StatusServiceUnavailable}
	}
	if p.exists[url] {
		return resolver.Exists, nil
	}
	return resolver.Missing, nil
}

type fakeStore struct {
	files   map[string][]string
	copyErr error
}

func (f *fakeStore) ListFiles(_ context.Context, kind archive.Kind, prefix string) ([]string, error) {
	return f.files[kind.String()+":"+prefix], nil
}

func (f *fakeStore) ListPrefixes(context.Context, archive.Kind, string) ([]string, error) {
	return nil, nil
}

func (f *fakeStore) CopyToUserBucket(_ context.Context, loc archive.Location) (string, error) {
	if f.copyErr != nil {
		return "", f.copyErr
	}
	return "https://user.example.com/" + loc.Kind.String() + "/" + loc.Key(), nil
}

type testAPI struct {
	router    *mux.Router
	prober    *fakeProber
	repo      repository.MetadataRepository
	store     *fakeStore
	collector *metrics.Collector
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := logging.NewDiscardLogger()
	collector := metrics.NewCollector("test", prometheus.NewRegistry())

	db, err := database.Open(&database.Config{Driver: database.DriverSQLite, SQLitePath: ":memory:"}, logger, collector)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.ApplyMigration(context.Background(), migrations.FS, migrations.CreateSchemaUp))
	repo := repository.NewMetadataRepository(db, logger, collector)

	prober := &fakeProber{exists: map[string]bool{nexradURL: true}}
	res := resolver.New(resolver.BaseURLs{NEXRAD: nexradBase, GOES: goesBase}, prober,
		resolver.WithLogger(logger), resolver.WithMetrics(collector))

	store := &fakeStore{files: map[string][]string{
		"nexrad:2023/06/15/KTLX/": {nexradName},
	}}

	h := NewAPIHandler(res,
		services.NewCatalogService(repo, nil, logger, collector),
		services.NewTransferService(store, nil, logger, collector),
		logger, collector)

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	return &testAPI{router: router, prober: prober, repo: repo, store: store, collector: collector}
}

func (a *testAPI) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestResolve_Outcomes(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name     string
		target   string
		status   int
		outcome  string
		url      string
		probeHit bool
	}{
		{"resolved", "/api/nexrad/resolve?filename=" + nexradName, http.StatusOK, "resolved", nexradURL, true},
		{"not found", "/api/nexrad/resolve?filename=" + missingName, http.StatusNotFound, "not_found", "", true},
		{"invalid", "/api/nexrad/resolve?filename=KTLX2023", http.StatusUnprocessableEntity, "invalid_format", "", false},
		{"wrong archive", "/api/goes/resolve?filename=" + nexradName, http.StatusUnprocessableEntity, "invalid_format", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(api.prober.calls)
			rec := api.do(t, http.MethodGet, tt.target, nil)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			got := decode[ResolveResponse](t, rec)
			assert.Equal(t, tt.outcome, got.Outcome)
			assert.Equal(t, tt.url, got.URL)
			assert.Equal(t, tt.probeHit, len(api.prober.calls) > before)
		})
	}
}

func TestResolve_TransportErrorIsBadGateway(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/nexrad/resolve?filename="+failingName, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(api.collector.ResolutionsTotal.WithLabelValues("nexrad", "transport_error")))
}

func TestResolve_BadRequests(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/nexrad/resolve", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/landsat/resolve?filename=x", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "unknown archive kind")
}

func TestResolveBatch(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/nexrad/resolve", ResolveBatchRequest{
		Filenames: []string{nexradName, "garbage", missingName},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[ResolveBatchResponse](t, rec)
	require.Len(t, got.Results, 3)
	assert.Equal(t, "resolved", got.Results[0].Outcome)
	assert.Equal(t, "invalid_format", got.Results[1].Outcome)
	assert.Equal(t, "not_found", got.Results[2].Outcome)

	rec = api.do(t, http.MethodPost, "/api/nexrad/resolve", ResolveBatchRequest{
		Filenames: []string{nexradName, failingName, missingName},
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/nexrad/resolve", ResolveBatchRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalog_EmptyIndexIsUnavailable(t *testing.T) {
	api := newTestAPI(t)

	for _, target := range []string{"/api/goes/products", "/api/nexrad/years", "/api/nexrad/sites"} {
		rec := api.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
		assert.Equal(t, "database not populated", decode[ErrorResponse](t, rec).Message)
	}
}

func TestCatalog_PickLists(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()

	_, err := api.repo.UpsertGOESBatch(ctx, []models.GOESMetadata{
		{Product: "ABI-L1b-RadC", Year: "2023", Day: "001", Hour: "00"},
		{Product: "ABI-L1b-RadC", Year: "2023", Day: "001", Hour: "01"},
	})
	require.NoError(t, err)
	_, err = api.repo.UpsertSitesBatch(ctx, []*models.NEXRADSite{
		{GroundStation: "KTLX", State: "OK", County: "OKLAHOMA", Latitude: 35.33, Longitude: -97.28, Elevation: 1278},
	})
	require.NoError(t, err)

	rec := api.do(t, http.MethodGet, "/api/goes/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ListResponse](t, rec)
	assert.Equal(t, 1, list.Total)

	rec = api.do(t, http.MethodGet, "/api/goes/hours?product=ABI-L1b-RadC&year=2023&day=001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":["00","01"],"total":2}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/goes/days?product=ABI-L1b-RadC&year=1999", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"total":0}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/nexrad/sites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ground_station":"KTLX"`)
}

func TestCatalog_FilterValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/goes/years", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "product query parameter is required", decode[ErrorResponse](t, rec).Message)

	rec = api.do(t, http.MethodGet, "/api/nexrad/days?year=2023&month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(api.collector.APIErrorsTotal.WithLabelValues("validation_error", "/api/nexrad/days")))
}

func TestFiles(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/nexrad/files?year=2023&month=06&day=15&station=KTLX", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":["`+nexradName+`"],"total":1}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/goes/files?product=ABI-L1b-RadC&year=2023&day=001", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCopy(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/goes/copy", CopyRequest{Filename: goesName})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[services.CopyResult](t, rec)
	assert.Equal(t, "ABI-L1b-RadC/2023/001/00/"+goesName, got.SourceKey)
	assert.True(t, strings.HasPrefix(got.DownloadURL, "https://user.example.com/goes/"))

	rec = api.do(t, http.MethodPost, "/api/goes/copy", CopyRequest{Filename: nexradName})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	api.store.copyErr = storage.ErrCopyDisabled
	rec = api.do(t, http.MethodPost, "/api/nexrad/copy", CopyRequest{Filename: nexradName})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	api.store.copyErr = errors.New("access denied")
	rec = api.do(t, http.MethodPost, "/api/nexrad/copy", CopyRequest{Filename: nexradName})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthAndMiddleware(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])

	rec = api.do(t, http.MethodGet, "/api/nexrad/resolve?filename="+nexradName, nil)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, 1.0, testutil.ToFloat64(api.collector.APIRequestsTotal.WithLabelValues("/api/{archive}/resolve", "GET", "200")))
}

func TestDocs(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/docs/openapi.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[map[string]interface{}](t, rec)
	assert.Contains(t, doc["paths"], "/api/{archive}/resolve")

	rec = api.do(t, http.MethodGet, "/api/docs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "swagger-ui")
	assert.Contains(t, page, "NEXRAD: <code>/api/nexrad/resolve?filename="+nexradName+"</code>")
	assert.Contains(t, page, "GOES-18: <code>/api/goes/resolve?filename="+goesName+"</code>")
}
