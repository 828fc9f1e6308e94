package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"noaa-archive/internal/archive"
	"noaa-archive/internal/models"
	"noaa-archive/internal/repository"
	"noaa-archive/internal/telemetry"
	"noaa-archive/migrations"
	"noaa-archive/pkg/database"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

func newTestCollector() *metrics.Collector {
	return metrics.NewCollector("test", prometheus.NewRegistry())
}

func newSQLiteRepo(t *testing.T) repository.MetadataRepository {
	t.Helper()
	logger := logging.NewDiscardLogger()
	collector := newTestCollector()

	db, err := database.Open(&database.Config{Driver: database.DriverSQLite, SQLitePath: ":memory:"}, logger, collector)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.ApplyMigration(context.Background(), migrations.FS, migrations.CreateSchemaUp))

	return repository.NewMetadataRepository(db, logger, collector)
}

// fakeStore serves a fixed directory tree per archive and records copies.
type fakeStore struct {
	mu       sync.Mutex
	prefixes map[string][]string
	files    map[string][]string
	listErr  error
	copyErr  error
	copied   []archive.Location
	listed   []string
}

func storeKey(kind archive.Kind, prefix string) string {
	return kind.String() + ":" + prefix
}

func (f *fakeStore) ListFiles(_ context.Context, kind archive.Kind, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files[storeKey(kind, prefix)], nil
}

func (f *fakeStore) ListPrefixes(_ context.Context, kind archive.Kind, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, storeKey(kind, prefix))
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.prefixes[storeKey(kind, prefix)], nil
}

func (f *fakeStore) CopyToUserBucket(_ context.Context, loc archive.Location) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.copyErr != nil {
		return "", f.copyErr
	}
	f.copied = append(f.copied, loc)
	return "https://user-bucket.example.com/" + loc.Kind.String() + "/" + loc.Key() + "?sig=1", nil
}

type recordingObserver struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (r *recordingObserver) Observe(_ context.Context, e telemetry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// fakeRepo is an in-memory MetadataRepository for catalog tests.
type fakeRepo struct {
	repository.MetadataRepository
	products []string
	years    map[string][]string
	sites    []*models.NEXRADSite
	err      error
	calls    int
}

func (f *fakeRepo) GOESProducts(context.Context) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.products) == 0 {
		return nil, repository.ErrIndexEmpty
	}
	return f.products, nil
}

func (f *fakeRepo) GOESYears(_ context.Context, product string) ([]string, error) {
	f.calls++
	return f.years[product], f.err
}

func (f *fakeRepo) NEXRADStations(context.Context, string, string, string) ([]string, error) {
	f.calls++
	return []string{"KTLX"}, f.err
}

func (f *fakeRepo) NEXRADSites(context.Context) ([]*models.NEXRADSite, error) {
	f.calls++
	if len(f.sites) == 0 {
		return nil, repository.ErrIndexEmpty
	}
	return f.sites, nil
}

var errBoom = errors.New("boom")
