package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noaa-archive/internal/models"
	"noaa-archive/migrations"
	"noaa-archive/pkg/database"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

func newTestRepo(t *testing.T) (MetadataRepository, *metrics.Collector) {
	t.Helper()
	logger := logging.NewDiscardLogger()
	collector := metrics.NewCollector("test", prometheus.NewRegistry())

	db, err := database.Open(&database.Config{Driver: database.DriverSQLite, SQLitePath: ":memory:"}, logger, collector)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.ApplyMigration(context.Background(), migrations.FS, migrations.CreateSchemaUp))
	return NewMetadataRepository(db, logger, collector), collector
}

func TestMetadataRepository_EmptyIndex(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GOESProducts(ctx)
	assert.ErrorIs(t, err, ErrIndexEmpty)

	_, err = repo.NEXRADYears(ctx)
	assert.ErrorIs(t, err, ErrIndexEmpty)

	_, err = repo.NEXRADSites(ctx)
	assert.ErrorIs(t, err, ErrIndexEmpty)

	// Filtered lists are simply empty.
	years, err := repo.GOESYears(ctx, "ABI-L1b-RadC")
	require.NoError(t, err)
	assert.Empty(t, years)
}

func TestMetadataRepository_GOESPickLists(t *testing.T) {
	repo, collector := newTestRepo(t)
	ctx := context.Background()

	rows := []models.GOESMetadata{
		{Product: "ABI-L1b-RadC", Year: "2023", Day: "001", Hour: "01"},
		{Product: "ABI-L1b-RadC", Year: "2023", Day: "001", Hour: "00"},
		{Product: "ABI-L1b-RadC", Year: "2023", Day: "002", Hour: "00"},
		{Product: "ABI-L1b-RadC", Year: "2022", Day: "365", Hour: "23"},
		{Product: "ABI-L1b-RadM", Year: "2023", Day: "145", Hour: "12"},
	}
	n, err := repo.UpsertGOESBatch(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// Re-indexing the same directories writes nothing new.
	n, err = repo.UpsertGOESBatch(ctx, rows[:2])
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 5.0, testutil.ToFloat64(collector.IndexedEntriesTotal.WithLabelValues("goes_metadata")))

	products, err := repo.GOESProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABI-L1b-RadC", "ABI-L1b-RadM"}, products)

	years, err := repo.GOESYears(ctx, "ABI-L1b-RadC")
	require.NoError(t, err)
	assert.Equal(t, []string{"2022", "2023"}, years)

	days, err := repo.GOESDays(ctx, "2023", "ABI-L1b-RadC")
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "002"}, days)

	hours, err := repo.GOESHours(ctx, "001", "2023", "ABI-L1b-RadC")
	require.NoError(t, err)
	assert.Equal(t, []string{"00", "01"}, hours)
}

func TestMetadataRepository_NEXRADPickLists(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertNEXRADBatch(ctx, []models.NEXRADMetadata{
		{Year: "2023", Month: "06", Day: "15", GroundStation: "KTLX"},
		{Year: "2023", Month: "06", Day: "15", GroundStation: "KABR"},
		{Year: "2023", Month: "06", Day: "01", GroundStation: "KTLX"},
		{Year: "2022", Month: "12", Day: "31", GroundStation: "KTLX"},
	})
	require.NoError(t, err)

	years, err := repo.NEXRADYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2022", "2023"}, years)

	months, err := repo.NEXRADMonths(ctx, "2023")
	require.NoError(t, err)
	assert.Equal(t, []string{"06"}, months)

	days, err := repo.NEXRADDays(ctx, "06", "2023")
	require.NoError(t, err)
	assert.Equal(t, []string{"01", "15"}, days)

	stations, err := repo.NEXRADStations(ctx, "15", "06", "2023")
	require.NoError(t, err)
	assert.Equal(t, []string{"KABR", "KTLX"}, stations)
}

func TestMetadataRepository_Sites(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertSitesBatch(ctx, []*models.NEXRADSite{
		{GroundStation: "KTLX", State: "OK", County: "OKLAHOMA", Latitude: 35.33306, Longitude: -97.2775, Elevation: 1278},
		{GroundStation: "KABR", State: "SD", County: "BROWN", Latitude: 45.45583, Longitude: -98.41306, Elevation: 1383},
	})
	require.NoError(t, err)

	// A second scrape refreshes existing rows.
	_, err = repo.UpsertSitesBatch(ctx, []*models.NEXRADSite{
		{GroundStation: "KTLX", State: "OK", County: "CLEVELAND", Latitude: 35.33306, Longitude: -97.2775, Elevation: 1278},
	})
	require.NoError(t, err)

	sites, err := repo.NEXRADSites(ctx)
	require.NoError(t, err)

	want := []*models.NEXRADSite{
		{GroundStation: "KABR", State: "SD", County: "BROWN", Latitude: 45.45583, Longitude: -98.41306, Elevation: 1383},
		{GroundStation: "KTLX", State: "OK", County: "CLEVELAND", Latitude: 35.33306, Longitude: -97.2775, Elevation: 1278},
	}
	if diff := cmp.Diff(want, sites); diff != "" {
		t.Errorf("NEXRADSites mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadataRepository_EmptyBatchAndHealth(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.UpsertGOESBatch(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, repo.HealthCheck(ctx))
}

func TestMetadataRepository_MemoryCatalogOutlivesPoolTimeouts(t *testing.T) {
	logger := logging.NewDiscardLogger()
	collector := metrics.NewCollector("test", prometheus.NewRegistry())

	// Pool settings as loaded from the environment defaults, shortened
	db, err := database.Open(&database.Config{
		Driver:          database.DriverSQLite,
		SQLitePath:      ":memory:",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Millisecond,
		ConnMaxIdleTime: time.Millisecond,
	}, logger, collector)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.ApplyMigration(ctx, migrations.FS, migrations.CreateSchemaUp))
	repo := NewMetadataRepository(db, logger, collector)

	n, err := repo.UpsertGOESBatch(ctx, []models.GOESMetadata{
		{Product: "ABI-L1b-RadC", Year: "2023", Day: "001", Hour: "00"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	time.Sleep(5 * time.Millisecond)

	products, err := repo.GOESProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABI-L1b-RadC"}, products)
}
