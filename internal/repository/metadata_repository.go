package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"noaa-archive/internal/models"
	"noaa-archive/pkg/database"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

// ErrIndexEmpty is returned by top-level pick-list queries when the indexer
// has not populated the catalog yet.
var ErrIndexEmpty = errors.New("metadata index not populated")

// MetadataRepository provides pick-list queries over the archive catalog and
// batch writes for the indexer
type MetadataRepository interface {
	// GOES-18 pick-lists
	GOESProducts(ctx context.Context) ([]string, error)
	GOESYears(ctx context.Context, product string) ([]string, error)
	GOESDays(ctx context.Context, year, product string) ([]string, error)
	GOESHours(ctx context.Context, day, year, product string) ([]string, error)

	// NEXRAD pick-lists
	NEXRADYears(ctx context.Context) ([]string, error)
	NEXRADMonths(ctx context.Context, year string) ([]string, error)
	NEXRADDays(ctx context.Context, month, year string) ([]string, error)
	NEXRADStations(ctx context.Context, day, month, year string) ([]string, error)
	NEXRADSites(ctx context.Context) ([]*models.NEXRADSite, error)

	// Indexer writes
	UpsertGOESBatch(ctx context.Context, rows []models.GOESMetadata) (int, error)
	UpsertNEXRADBatch(ctx context.Context, rows []models.NEXRADMetadata) (int, error)
	UpsertSitesBatch(ctx context.Context, sites []*models.NEXRADSite) (int, error)

	HealthCheck(ctx context.Context) error
}

// metadataRepository implements MetadataRepository
type metadataRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewMetadataRepository creates a new metadata repository
func NewMetadataRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) MetadataRepository {
	return &metadataRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// distinct runs a DISTINCT column query written with ? placeholders
func (r *metadataRepository) distinct(ctx context.Context, queryType, query string, args ...interface{}) ([]string, error) {
	values := []string{}
	if err := r.db.SelectContext(ctx, queryType, &values, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", queryType, err)
	}
	return values, nil
}

func (r *metadataRepository) GOESProducts(ctx context.Context) ([]string, error) {
	products, err := r.distinct(ctx, "goes_products", `
		SELECT DISTINCT product FROM goes_metadata ORDER BY product
	`)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrIndexEmpty
	}
	return products, nil
}

func (r *metadataRepository) GOESYears(ctx context.Context, product string) ([]string, error) {
	return r.distinct(ctx, "goes_years", `
		SELECT DISTINCT year FROM goes_metadata
		WHERE product = ?
		ORDER BY year
	`, product)
}

func (r *metadataRepository) GOESDays(ctx context.Context, year, product string) ([]string, error) {
	return r.distinct(ctx, "goes_days", `
		SELECT DISTINCT day FROM goes_metadata
		WHERE year = ? AND product = ?
		ORDER BY day
	`, year, product)
}

func (r *metadataRepository) GOESHours(ctx context.Context, day, year, product string) ([]string, error) {
	return r.distinct(ctx, "goes_hours", `
		SELECT DISTINCT hour FROM goes_metadata
		WHERE day = ? AND year = ? AND product = ?
		ORDER BY hour
	`, day, year, product)
}

func (r *metadataRepository) NEXRADYears(ctx context.Context) ([]string, error) {
	years, err := r.distinct(ctx, "nexrad_years", `
		SELECT DISTINCT year FROM nexrad_metadata ORDER BY year
	`)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return nil, ErrIndexEmpty
	}
	return years, nil
}

func (r *metadataRepository) NEXRADMonths(ctx context.Context, year string) ([]string, error) {
	return r.distinct(ctx, "nexrad_months", `
		SELECT DISTINCT month FROM nexrad_metadata
		WHERE year = ?
		ORDER BY month
	`, year)
}

func (r *metadataRepository) NEXRADDays(ctx context.Context, month, year string) ([]string, error) {
	return r.distinct(ctx, "nexrad_days", `
		SELECT DISTINCT day FROM nexrad_metadata
		WHERE month = ? AND year = ?
		ORDER BY day
	`, month, year)
}

func (r *metadataRepository) NEXRADStations(ctx context.Context, day, month, year string) ([]string, error) {
	return r.distinct(ctx, "nexrad_stations", `
		SELECT DISTINCT ground_station FROM nexrad_metadata
		WHERE day = ? AND month = ? AND year = ?
		ORDER BY ground_station
	`, day, month, year)
}

// NEXRADSites returns every known radar site ordered by station
func (r *metadataRepository) NEXRADSites(ctx context.Context) ([]*models.NEXRADSite, error) {
	query := `
		SELECT ground_station, state, county, latitude, longitude, elevation
		FROM nexrad_sites
		ORDER BY ground_station
	`

	var sites []*models.NEXRADSite
	if err := r.db.SelectContext(ctx, "nexrad_sites", &sites, query); err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	if len(sites) == 0 {
		return nil, ErrIndexEmpty
	}
	return sites, nil
}

// UpsertGOESBatch inserts catalog rows in one transaction, skipping rows that
// already exist. It returns the number of new rows.
func (r *metadataRepository) UpsertGOESBatch(ctx context.Context, rows []models.GOESMetadata) (int, error) {
	args := make([][]interface{}, len(rows))
	for i, row := range rows {
		args[i] = []interface{}{row.Product, row.Year, row.Day, row.Hour}
	}
	return r.execBatch(ctx, "goes_metadata", `
		INSERT INTO goes_metadata (product, year, day, hour)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, args)
}

// UpsertNEXRADBatch inserts catalog rows in one transaction, skipping rows
// that already exist. It returns the number of new rows.
func (r *metadataRepository) UpsertNEXRADBatch(ctx context.Context, rows []models.NEXRADMetadata) (int, error) {
	args := make([][]interface{}, len(rows))
	for i, row := range rows {
		args[i] = []interface{}{row.Year, row.Month, row.Day, row.GroundStation}
	}
	return r.execBatch(ctx, "nexrad_metadata", `
		INSERT INTO nexrad_metadata (year, month, day, ground_station)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, args)
}

// UpsertSitesBatch inserts or refreshes site locations in one transaction
func (r *metadataRepository) UpsertSitesBatch(ctx context.Context, sites []*models.NEXRADSite) (int, error) {
	args := make([][]interface{}, len(sites))
	for i, s := range sites {
		args[i] = []interface{}{s.GroundStation, s.State, s.County, s.Latitude, s.Longitude, s.Elevation}
	}
	return r.execBatch(ctx, "nexrad_sites", `
		INSERT INTO nexrad_sites (ground_station, state, county, latitude, longitude, elevation)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (ground_station) DO UPDATE SET
			state = EXCLUDED.state,
			county = EXCLUDED.county,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			elevation = EXCLUDED.elevation
	`, args)
}

func (r *metadataRepository) execBatch(ctx context.Context, table, query string, rows [][]interface{}) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	timer := time.Now()
	written := 0
	defer func() {
		r.logger.Debug(ctx, "[REPO_BATCH_UPSERT] Batch upsert completed", logging.Fields{
			"table":       table,
			"rows":        len(rows),
			"written":     written,
			"duration_ms": time.Since(timer).Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.db.Rebind(query))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, args := range rows {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			r.metrics.RecordDBError("batch_upsert_error")
			return 0, fmt.Errorf("failed to upsert into %s: %w", table, err)
		}
		if affected, err := res.RowsAffected(); err == nil {
			n += int(affected)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	written = n
	r.metrics.RecordIndexed(table, n)
	return n, nil
}

// HealthCheck verifies the catalog database is reachable
func (r *metadataRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
