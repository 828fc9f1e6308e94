package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"noaa-archive/internal/archive"
	"noaa-archive/internal/models"
	"noaa-archive/internal/repository"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

// DefaultSitesURL is the NCEI station list scraped for radar site locations
const DefaultSitesURL = "https://www.ncei.noaa.gov/access/homr/file/nexrad-stations.txt"

// ErrNoSites is returned when the station list contains no usable site
var ErrNoSites = errors.New("no NEXRAD sites found in station list")

// PrefixLister lists child directories of an archive prefix
type PrefixLister interface {
	ListPrefixes(ctx context.Context, kind archive.Kind, prefix string) ([]string, error)
}

// IndexerService walks the archive buckets and the NCEI station list to
// populate the metadata catalog
type IndexerService struct {
	store      PrefixLister
	repo       repository.MetadataRepository
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
	clock      clockwork.Clock
	httpClient *http.Client
	sitesURL   string
	batchSize  int
}

// IndexResult contains indexing statistics
type IndexResult struct {
	Job             string
	PrefixesVisited int
	RowsFound       int
	RowsWritten     int
	LinesSkipped    int
	Duration        time.Duration
}

// IndexerConfig holds indexer settings
type IndexerConfig struct {
	SitesURL      string
	ScrapeTimeout time.Duration
	BatchSize     int
}

// NewIndexerService creates a new indexer service
func NewIndexerService(store PrefixLister, repo repository.MetadataRepository, cfg IndexerConfig, clock clockwork.Clock, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IndexerService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.SitesURL == "" {
		cfg.SitesURL = DefaultSitesURL
	}
	if cfg.ScrapeTimeout <= 0 {
		cfg.ScrapeTimeout = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &IndexerService{
		store:      store,
		repo:       repo,
		logger:     logger,
		metrics:    metricsCollector,
		clock:      clock,
		httpClient: &http.Client{Timeout: cfg.ScrapeTimeout},
		sitesURL:   cfg.SitesURL,
		batchSize:  cfg.BatchSize,
	}
}

// IndexGOES records every day/hour directory of product in year
func (s *IndexerService) IndexGOES(ctx context.Context, product, year string) (*IndexResult, error) {
	if err := checkFields(
		fieldCheck{"product", product, productField},
		fieldCheck{"year", year, yearField},
	); err != nil {
		return nil, err
	}

	start := s.clock.Now()
	result := &IndexResult{Job: "goes"}
	s.logger.Info(ctx, "[INDEX_START] Indexing GOES-18 product year", logging.Fields{
		"product": product,
		"year":    year,
		"stage":   "INITIALIZATION",
	})

	days, err := s.listPrefixes(ctx, archive.GOES, archive.GOESPrefix(product, year, "", ""), result)
	if err != nil {
		return nil, err
	}

	batch := make([]models.GOESMetadata, 0, s.batchSize)
	flush := func() error {
		n, err := s.repo.UpsertGOESBatch(ctx, batch)
		if err != nil {
			s.metrics.RecordIndexError("write_error")
			return fmt.Errorf("failed to write GOES batch: %w", err)
		}
		result.RowsWritten += n
		batch = batch[:0]
		return nil
	}

	for _, day := range days {
		hours, err := s.listPrefixes(ctx, archive.GOES, archive.GOESPrefix(product, year, day, ""), result)
		if err != nil {
			return nil, err
		}
		for _, hour := range hours {
			batch = append(batch, models.GOESMetadata{Product: product, Year: year, Day: day, Hour: hour})
			result.RowsFound++
			if len(batch) >= s.batchSize {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	return s.complete(ctx, result, start), nil
}

// IndexNEXRAD records every day/station directory of year. An empty month
// walks all months of the year.
func (s *IndexerService) IndexNEXRAD(ctx context.Context, year, month string) (*IndexResult, error) {
	if err := checkFields(fieldCheck{"year", year, yearField}); err != nil {
		return nil, err
	}
	if month != "" {
		if err := checkFields(fieldCheck{"month", month, monthField}); err != nil {
			return nil, err
		}
	}

	start := s.clock.Now()
	result := &IndexResult{Job: "nexrad"}
	s.logger.Info(ctx, "[INDEX_START] Indexing NEXRAD year", logging.Fields{
		"year":  year,
		"month": month,
		"stage": "INITIALIZATION",
	})

	months := []string{month}
	if month == "" {
		var err error
		months, err = s.listPrefixes(ctx, archive.NEXRAD, archive.NEXRADPrefix(year, "", "", ""), result)
		if err != nil {
			return nil, err
		}
	}

	batch := make([]models.NEXRADMetadata, 0, s.batchSize)
	flush := func() error {
		n, err := s.repo.UpsertNEXRADBatch(ctx, batch)
		if err != nil {
			s.metrics.RecordIndexError("write_error")
			return fmt.Errorf("failed to write NEXRAD batch: %w", err)
		}
		result.RowsWritten += n
		batch = batch[:0]
		return nil
	}

	for _, m := range months {
		days, err := s.listPrefixes(ctx, archive.NEXRAD, archive.NEXRADPrefix(year, m, "", ""), result)
		if err != nil {
			return nil, err
		}
		for _, day := range days {
			stations, err := s.listPrefixes(ctx, archive.NEXRAD, archive.NEXRADPrefix(year, m, day, ""), result)
			if err != nil {
				return nil, err
			}
			for _, station := range stations {
				batch = append(batch, models.NEXRADMetadata{Year: year, Month: m, Day: day, GroundStation: station})
				result.RowsFound++
				if len(batch) >= s.batchSize {
					if err := flush(); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	return s.complete(ctx, result, start), nil
}

// ScrapeSites downloads the NCEI station list and stores every NEXRAD site
// in the United States. Any HTTP or connection failure aborts the run.
func (s *IndexerService) ScrapeSites(ctx context.Context) (*IndexResult, error) {
	start := s.clock.Now()
	result := &IndexResult{Job: "sites"}

	s.logger.Info(ctx, "[SCRAPE_START] Scraping NEXRAD site locations", logging.Fields{
		"url":   s.sitesURL,
		"stage": "INITIALIZATION",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sitesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.metrics.RecordIndexError("scrape_error")
		return nil, fmt.Errorf("fetch station list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.metrics.RecordIndexError("scrape_status")
		return nil, fmt.Errorf("fetch station list: unexpected status %d", resp.StatusCode)
	}

	var sites []*models.NEXRADSite
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !models.IsUSNEXRADLine(line) {
			continue
		}
		site, err := models.ParseSiteLine(line)
		if err != nil {
			result.LinesSkipped++
			s.metrics.RecordIndexError("parse_error")
			s.logger.Warn(ctx, "[SCRAPE_PARSE] Skipping unparseable station line", logging.Fields{
				"line":  line,
				"error": err.Error(),
			})
			continue
		}
		sites = append(sites, site)
	}
	if err := scanner.Err(); err != nil {
		s.metrics.RecordIndexError("scrape_error")
		return nil, fmt.Errorf("read station list: %w", err)
	}
	if len(sites) == 0 {
		return nil, ErrNoSites
	}
	result.RowsFound = len(sites)

	for i := 0; i < len(sites); i += s.batchSize {
		end := i + s.batchSize
		if end > len(sites) {
			end = len(sites)
		}
		n, err := s.repo.UpsertSitesBatch(ctx, sites[i:end])
		if err != nil {
			s.metrics.RecordIndexError("write_error")
			return nil, fmt.Errorf("failed to write sites: %w", err)
		}
		result.RowsWritten += n
	}

	return s.complete(ctx, result, start), nil
}

func (s *IndexerService) listPrefixes(ctx context.Context, kind archive.Kind, prefix string, result *IndexResult) ([]string, error) {
	children, err := s.store.ListPrefixes(ctx, kind, prefix)
	if err != nil {
		s.metrics.RecordIndexError("list_error")
		s.logger.Error(ctx, "[INDEX_LIST_ERROR] Failed to list archive prefix", logging.Fields{
			"archive": kind.String(),
			"prefix":  prefix,
		}, err)
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	result.PrefixesVisited++
	return children, nil
}

func (s *IndexerService) complete(ctx context.Context, result *IndexResult, start time.Time) *IndexResult {
	result.Duration = s.clock.Since(start)
	s.metrics.IndexDuration.WithLabelValues(result.Job).Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INDEX_COMPLETE] Indexing completed", logging.Fields{
		"job":              result.Job,
		"prefixes_visited": result.PrefixesVisited,
		"rows_found":       result.RowsFound,
		"rows_written":     result.RowsWritten,
		"lines_skipped":    result.LinesSkipped,
		"duration_seconds": result.Duration.Seconds(),
		"stage":            "COMPLETE",
	})
	return result
}
