package services

import (
	"context"
	"regexp"

	"noaa-archive/internal/models"
	"noaa-archive/internal/repository"
	"noaa-archive/internal/telemetry"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

var (
	yearField  = regexp.MustCompile(`^[0-9]{4}$`)
	monthField = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	dayField   = regexp.MustCompile(`^(0[1-9]|[12][0-9]|3[01])$`)
	doyField   = regexp.MustCompile(`^[0-3][0-9]{2}$`)
	hourField  = regexp.MustCompile(`^([01][0-9]|2[0-3])$`)
	// Station ids share the NEXRAD filename grammar
	stationField = regexp.MustCompile(`^[A-Z]{3}[A-Z0-9]$`)
	// Product families look like ABI-L1b-RadC
	productField = regexp.MustCompile(`^[A-Z]{3}-[A-Za-z0-9]{2,3}-[A-Za-z0-9]{3,6}$`)
)

type fieldCheck struct {
	name  string
	value string
	re    *regexp.Regexp
}

func checkFields(checks ...fieldCheck) error {
	for _, c := range checks {
		if !c.re.MatchString(c.value) {
			return &models.ValidationError{
				Field:   c.name,
				Value:   c.value,
				Message: "invalid " + c.name + ": " + c.value,
			}
		}
	}
	return nil
}

// CatalogService serves the pick-lists used to browse each archive
type CatalogService struct {
	repo     repository.MetadataRepository
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
	observer telemetry.Observer
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo repository.MetadataRepository, observer telemetry.Observer, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CatalogService {
	if observer == nil {
		observer = telemetry.Nop{}
	}
	return &CatalogService{
		repo:     repo,
		logger:   logger,
		metrics:  metricsCollector,
		observer: observer,
	}
}

func (s *CatalogService) notify(ctx context.Context, archiveName, detail string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.observer.Observe(ctx, telemetry.Event{
		Action:  telemetry.ActionCatalog,
		Archive: archiveName,
		Outcome: outcome,
		Detail:  detail,
	})
}

// GOESProducts lists indexed GOES-18 product families
func (s *CatalogService) GOESProducts(ctx context.Context) ([]string, error) {
	products, err := s.repo.GOESProducts(ctx)
	s.notify(ctx, "goes", "products", err)
	return products, err
}

// GOESYears lists indexed years for product
func (s *CatalogService) GOESYears(ctx context.Context, product string) ([]string, error) {
	if err := checkFields(fieldCheck{"product", product, productField}); err != nil {
		return nil, err
	}
	years, err := s.repo.GOESYears(ctx, product)
	s.notify(ctx, "goes", "years", err)
	return years, err
}

// GOESDays lists indexed days of year for product and year
func (s *CatalogService) GOESDays(ctx context.Context, year, product string) ([]string, error) {
	if err := checkFields(
		fieldCheck{"product", product, productField},
		fieldCheck{"year", year, yearField},
	); err != nil {
		return nil, err
	}
	days, err := s.repo.GOESDays(ctx, year, product)
	s.notify(ctx, "goes", "days", err)
	return days, err
}

// GOESHours lists indexed hours for product, year and day of year
func (s *CatalogService) GOESHours(ctx context.Context, day, year, product string) ([]string, error) {
	if err := checkFields(
		fieldCheck{"product", product, productField},
		fieldCheck{"year", year, yearField},
		fieldCheck{"day", day, doyField},
	); err != nil {
		return nil, err
	}
	hours, err := s.repo.GOESHours(ctx, day, year, product)
	s.notify(ctx, "goes", "hours", err)
	return hours, err
}

// NEXRADYears lists indexed NEXRAD years
func (s *CatalogService) NEXRADYears(ctx context.Context) ([]string, error) {
	years, err := s.repo.NEXRADYears(ctx)
	s.notify(ctx, "nexrad", "years", err)
	return years, err
}

// NEXRADMonths lists indexed months for year
func (s *CatalogService) NEXRADMonths(ctx context.Context, year string) ([]string, error) {
	if err := checkFields(fieldCheck{"year", year, yearField}); err != nil {
		return nil, err
	}
	months, err := s.repo.NEXRADMonths(ctx, year)
	s.notify(ctx, "nexrad", "months", err)
	return months, err
}

// NEXRADDays lists indexed days for month and year
func (s *CatalogService) NEXRADDays(ctx context.Context, month, year string) ([]string, error) {
	if err := checkFields(
		fieldCheck{"year", year, yearField},
		fieldCheck{"month", month, monthField},
	); err != nil {
		return nil, err
	}
	days, err := s.repo.NEXRADDays(ctx, month, year)
	s.notify(ctx, "nexrad", "days", err)
	return days, err
}

// NEXRADStations lists stations with data on the given date
func (s *CatalogService) NEXRADStations(ctx context.Context, day, month, year string) ([]string, error) {
	if err := checkFields(
		fieldCheck{"year", year, yearField},
		fieldCheck{"month", month, monthField},
		fieldCheck{"day", day, dayField},
	); err != nil {
		return nil, err
	}
	stations, err := s.repo.NEXRADStations(ctx, day, month, year)
	s.notify(ctx, "nexrad", "stations", err)
	return stations, err
}

// NEXRADSites returns radar site locations for map display
func (s *CatalogService) NEXRADSites(ctx context.Context) ([]*models.NEXRADSite, error) {
	sites, err := s.repo.NEXRADSites(ctx)
	s.notify(ctx, "nexrad", "sites", err)
	return sites, err
}

// HealthCheck verifies the catalog is reachable
func (s *CatalogService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
