package services

import (
	"context"
	"fmt"
	"strings"

	"noaa-archive/internal/archive"
	"noaa-archive/internal/telemetry"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

// ObjectStore lists archive objects and copies them to the user bucket
type ObjectStore interface {
	ListFiles(ctx context.Context, kind archive.Kind, prefix string) ([]string, error)
	ListPrefixes(ctx context.Context, kind archive.Kind, prefix string) ([]string, error)
	CopyToUserBucket(ctx context.Context, loc archive.Location) (string, error)
}

// TransferService lists files under a browsed directory and copies selected
// files into the user bucket
type TransferService struct {
	store    ObjectStore
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
	observer telemetry.Observer
}

// CopyResult describes a completed copy
type CopyResult struct {
	Archive     string `json:"archive"`
	Filename    string `json:"filename"`
	SourceKey   string `json:"source_key"`
	DownloadURL string `json:"download_url"`
}

// NewTransferService creates a new transfer service
func NewTransferService(store ObjectStore, observer telemetry.Observer, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *TransferService {
	if observer == nil {
		observer = telemetry.Nop{}
	}
	return &TransferService{
		store:    store,
		logger:   logger,
		metrics:  metricsCollector,
		observer: observer,
	}
}

// ListGOESFiles lists GOES-18 files for one product hour
func (s *TransferService) ListGOESFiles(ctx context.Context, product, year, day, hour string) ([]string, error) {
	if err := checkFields(
		fieldCheck{"product", product, productField},
		fieldCheck{"year", year, yearField},
		fieldCheck{"day", day, doyField},
		fieldCheck{"hour", hour, hourField},
	); err != nil {
		return nil, err
	}
	return s.list(ctx, archive.GOES, archive.GOESPrefix(product, year, day, hour))
}

// ListNEXRADFiles lists NEXRAD files for one station day
func (s *TransferService) ListNEXRADFiles(ctx context.Context, year, month, day, station string) ([]string, error) {
	if err := checkFields(
		fieldCheck{"year", year, yearField},
		fieldCheck{"month", month, monthField},
		fieldCheck{"day", day, dayField},
		fieldCheck{"station", station, stationField},
	); err != nil {
		return nil, err
	}
	return s.list(ctx, archive.NEXRAD, archive.NEXRADPrefix(year, month, day, station))
}

func (s *TransferService) list(ctx context.Context, kind archive.Kind, prefix string) ([]string, error) {
	files, err := s.store.ListFiles(ctx, kind, prefix)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.observer.Observe(ctx, telemetry.Event{
		Action:  telemetry.ActionList,
		Archive: kind.String(),
		Outcome: outcome,
		Detail:  prefix,
	})

	if err != nil {
		s.logger.Error(ctx, "[TRANSFER_LIST_ERROR] Failed to list archive files", logging.Fields{
			"archive": kind.String(),
			"prefix":  prefix,
		}, err)
		return nil, fmt.Errorf("failed to list %s files under %s: %w", kind.DisplayName(), prefix, err)
	}
	return files, nil
}

// Copy validates filename, derives its archive location and copies the
// object into the user bucket. Invalid names fail with
// archive.ErrInvalidFormat before any storage call.
func (s *TransferService) Copy(ctx context.Context, kind archive.Kind, filename string) (*CopyResult, error) {
	name := strings.TrimSpace(filename)

	loc, err := archive.Derive(kind, name)
	if err != nil {
		s.recordCopy(ctx, kind, name, "invalid_format", err.Error())
		return nil, err
	}

	link, err := s.store.CopyToUserBucket(ctx, loc)
	if err != nil {
		s.recordCopy(ctx, kind, name, "error", err.Error())
		s.logger.Error(ctx, "[TRANSFER_COPY_ERROR] Failed to copy file to user bucket", logging.Fields{
			"archive":  kind.String(),
			"filename": name,
			"key":      loc.Key(),
		}, err)
		return nil, fmt.Errorf("failed to copy %s: %w", name, err)
	}

	s.recordCopy(ctx, kind, name, "ok", loc.Key())
	s.logger.Info(ctx, "[TRANSFER_COPY] File copied to user bucket", logging.Fields{
		"archive":  kind.String(),
		"filename": name,
		"key":      loc.Key(),
	})

	return &CopyResult{
		Archive:     kind.String(),
		Filename:    name,
		SourceKey:   loc.Key(),
		DownloadURL: link,
	}, nil
}

func (s *TransferService) recordCopy(ctx context.Context, kind archive.Kind, name, status, detail string) {
	s.metrics.RecordCopy(kind.String(), status)
	s.observer.Observe(ctx, telemetry.Event{
		Action:   telemetry.ActionCopy,
		Archive:  kind.String(),
		Filename: name,
		Outcome:  status,
		Detail:   detail,
	})
}
