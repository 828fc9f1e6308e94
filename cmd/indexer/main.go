package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"noaa-archive/internal/archive"
	"noaa-archive/internal/config"
	"noaa-archive/internal/repository"
	"noaa-archive/internal/services"
	"noaa-archive/internal/storage"
	"noaa-archive/pkg/database"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

const version = "1.0.0"

func main() {
	archiveName := flag.String("archive", "", "Archive to index: nexrad or goes")
	product := flag.String("product", "ABI-L1b-RadC", "GOES-18 product to index")
	year := flag.String("year", "", "Year to index (YYYY)")
	month := flag.String("month", "", "NEXRAD month to index (MM); empty indexes the whole year")
	sites := flag.Bool("sites", false, "Scrape NEXRAD site locations")
	batchSize := flag.Int("batch-size", 500, "Number of rows written per transaction")
	flag.Parse()

	if *archiveName == "" && !*sites {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -archive and -year, or -sites")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("noaa-archive-indexer", version, logging.ParseLevel(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "[INDEXER_START] Starting archive indexing", logging.Fields{
		"version": version,
		"archive": *archiveName,
		"product": *product,
		"year":    *year,
		"month":   *month,
		"sites":   *sites,
	})

	metricsCollector := metrics.NewCollector("noaa_archive_indexer", prometheus.NewRegistry())

	db, err := database.Open(cfg.Database.DatabaseOptions(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INDEXER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	store, err := storage.NewStore(cfg.Storage.StoreOptions())
	if err != nil {
		logger.Fatal(ctx, "[INDEXER_ERROR] Failed to create object store client", logging.Fields{}, err)
	}

	indexer := services.NewIndexerService(
		store,
		repository.NewMetadataRepository(db, logger, metricsCollector),
		services.IndexerConfig{
			SitesURL:      cfg.Archive.SitesURL,
			ScrapeTimeout: cfg.Archive.ScrapeTimeout,
			BatchSize:     *batchSize,
		},
		clockwork.NewRealClock(),
		logger,
		metricsCollector,
	)

	var results []*services.IndexResult

	if *archiveName != "" {
		kind, err := archive.ParseKind(*archiveName)
		if err != nil {
			logger.Fatal(ctx, "[INDEXER_ERROR] Invalid -archive flag", logging.Fields{}, err)
		}

		var result *services.IndexResult
		switch kind {
		case archive.GOES:
			result, err = indexer.IndexGOES(ctx, *product, *year)
		case archive.NEXRAD:
			result, err = indexer.IndexNEXRAD(ctx, *year, *month)
		}
		if err != nil {
			logger.Fatal(ctx, "[INDEXER_ERROR] Indexing failed", logging.Fields{
				"archive": kind.String(),
			}, err)
		}
		results = append(results, result)
	}

	if *sites {
		result, err := indexer.ScrapeSites(ctx)
		if err != nil {
			logger.Fatal(ctx, "[INDEXER_ERROR] Site scrape failed", logging.Fields{
				"url": cfg.Archive.SitesURL,
			}, err)
		}
		results = append(results, result)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INDEXING COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	for _, r := range results {
		fmt.Printf("Job:              %s\n", r.Job)
		fmt.Printf("Prefixes Visited: %d\n", r.PrefixesVisited)
		fmt.Printf("Rows Found:       %d\n", r.RowsFound)
		fmt.Printf("Rows Written:     %d\n", r.RowsWritten)
		if r.LinesSkipped > 0 {
			fmt.Printf("Lines Skipped:    %d\n", r.LinesSkipped)
		}
		fmt.Printf("Duration:         %v\n\n", r.Duration)
	}

	logger.Info(ctx, "[INDEXER_COMPLETE] Indexing completed successfully", logging.Fields{
		"jobs": len(results),
	})
}
