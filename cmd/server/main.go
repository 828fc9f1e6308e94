package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"noaa-archive/internal/config"
	"noaa-archive/internal/handlers"
	"noaa-archive/internal/probe"
	"noaa-archive/internal/repository"
	"noaa-archive/internal/resolver"
	"noaa-archive/internal/services"
	"noaa-archive/internal/storage"
	"noaa-archive/internal/telemetry"
	"noaa-archive/pkg/database"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("noaa-archive-api", version, logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting NOAA archive API server", logging.Fields{
		"version":      version,
		"server_host":  cfg.Server.Host,
		"server_port":  cfg.Server.Port,
		"db_driver":    cfg.Database.Driver,
		"probe_method": cfg.Archive.ProbeMethod,
		"copy_enabled": cfg.Storage.CopyEnabled(),
	})

	metricsCollector := metrics.NewCollector("noaa_archive", prometheus.DefaultRegisterer)
	clock := clockwork.NewRealClock()

	db, err := database.Open(cfg.Database.DatabaseOptions(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	store, err := storage.NewStore(cfg.Storage.StoreOptions())
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to create object store client", logging.Fields{
			"endpoint": cfg.Storage.Endpoint,
		}, err)
	}

	// Activity stream: always logged, optionally published to Kafka
	observers := telemetry.Multi{telemetry.NewLogObserver(logger, clock)}
	if len(cfg.Telemetry.KafkaBrokers) > 0 {
		kafka := telemetry.NewKafkaObserver(cfg.Telemetry.KafkaBrokers, cfg.Telemetry.KafkaTopic, logger, metricsCollector, clock)
		defer kafka.Close()
		observers = append(observers, kafka)
		logger.Info(ctx, "[STARTUP] Publishing activity to Kafka", logging.Fields{
			"brokers": cfg.Telemetry.KafkaBrokers,
			"topic":   cfg.Telemetry.KafkaTopic,
		})
	}

	res := resolver.New(
		resolver.BaseURLs{NEXRAD: cfg.Archive.NEXRADBaseURL, GOES: cfg.Archive.GOESBaseURL},
		probe.NewHTTPProber(cfg.Archive.ProbeMethod, cfg.Archive.ProbeTimeout),
		resolver.WithLogger(logger),
		resolver.WithMetrics(metricsCollector),
		resolver.WithObserver(observers),
	)

	metadataRepo := repository.NewMetadataRepository(db, logger, metricsCollector)
	catalogService := services.NewCatalogService(metadataRepo, observers, logger, metricsCollector)
	transferService := services.NewTransferService(store, observers, logger, metricsCollector)

	apiHandler := handlers.NewAPIHandler(res, catalogService, transferService, logger, metricsCollector)

	router := mux.NewRouter()
	apiHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
