package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"noaa-archive/internal/config"
	"noaa-archive/migrations"
	"noaa-archive/pkg/database"
	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	var migrationFile string
	switch *direction {
	case "up":
		migrationFile = migrations.CreateSchemaUp
	case "down":
		migrationFile = migrations.CreateSchemaDown
	default:
		fmt.Fprintf(os.Stderr, "Unknown direction %q: expected up or down\n", *direction)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Database.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("noaa-archive-migrate", "1.0.0", logging.ParseLevel(cfg.Logging.Level))
	db, err := database.Open(cfg.Database.DatabaseOptions(), logger, metrics.NewCollector("noaa_archive_migrate", prometheus.NewRegistry()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database successfully\n", db.Driver())
	fmt.Printf("Running migration: %s\n", migrationFile)

	if err := db.ApplyMigration(context.Background(), migrations.FS, migrationFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully")
}
