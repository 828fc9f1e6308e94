// Command resolve prints the public URL of an archive file.
//
//	resolve -archive goes OR_ABI-L1b-RadC-M6C02_G18_s20230010000000_e20230010009000_c20230010009500.nc
//
// Exit status: 0 resolved, 2 not found, 3 invalid filename, 1 when the
// archive could not be reached.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"noaa-archive/internal/archive"
	"noaa-archive/internal/config"
	"noaa-archive/internal/probe"
	"noaa-archive/internal/resolver"
	"noaa-archive/pkg/logging"
)

const (
	exitResolved  = 0
	exitFailure   = 1
	exitNotFound  = 2
	exitInvalid   = 3
	exitUsage     = 64
	loggerService = "noaa-archive-resolve"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, os.Exit))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, exit func(int)) int {
	flags := flag.NewFlagSet("resolve", flag.ContinueOnError)
	flags.SetOutput(stderr)
	archiveName := flags.String("archive", "nexrad", "Archive to search: nexrad or goes")
	method := flags.String("method", "", "Probe method override: HEAD or GET")
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: resolve -archive nexrad|goes <filename>")
		return exitUsage
	}

	kind, err := archive.ParseKind(*archiveName)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return exitFailure
	}
	if err := cfg.Archive.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return exitFailure
	}
	if *method != "" {
		cfg.Archive.ProbeMethod = *method
	}

	logger := logging.NewStructuredLogger(loggerService, "1.0.0", logging.ParseLevel(cfg.Logging.Level))
	logger.SetOutput(stderr)
	logger.SetExitFunc(exit)

	res := resolver.New(
		resolver.BaseURLs{NEXRAD: cfg.Archive.NEXRADBaseURL, GOES: cfg.Archive.GOESBaseURL},
		probe.NewHTTPProber(cfg.Archive.ProbeMethod, cfg.Archive.ProbeTimeout),
		resolver.WithLogger(logger),
	)

	filename := flags.Arg(0)
	outcome, err := res.Resolve(ctx, kind, filename)
	if err != nil {
		logger.Fatal(ctx, "[RESOLVE_ERROR] Archive could not be reached", logging.Fields{
			"archive":  kind.String(),
			"filename": filename,
		}, err)
		return exitFailure
	}

	switch outcome.Status {
	case resolver.StatusResolved:
		fmt.Fprintln(stdout, outcome.URL)
		return exitResolved
	case resolver.StatusNotFound:
		fmt.Fprintf(stderr, "%s: no such file in the %s archive\n", filename, kind.DisplayName())
		return exitNotFound
	default:
		fmt.Fprintf(stderr, "%s: not a valid %s filename\n", filename, kind.DisplayName())
		return exitInvalid
	}
}
