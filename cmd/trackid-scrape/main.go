package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/trackid-scraper/internal/archive"
	"github.com/handiism/trackid-scraper/internal/config"
	"github.com/handiism/trackid-scraper/internal/pipeline"
	"github.com/sirupsen/logrus"
)

func main() {
	// Command line flags
	var (
		configFlag  = flag.String("config", "", "Path to YAML config file")
		entriesFlag = flag.Int("entries", -1, "Number of archive entries to scrape, 0 for all (overrides config)")
		dryRunFlag  = flag.Bool("dry-run", false, "Scrape and enrich without writing to the database")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
		writeFlag   = flag.String("write-config", "", "Write the effective config (without secrets) to this path and exit")
	)

	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 && *writeFlag == "" {
		usage()
		os.Exit(1)
	}

	// Load config
	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *entriesFlag >= 0 {
		settings.Site.MaxEntries = *entriesFlag
	}
	if *verboseFlag {
		settings.Log.Level = "debug"
	}

	if *writeFlag != "" {
		if err := settings.Save(*writeFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", *writeFlag)
		return
	}
	month, year := flag.Arg(0), flag.Arg(1)

	logger, closer, err := config.SetupLogger(settings.Log, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	settings.LogTo(logger)

	// Handle interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := pipeline.NewManager(settings, archive.ChromeFactory(settings.ToChromeOptions()), func(event pipeline.ProgressEvent) {
		pipeline.LogEvent(logger, event)
	}).WithLogger(logger).WithDryRun(*dryRunFlag)

	res, err := manager.Run(ctx, month, year)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			logger.Warn("Interrupted, run cancelled.")
			closer.Close()
			os.Exit(130)
		}
		logger.WithError(err).Error("Run failed")
		closer.Close()
		os.Exit(1)
	}

	summarize(logger, res)
}

func summarize(logger logrus.FieldLogger, res *pipeline.Result) {
	fields := logrus.Fields{
		"run":       res.RunID,
		"tracks":    len(res.Records),
		"persisted": res.Persisted,
	}
	if res.Persisted {
		fields["rows_written"] = res.RowsWritten
	}
	if r := res.Report; r != nil {
		fields["resolved"] = r.Resolved
		fields["not_found"] = r.NotFound
		fields["skipped"] = r.Skipped
		fields["exhausted"] = r.Exhausted
		fields["requests"] = r.Requests
		fields["cooldowns"] = r.Cooldowns
	}
	logger.WithFields(fields).Info("Done")
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "TrackID Scraper - Tag doyoutrackid.com archives with Last.fm genres")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  trackid-scrape [options] <month> <year>")
	fmt.Fprintln(out, "  trackid-scrape [options] -write-config <path>")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment:")
	fmt.Fprintf(out, "  %s            Last.fm API key\n", config.EnvAPIKey)
	fmt.Fprintf(out, "  %s  Database URL, e.g. sqlite:///tracks.db\n", config.EnvDatabaseLocation)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "For interactive mode, use: trackid-tui")
	fmt.Fprintln(out)
	flag.PrintDefaults()
}
