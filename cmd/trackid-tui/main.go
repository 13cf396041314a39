package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/trackid-scraper/internal/config"
	"github.com/handiism/trackid-scraper/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The screen belongs to Bubble Tea, so logs only go to the file.
	logger, closer, err := config.SetupLogger(settings.Log, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	settings.LogTo(logger)

	if err := tui.Run(settings, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}
