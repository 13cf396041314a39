// Package config provides configuration management for trackid-scraper.
//
// This package handles:
//   - Loading and saving settings from YAML files
//   - Default configuration values
//   - Environment overrides for the API key and database location
//   - Logger construction
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Follows the first archive entry only
//	// Paces lookups at 1s, cools down 300s between retries
//
// # Loading from File
//
//	settings, err := config.Load("config.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// API_KEY and DATABASE_LOCATION from the environment (or a .env file)
// take precedence over the file.
//
// # Logging
//
//	logger, closer, err := config.SetupLogger(settings.Log, true)
//	defer closer.Close()
package config
