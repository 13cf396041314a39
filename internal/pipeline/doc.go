// Package pipeline runs the scrape, enrich and persist stages for one
// archive month.
//
// # Manager
//
// The Manager executes the stages strictly in sequence:
//
//  1. Start a browser and scrape the archive entries for month/year
//  2. Close the browser
//  3. Look up every record's artist on Last.fm and attach genres
//  4. Replace the database table with the enriched records
//
// # Basic Usage
//
//	manager := pipeline.NewManager(settings, archive.ChromeFactory(settings.ToChromeOptions()),
//	    func(event pipeline.ProgressEvent) {
//	        pipeline.LogEvent(logger, event)
//	    }).WithLogger(logger)
//
//	res, err := manager.Run(ctx, "10", "2024")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Stage   Stage         // Scrape, Enrich, Persist, Done
//	    RunID   string
//	}
//
// GetProgress can be polled from another goroutine for the current stage
// and the number of records the enricher has processed.
//
// # Failure Handling
//
// Scrape errors and cancellation abort the run. A database failure is
// logged and kept in Result.PersistErr; it only fails the run when
// Database.FailOnPersistError is set.
package pipeline
