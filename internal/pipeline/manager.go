package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/handiism/trackid-scraper/internal/archive"
	"github.com/handiism/trackid-scraper/internal/config"
	"github.com/handiism/trackid-scraper/internal/enrich"
	"github.com/handiism/trackid-scraper/internal/lastfm"
	"github.com/handiism/trackid-scraper/internal/model"
	"github.com/handiism/trackid-scraper/internal/store"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// Stage identifies the pipeline step a run is in.
type Stage int32

const (
	StageIdle Stage = iota
	StageScrape
	StageEnrich
	StagePersist
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageScrape:
		return "scrape"
	case StageEnrich:
		return "enrich"
	case StagePersist:
		return "persist"
	case StageDone:
		return "done"
	default:
		return "idle"
	}
}

// ProgressEvent represents a pipeline progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Stage   Stage

	// RunID is the ID of the run that emitted the event.
	RunID string
}

// Sink receives the enriched record set.
type Sink interface {
	Replace(ctx context.Context, records []*model.TrackRecord) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// SinkOpener opens the sink for a database location and table.
type SinkOpener func(dsn, table string) (Sink, error)

// LookupFactory builds the artist lookup used by the enrichment stage.
type LookupFactory func() enrich.ArtistLookup

// Result describes a finished run.
type Result struct {
	// RunID is attached as the "run" field to every log entry of the run.
	RunID string

	// Records is the enriched record set in scrape order.
	Records []*model.TrackRecord

	// Report summarizes the enrichment stage.
	Report *enrich.Report

	// Persisted is true when the records were written to the sink.
	Persisted bool

	// RowsWritten is the table's row count read back after the write.
	RowsWritten int

	// PersistErr is the sink failure, if any. It is returned from Run only
	// when Database.FailOnPersistError is set.
	PersistErr error
}

// Manager runs scrape, enrich and persist in sequence.
type Manager struct {
	settings   *config.Settings
	newBrowser archive.BrowserFactory
	newLookup  LookupFactory
	openSink   SinkOpener
	logger     logrus.FieldLogger
	sleep      func(ctx context.Context, d time.Duration) error
	dryRun     bool

	runID        atomic.Value
	stage        int32
	lookupsDone  int32
	lookupsTotal int32

	onProgress func(ProgressEvent)
}

// NewManager creates a new pipeline Manager.
//
// The Last.fm client and the SQL sink are built from settings; tests swap
// them with WithLookup and WithSink.
func NewManager(settings *config.Settings, newBrowser archive.BrowserFactory, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		settings:   settings,
		newBrowser: newBrowser,
		newLookup: func() enrich.ArtistLookup {
			return lastfm.NewClient(settings.ToLastFMConfig())
		},
		openSink: func(dsn, table string) (Sink, error) {
			return store.Open(dsn, table)
		},
		logger:     logrus.StandardLogger(),
		onProgress: onProgress,
	}
}

// WithLogger sets the logger handed to every stage.
func (m *Manager) WithLogger(logger logrus.FieldLogger) *Manager {
	m.logger = logger
	return m
}

// WithLookup replaces the artist lookup factory.
func (m *Manager) WithLookup(fn LookupFactory) *Manager {
	m.newLookup = fn
	return m
}

// WithSink replaces the sink opener.
func (m *Manager) WithSink(fn SinkOpener) *Manager {
	m.openSink = fn
	return m
}

// WithSleep replaces the pause and pacing sleeps of both stages.
func (m *Manager) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Manager {
	m.sleep = sleep
	return m
}

// WithDryRun skips the persist stage.
func (m *Manager) WithDryRun(dryRun bool) *Manager {
	m.dryRun = dryRun
	return m
}

// Run executes one full pipeline for the given month and year.
//
// A scrape failure or a cancelled context aborts the run. Enrichment
// failures only leave records without genres. Persist failures are
// reported in Result.PersistErr and returned only when
// Database.FailOnPersistError is set.
func (m *Manager) Run(ctx context.Context, month, year string) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := m.logger.WithField("run", res.RunID)
	m.runID.Store(res.RunID)

	atomic.StoreInt32(&m.lookupsDone, 0)
	atomic.StoreInt32(&m.lookupsTotal, 0)

	m.setStage(StageScrape)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Scraping archive for %s/%s", month, year), Level: LevelInfo})

	records, err := m.scrape(ctx, log, month, year)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Scrape failed: %v", err), Level: LevelError})
		return res, err
	}
	res.Records = records
	m.progress(ProgressEvent{Message: fmt.Sprintf("Scraped a total of %d tracks.", len(records)), Level: LevelInfo})

	m.setStage(StageEnrich)
	if m.settings.LastFM.APIKey == "" {
		m.progress(ProgressEvent{Message: fmt.Sprintf("No Last.fm API key set, lookups will fail (set %s)", config.EnvAPIKey), Level: LevelWarning})
	}
	atomic.StoreInt32(&m.lookupsTotal, int32(len(records)))

	enricher := enrich.NewEnricher(m.newLookup(), m.settings.ToEnrichOptions(), log).
		OnProgress(func(done, total int) {
			atomic.StoreInt32(&m.lookupsDone, int32(done))
			m.progress(ProgressEvent{Message: fmt.Sprintf("Processed %d/%d tracks", done, total), Level: LevelVerbose})
		})
	if m.sleep != nil {
		enricher.WithSleep(m.sleep)
	}

	records, report, err := enricher.Enrich(ctx, records)
	res.Records = records
	res.Report = report
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Enrichment stopped: %v", err), Level: LevelError})
		return res, err
	}
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Resolved %d of %d artists (%d not found, %d skipped, %d failed, %d cooldowns)",
			report.Resolved, report.Lookups, report.NotFound, report.Skipped, report.Exhausted, report.Cooldowns),
		Level: LevelSuccess,
	})

	m.setStage(StagePersist)
	if m.dryRun {
		m.progress(ProgressEvent{Message: "Dry run, database left untouched", Level: LevelInfo})
		m.setStage(StageDone)
		return res, nil
	}

	rows, err := m.persist(ctx, records)
	if err != nil {
		res.PersistErr = err
		m.progress(ProgressEvent{Message: fmt.Sprintf("Failed to write tracks to the database: %v", err), Level: LevelError})
		if m.settings.Database.FailOnPersistError {
			return res, err
		}
	} else {
		res.Persisted = true
		res.RowsWritten = rows
		m.progress(ProgressEvent{Message: fmt.Sprintf("Wrote %d tracks to %s", rows, m.table()), Level: LevelSuccess})
	}

	m.setStage(StageDone)
	return res, nil
}

// GetProgress returns the current stage and enrichment progress.
func (m *Manager) GetProgress() (stage Stage, lookupsDone, lookupsTotal int32) {
	return Stage(atomic.LoadInt32(&m.stage)),
		atomic.LoadInt32(&m.lookupsDone), atomic.LoadInt32(&m.lookupsTotal)
}

// scrape runs the archive stage with its own browser, which is closed
// before returning.
func (m *Manager) scrape(ctx context.Context, log logrus.FieldLogger, month, year string) (records []*model.TrackRecord, err error) {
	browser, err := m.newBrowser(ctx)
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}
	m.progress(ProgressEvent{Message: "Browser started", Level: LevelVerbose})
	defer func() {
		cerr := browser.Close()
		m.progress(ProgressEvent{Message: "Browser closed", Level: LevelVerbose})
		if cerr == nil {
			return
		}
		if err == nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error closing browser: %v", cerr), Level: LevelWarning})
			return
		}
		err = multierr.Append(err, fmt.Errorf("close browser: %w", cerr))
	}()

	scraper := archive.NewScraper(browser, m.settings.ToArchiveConfig(), log)
	if m.sleep != nil {
		scraper.WithSleep(m.sleep)
	}
	return scraper.Scrape(ctx, month, year)
}

// persist replaces the table and returns the row count read back from it.
func (m *Manager) persist(ctx context.Context, records []*model.TrackRecord) (rows int, err error) {
	sink, err := m.openSink(m.settings.Database.DSN, m.table())
	if err != nil {
		return 0, err
	}
	defer func() {
		err = multierr.Append(err, sink.Close())
	}()

	m.progress(ProgressEvent{Message: fmt.Sprintf("Replacing table %s", m.table()), Level: LevelVerbose})
	if err := sink.Replace(ctx, records); err != nil {
		return 0, err
	}

	rows, err = sink.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return rows, nil
}

func (m *Manager) table() string {
	if m.settings.Database.Table == "" {
		return store.DefaultTable
	}
	return m.settings.Database.Table
}

func (m *Manager) setStage(s Stage) {
	atomic.StoreInt32(&m.stage, int32(s))
}

func (m *Manager) progress(event ProgressEvent) {
	event.Stage = Stage(atomic.LoadInt32(&m.stage))
	if id, ok := m.runID.Load().(string); ok {
		event.RunID = id
	}
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
