package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/handiism/trackid-scraper/internal/lastfm"
	"github.com/handiism/trackid-scraper/internal/model"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// ArtistLookup performs one metadata request for an artist.
//
// *lastfm.Client implements it.
type ArtistLookup interface {
	ArtistInfo(ctx context.Context, artist string) lastfm.Result
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Outcome is the final state of one artist lookup.
type Outcome int

const (
	// OutcomeResolved means genres were found and attached.
	OutcomeResolved Outcome = iota

	// OutcomeNotFound means the API does not know the artist.
	OutcomeNotFound

	// OutcomeSkipped means the name failed the script filter.
	OutcomeSkipped

	// OutcomeExhausted means every attempt failed.
	OutcomeExhausted
)

// Options configures an Enricher.
type Options struct {
	// Pacing is the delay before every lookup.
	Pacing time.Duration

	// Cooldown is the fixed wait between attempts.
	Cooldown time.Duration

	// MaxAttempts bounds the requests per artist. Values below 1 mean 1.
	MaxAttempts int

	// DedupeArtists looks each distinct artist up only once.
	DedupeArtists bool
}

// LookupResult describes one artist lookup including its retries.
type LookupResult struct {
	Outcome   Outcome
	Artist    *model.ArtistGenreInfo
	Requests  int
	Cooldowns int

	// LastErr is the last retryable failure, set for OutcomeExhausted.
	LastErr error
}

// Report summarizes an enrichment run.
type Report struct {
	Lookups   int
	Requests  int
	Cooldowns int
	Resolved  int
	NotFound  int
	Skipped   int
	Exhausted int
}

// Enricher attaches Last.fm genres to track records.
//
// Records are processed in order. Before each lookup the Enricher waits
// Options.Pacing; names with non-Latin letters are skipped; requests that
// hit rate limits, other HTTP errors or transport failures are retried up
// to Options.MaxAttempts with a fixed Options.Cooldown in between. A 200
// response without an artist ends the lookup at once.
//
// Example usage:
//
//	e := enrich.NewEnricher(client, enrich.Options{
//	    Pacing:      time.Second,
//	    Cooldown:    300 * time.Second,
//	    MaxAttempts: 5,
//	}, logger)
//
//	records, report, err := e.Enrich(ctx, records)
type Enricher struct {
	api        ArtistLookup
	opts       Options
	logger     logrus.FieldLogger
	sleep      SleepFunc
	onProgress func(done, total int)
}

// NewEnricher creates a new Enricher.
func NewEnricher(api ArtistLookup, opts Options, logger logrus.FieldLogger) *Enricher {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Enricher{
		api:    api,
		opts:   opts,
		logger: logger,
		sleep:  sleepContext,
	}
}

// WithSleep replaces the pacing sleep. Used by tests.
func (e *Enricher) WithSleep(sleep SleepFunc) *Enricher {
	e.sleep = sleep
	return e
}

// OnProgress registers a callback invoked after each record.
func (e *Enricher) OnProgress(fn func(done, total int)) *Enricher {
	e.onProgress = fn
	return e
}

// Enrich looks up the artist of every record and attaches the genres to
// all records with the same artist name.
//
// The records are modified in place and returned. Lookup failures never
// produce an error; only a cancelled context does.
func (e *Enricher) Enrich(ctx context.Context, records []*model.TrackRecord) ([]*model.TrackRecord, *Report, error) {
	report := &Report{}
	seen := make(map[string]struct{})

	for i, rec := range records {
		artist := rec.Artist

		if e.opts.DedupeArtists {
			if _, ok := seen[artist]; ok {
				e.progress(i+1, len(records))
				continue
			}
			seen[artist] = struct{}{}
		}

		if err := e.sleep(ctx, e.opts.Pacing); err != nil {
			return records, report, err
		}

		res, err := e.Lookup(ctx, artist)
		if err != nil {
			return records, report, err
		}

		report.Lookups++
		report.Requests += res.Requests
		report.Cooldowns += res.Cooldowns

		switch res.Outcome {
		case OutcomeResolved:
			genres := res.Artist.JoinedGenres()
			e.logger.Infof("Updating genres for artist: %s", res.Artist.Name)
			e.logger.Infof("Genres: %s", genres)
			model.AttachGenres(records, artist, genres)
			report.Resolved++
		case OutcomeNotFound:
			report.NotFound++
		case OutcomeSkipped:
			report.Skipped++
		case OutcomeExhausted:
			report.Exhausted++
		}
		if res.Outcome != OutcomeResolved {
			e.logger.Infof("Artist '%s' not found or data unavailable.", artist)
		}

		e.progress(i+1, len(records))
	}

	return records, report, nil
}

// Lookup resolves one artist, applying the script filter and retry policy.
//
// The returned error is non-nil only when ctx is done.
func (e *Enricher) Lookup(ctx context.Context, artist string) (LookupResult, error) {
	var res LookupResult

	if !IsLatin(artist) {
		e.logger.Infof("Skipping artist '%s' because it contains non-Latin characters.", artist)
		res.Outcome = OutcomeSkipped
		return res, nil
	}

	log := e.logger.WithField("artist", artist)
	backoff := e.backoff(log, &res)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res.Requests++
		r := e.api.ArtistInfo(ctx, artist)
		log.WithFields(logrus.Fields{
			"attempt":     res.Requests,
			"status":      r.Status.String(),
			"status_code": r.StatusCode,
		}).Debug("artist.getinfo response")

		switch r.Status {
		case lastfm.StatusFound:
			res.Outcome = OutcomeResolved
			res.Artist = r.Artist
			return nil
		case lastfm.StatusNotFound:
			log.Warnf("Artist '%s' not found in the response.", artist)
			res.Outcome = OutcomeNotFound
			return nil
		case lastfm.StatusRateLimited:
			log.Warnf("Rate limit reached. Waiting for %s before retrying...", e.opts.Cooldown)
		case lastfm.StatusHTTPError:
			log.Errorf("Error %d while fetching data for artist '%s'.", r.StatusCode, artist)
		default:
			log.Errorf("Request exception for artist '%s': %v", artist, r.Err)
		}

		res.LastErr = r.Err
		if res.LastErr == nil {
			res.LastErr = fmt.Errorf("artist.getinfo: %s", r.Status)
		}
		return retry.RetryableError(res.LastErr)
	})

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		res.Outcome = OutcomeExhausted
		log.Warnf("Giving up on artist '%s' after %d attempts.", artist, res.Requests)
	}

	return res, nil
}

// backoff builds the constant cooldown capped at MaxAttempts requests and
// counts every wait into res.
func (e *Enricher) backoff(log logrus.FieldLogger, res *LookupResult) retry.Backoff {
	cooldown := e.opts.Cooldown
	if cooldown <= 0 {
		cooldown = time.Nanosecond
	}
	base := retry.WithMaxRetries(uint64(e.opts.MaxAttempts-1), retry.NewConstant(cooldown))

	return retry.BackoffFunc(func() (time.Duration, bool) {
		next, stop := base.Next()
		if !stop {
			res.Cooldowns++
			log.Infof("Retrying (%d/%d) after %s...", res.Requests, e.opts.MaxAttempts, next)
		}
		return next, stop
	})
}

func (e *Enricher) progress(done, total int) {
	if e.onProgress != nil {
		e.onProgress(done, total)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
