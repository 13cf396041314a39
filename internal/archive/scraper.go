package archive

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/handiism/trackid-scraper/internal/model"
	"github.com/sirupsen/logrus"
)

// Config holds scraper settings.
type Config struct {
	// BaseURL is the site root, e.g. "https://doyoutrackid.com".
	BaseURL string

	// MaxEntries is how many archive entries to follow, in page order.
	// Values <= 0 follow every entry.
	MaxEntries int

	// PauseMin and PauseMax bound the random pause after opening an entry.
	PauseMin time.Duration
	PauseMax time.Duration

	// WaitTimeout bounds every wait for page elements.
	WaitTimeout time.Duration

	Selectors Selectors
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Scraper extracts track records from the doyoutrackid.com archive.
//
// A scrape works in two steps:
//  1. Load the archive listing for a month/year and collect entry links
//  2. Open each selected entry, pause like a human would and read its tracks
//
// Example usage:
//
//	s := NewScraper(browser, cfg, logger)
//	records, err := s.Scrape(ctx, "10", "2024")
//	if errors.Is(err, ErrWaitTimeout) {
//	    // the page never rendered the expected list
//	}
type Scraper struct {
	browser Browser
	cfg     Config
	logger  logrus.FieldLogger
	sleep   SleepFunc
	jitter  func(lo, hi time.Duration) time.Duration
}

// NewScraper creates a new Scraper using browser for all page loads.
func NewScraper(browser Browser, cfg *Config, logger logrus.FieldLogger) *Scraper {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scraper{
		browser: browser,
		cfg:     *cfg,
		logger:  logger,
		sleep:   sleepContext,
		jitter:  randomPause,
	}
}

// WithSleep replaces the pause implementation. Used by tests.
func (s *Scraper) WithSleep(sleep SleepFunc) *Scraper {
	s.sleep = sleep
	return s
}

// Scrape returns the track records of the selected archive entries for
// month/year, in page order.
//
// Neither month nor year is validated. Missing fields inside a track item
// produce sentinel values; navigation failures and wait timeouts abort the
// scrape and are returned.
func (s *Scraper) Scrape(ctx context.Context, month, year string) ([]*model.TrackRecord, error) {
	links, err := s.EntryLinks(ctx, month, year)
	if err != nil {
		return nil, err
	}

	selected := selectEntries(links, s.cfg.MaxEntries)
	s.logger.Debugf("Listing has %d entries, following %d", len(links), len(selected))

	var records []*model.TrackRecord
	for _, href := range selected {
		entryURL, err := ResolveURL(s.cfg.BaseURL, href)
		if err != nil {
			return nil, err
		}

		tracks, err := s.scrapeEntry(ctx, entryURL)
		if err != nil {
			return nil, err
		}
		records = append(records, tracks...)
	}

	return records, nil
}

// EntryLinks loads the archive listing and returns every entry link.
//
// Returns ErrNoEntries if the listing has items but none carry a link.
func (s *Scraper) EntryLinks(ctx context.Context, month, year string) ([]string, error) {
	listingURL := ArchiveURL(s.cfg.BaseURL, month, year)

	html, err := s.load(ctx, listingURL, s.cfg.Selectors.ListingItem)
	if err != nil {
		return nil, err
	}

	links, err := ParseEntryLinks(html, s.cfg.Selectors.ListingItem, s.logger)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("%s: %w", listingURL, ErrNoEntries)
	}
	return links, nil
}

func (s *Scraper) scrapeEntry(ctx context.Context, entryURL string) ([]*model.TrackRecord, error) {
	s.logger.Infof("Navigating to: %s", entryURL)
	if err := s.browser.Navigate(ctx, entryURL); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", entryURL, err)
	}

	pause := s.jitter(s.cfg.PauseMin, s.cfg.PauseMax)
	s.logger.Infof("wait for timeout %d", pause.Milliseconds())
	if err := s.sleep(ctx, pause); err != nil {
		return nil, err
	}

	html, err := s.waitAndRead(ctx, entryURL, s.cfg.Selectors.TrackItem)
	if err != nil {
		return nil, err
	}

	records, err := ParseTracks(html, s.cfg.Selectors, entryURL)
	if err != nil {
		return nil, err
	}

	s.logger.Debugf("Found %d track items on %s", len(records), entryURL)
	for _, rec := range records {
		s.logger.WithFields(logrus.Fields{
			"title":        rec.Title,
			"artist":       rec.Artist,
			"album":        rec.Album,
			"release_date": rec.ReleaseDate,
			"url":          rec.SourceURL,
		}).Info("Extracted track")
	}

	return records, nil
}

// load navigates to pageURL, waits for selector and returns the HTML.
func (s *Scraper) load(ctx context.Context, pageURL, selector string) (string, error) {
	if err := s.browser.Navigate(ctx, pageURL); err != nil {
		return "", fmt.Errorf("navigate to %s: %w", pageURL, err)
	}
	return s.waitAndRead(ctx, pageURL, selector)
}

func (s *Scraper) waitAndRead(ctx context.Context, pageURL, selector string) (string, error) {
	s.logger.Debugf("Waiting up to %s for %q", s.cfg.WaitTimeout, selector)
	if err := s.browser.WaitReady(ctx, selector, s.cfg.WaitTimeout); err != nil {
		return "", &WaitError{Selector: selector, URL: pageURL, Err: err}
	}
	html, err := s.browser.HTML(ctx)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	return html, nil
}

// ArchiveURL builds the listing URL for month/year.
//
// Example:
//
//	ArchiveURL("https://doyoutrackid.com", "10", "2024")
//	// "https://doyoutrackid.com/archive?month=10&year=2024"
func ArchiveURL(baseURL, month, year string) string {
	q := url.Values{"month": {month}, "year": {year}}
	return strings.TrimRight(baseURL, "/") + "/archive?" + q.Encode()
}

// ResolveURL resolves a site-relative href against baseURL. Absolute hrefs
// are returned unchanged.
func ResolveURL(baseURL, href string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse entry link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// selectEntries keeps the first limit links; limit <= 0 keeps all.
func selectEntries(links []string, limit int) []string {
	if limit <= 0 || limit >= len(links) {
		return links
	}
	return links[:limit]
}

// randomPause returns a duration uniformly drawn from [lo, hi] at
// millisecond granularity.
func randomPause(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	span := int64((hi - lo) / time.Millisecond)
	return lo + time.Duration(rand.Int63n(span+1))*time.Millisecond
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
