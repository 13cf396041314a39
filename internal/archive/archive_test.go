package archive

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/handiism/trackid-scraper/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body><ul>
	<li class="BananaDates_listItem__SDPAB"><a href="/tracks/2024-10-31">31 Oct</a></li>
	<li class="BananaDates_listItem__SDPAB"><span>coming soon</span></li>
	<li class="BananaDates_listItem__SDPAB"><a href="/tracks/2024-10-30">30 Oct</a></li>
</ul></body></html>`

const tracksHTML = `<html><body><ul>
	<li class="Tracks_listItem__x1">
		<h3 class="Track_title__a">  Archangel </h3>
		<p class="Track_artist__b">Burial</p>
		<p class="Track_album__c"><span class="Track_label">Album</span><span class="Track_value__d">Untrue</span></p>
		<p class="Track_releaseDate__e"><span class="Track_value__d">5 Nov 2007</span></p>
	</li>
	<li class="Tracks_listItem__x1">
		<p class="Track_artist__b">Four Tet</p>
	</li>
</ul></body></html>`

func testSelectors() Selectors {
	return Selectors{
		ListingItem: "li[class^='BananaDates_listItem']",
		TrackItem:   "li[class^='Tracks_listItem']",
		Title:       "[class^='Track_title']",
		Artist:      "[class^='Track_artist']",
		Album:       "[class^='Track_album'] span[class^='Track_value']",
		ReleaseDate: "p[class^='Track_releaseDate'] span[class^='Track_value']",
	}
}

func testConfig() *Config {
	return &Config{
		BaseURL:     "https://doyoutrackid.com",
		MaxEntries:  1,
		PauseMin:    3000 * time.Millisecond,
		PauseMax:    6000 * time.Millisecond,
		WaitTimeout: time.Second,
		Selectors:   testSelectors(),
	}
}

// fakeBrowser serves canned pages and reports a wait timeout when the
// selector does not match the current page.
type fakeBrowser struct {
	pages   map[string]string
	visited []string
	current string
	navErr  error
	closed  bool
}

func (f *fakeBrowser) Navigate(_ context.Context, url string) error {
	if f.navErr != nil {
		return f.navErr
	}
	f.visited = append(f.visited, url)
	f.current = f.pages[url]
	return nil
}

func (f *fakeBrowser) WaitReady(_ context.Context, selector string, _ time.Duration) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.current))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return ErrWaitTimeout
	}
	return nil
}

func (f *fakeBrowser) HTML(context.Context) (string, error) {
	return f.current, nil
}

func (f *fakeBrowser) Close() error {
	f.closed = true
	return nil
}

func newFakeSite() *fakeBrowser {
	return &fakeBrowser{pages: map[string]string{
		"https://doyoutrackid.com/archive?month=10&year=2024": listingHTML,
		"https://doyoutrackid.com/tracks/2024-10-31":          tracksHTML,
		"https://doyoutrackid.com/tracks/2024-10-30":          tracksHTML,
	}}
}

func TestParseEntryLinks(t *testing.T) {
	logger, hook := test.NewNullLogger()

	links, err := ParseEntryLinks(listingHTML, testSelectors().ListingItem, logger)
	require.NoError(t, err)

	assert.Equal(t, []string{"/tracks/2024-10-31", "/tracks/2024-10-30"}, links)

	var noLink int
	for _, e := range hook.AllEntries() {
		if e.Message == "No link found in this list item." {
			noLink++
		}
	}
	assert.Equal(t, 1, noLink)
}

func TestParseTracks(t *testing.T) {
	records, err := ParseTracks(tracksHTML, testSelectors(), "https://doyoutrackid.com/tracks/2024-10-31")
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Archangel", first.Title)
	assert.Equal(t, "Burial", first.Artist)
	assert.Equal(t, "Untrue", first.Album)
	assert.Equal(t, "5 Nov 2007", first.ReleaseDate)
	assert.Equal(t, "https://doyoutrackid.com/tracks/2024-10-31", first.SourceURL)
	assert.False(t, first.HasGenres())

	second := records[1]
	assert.Equal(t, model.NoTitle, second.Title)
	assert.Equal(t, "Four Tet", second.Artist)
	assert.Equal(t, model.NoAlbum, second.Album)
	assert.Equal(t, model.NoReleaseDate, second.ReleaseDate)
}

func TestParseTracks_BlankElementKeepsEmptyText(t *testing.T) {
	html := `<ul><li class="Tracks_listItem__x1">
		<h3 class="Track_title__a">   </h3>
		<p class="Track_artist__b">Burial</p>
		<p class="Track_album__c"><span class="Track_value__d"></span></p>
	</li></ul>`

	records, err := ParseTracks(html, testSelectors(), "u")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "", records[0].Title)
	assert.Equal(t, "", records[0].Album)
	assert.Equal(t, model.NoReleaseDate, records[0].ReleaseDate)
}

func TestArchiveURL(t *testing.T) {
	assert.Equal(t,
		"https://doyoutrackid.com/archive?month=10&year=2024",
		ArchiveURL("https://doyoutrackid.com/", "10", "2024"))
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/tracks/2024-10-31", "https://doyoutrackid.com/tracks/2024-10-31"},
		{"https://other.example/x", "https://other.example/x"},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			got, err := ResolveURL("https://doyoutrackid.com", tt.href)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectEntries(t *testing.T) {
	links := []string{"a", "b", "c"}
	assert.Equal(t, []string{"a"}, selectEntries(links, 1))
	assert.Equal(t, []string{"a", "b"}, selectEntries(links, 2))
	assert.Equal(t, links, selectEntries(links, 0))
	assert.Equal(t, links, selectEntries(links, 10))
}

func TestRandomPause_Range(t *testing.T) {
	lo, hi := 3000*time.Millisecond, 6000*time.Millisecond
	for i := 0; i < 500; i++ {
		d := randomPause(lo, hi)
		assert.GreaterOrEqual(t, d, lo)
		assert.LessOrEqual(t, d, hi)
		assert.Zero(t, d%time.Millisecond)
	}
	assert.Equal(t, lo, randomPause(lo, lo))
}

func TestScraper_Scrape_DebugDetailsOnlyAtDebugLevel(t *testing.T) {
	countDebug := func(level logrus.Level) int {
		logger, hook := test.NewNullLogger()
		logger.SetLevel(level)
		s := NewScraper(newFakeSite(), testConfig(), logger).WithSleep(func(context.Context, time.Duration) error {
			return nil
		})
		_, err := s.Scrape(context.Background(), "10", "2024")
		require.NoError(t, err)

		n := 0
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.DebugLevel {
				n++
			}
		}
		return n
	}

	assert.Zero(t, countDebug(logrus.InfoLevel))
	assert.Positive(t, countDebug(logrus.DebugLevel))
}

func TestScraper_Scrape_FollowsFirstEntryOnly(t *testing.T) {
	browser := newFakeSite()
	logger, _ := test.NewNullLogger()

	var pauses []time.Duration
	s := NewScraper(browser, testConfig(), logger).WithSleep(func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	})

	records, err := s.Scrape(context.Background(), "10", "2024")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://doyoutrackid.com/archive?month=10&year=2024",
		"https://doyoutrackid.com/tracks/2024-10-31",
	}, browser.visited)
	require.Len(t, records, 2)
	assert.Equal(t, "Archangel", records[0].Title)

	// one pause, only after opening the entry
	require.Len(t, pauses, 1)
	assert.GreaterOrEqual(t, pauses[0], 3000*time.Millisecond)
	assert.LessOrEqual(t, pauses[0], 6000*time.Millisecond)
}

func TestScraper_Scrape_AllEntries(t *testing.T) {
	browser := newFakeSite()
	cfg := testConfig()
	cfg.MaxEntries = 0
	logger, _ := test.NewNullLogger()
	s := NewScraper(browser, cfg, logger).WithSleep(func(context.Context, time.Duration) error { return nil })

	records, err := s.Scrape(context.Background(), "10", "2024")
	require.NoError(t, err)

	assert.Len(t, browser.visited, 3)
	assert.Len(t, records, 4)
	assert.Equal(t, "https://doyoutrackid.com/tracks/2024-10-30", records[3].SourceURL)
}

func TestScraper_Scrape_WaitTimeout(t *testing.T) {
	browser := newFakeSite()
	browser.pages["https://doyoutrackid.com/tracks/2024-10-31"] = `<html><body>Loading...</body></html>`
	logger, _ := test.NewNullLogger()
	s := NewScraper(browser, testConfig(), logger).WithSleep(func(context.Context, time.Duration) error { return nil })

	_, err := s.Scrape(context.Background(), "10", "2024")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWaitTimeout)

	var we *WaitError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, testSelectors().TrackItem, we.Selector)
	assert.Equal(t, "https://doyoutrackid.com/tracks/2024-10-31", we.URL)
}

func TestScraper_Scrape_NoEntries(t *testing.T) {
	browser := newFakeSite()
	browser.pages["https://doyoutrackid.com/archive?month=1&year=1999"] =
		`<ul><li class="BananaDates_listItem__SDPAB">nothing</li></ul>`
	logger, _ := test.NewNullLogger()
	s := NewScraper(browser, testConfig(), logger)

	_, err := s.Scrape(context.Background(), "1", "1999")
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestScraper_Scrape_NavigationError(t *testing.T) {
	browser := newFakeSite()
	browser.navErr = errors.New("net::ERR_NAME_NOT_RESOLVED")
	logger, _ := test.NewNullLogger()
	s := NewScraper(browser, testConfig(), logger)

	_, err := s.Scrape(context.Background(), "10", "2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_NAME_NOT_RESOLVED")
	assert.NotErrorIs(t, err, ErrWaitTimeout)
}

func TestScraper_Scrape_PauseCancelled(t *testing.T) {
	browser := newFakeSite()
	logger, _ := test.NewNullLogger()
	s := NewScraper(browser, testConfig(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Scrape(ctx, "10", "2024")
	assert.ErrorIs(t, err, context.Canceled)
}
