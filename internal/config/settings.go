package config

import (
	"os"
	"strings"
	"time"

	"github.com/handiism/trackid-scraper/internal/archive"
	"github.com/handiism/trackid-scraper/internal/enrich"
	httpclient "github.com/handiism/trackid-scraper/internal/http"
	ioutils "github.com/handiism/trackid-scraper/internal/io"
	"github.com/handiism/trackid-scraper/internal/lastfm"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Environment variables that override file settings.
const (
	EnvAPIKey           = "API_KEY"
	EnvDatabaseLocation = "DATABASE_LOCATION"
)

// Settings holds all configuration options.
type Settings struct {
	Site     SiteSettings     `yaml:"site"`
	LastFM   LastFMSettings   `yaml:"lastfm"`
	Database DatabaseSettings `yaml:"database"`
	Log      LogSettings      `yaml:"log"`
}

// SiteSettings controls the archive scraper.
type SiteSettings struct {
	BaseURL     string        `yaml:"base_url"`
	MaxEntries  int           `yaml:"max_entries"` // <= 0 follows every entry
	PauseMin    time.Duration `yaml:"pause_min"`
	PauseMax    time.Duration `yaml:"pause_max"`
	WaitTimeout time.Duration `yaml:"wait_timeout"`
	Headless    bool          `yaml:"headless"`
	Selectors   Selectors     `yaml:"selectors"`
}

// Selectors are the CSS selectors used to read the site's pages.
type Selectors struct {
	ListingItem string `yaml:"listing_item"`
	TrackItem   string `yaml:"track_item"`
	Title       string `yaml:"title"`
	Artist      string `yaml:"artist"`
	Album       string `yaml:"album"`
	ReleaseDate string `yaml:"release_date"`
}

// LastFMSettings controls the genre enrichment stage.
type LastFMSettings struct {
	Endpoint       string        `yaml:"endpoint"`
	APIKey         string        `yaml:"api_key"`
	Pacing         time.Duration `yaml:"pacing"`
	Cooldown       time.Duration `yaml:"cooldown"`
	MaxAttempts    int           `yaml:"max_attempts"`
	DedupeArtists  bool          `yaml:"dedupe_artists"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DatabaseSettings controls the persistence sink.
type DatabaseSettings struct {
	DSN                string `yaml:"dsn"`
	Table              string `yaml:"table"`
	FailOnPersistError bool   `yaml:"fail_on_persist_error"`
}

// LogSettings controls logrus output.
type LogSettings struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty disables the log file
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Site: SiteSettings{
			BaseURL:     "https://doyoutrackid.com",
			MaxEntries:  1,
			PauseMin:    3000 * time.Millisecond,
			PauseMax:    6000 * time.Millisecond,
			WaitTimeout: 30 * time.Second,
			Headless:    true,
			Selectors: Selectors{
				ListingItem: "li[class^='BananaDates_listItem']",
				TrackItem:   "li[class^='Tracks_listItem']",
				Title:       "[class^='Track_title']",
				Artist:      "[class^='Track_artist']",
				Album:       "[class^='Track_album'] span[class^='Track_value']",
				ReleaseDate: "p[class^='Track_releaseDate'] span[class^='Track_value']",
			},
		},
		LastFM: LastFMSettings{
			Endpoint:       "http://ws.audioscrobbler.com/2.0/",
			Pacing:         time.Second,
			Cooldown:       300 * time.Second,
			MaxAttempts:    5,
			RequestTimeout: 60 * time.Second,
		},
		Database: DatabaseSettings{
			Table: "tracks_table_with_genres",
		},
		Log: LogSettings{
			Level: "info",
			File:  "artist_info.log",
		},
	}
}

// Load reads settings from a YAML file and applies environment overrides.
//
// A missing file is not an error: defaults are used instead. A .env file in
// the working directory, if present, is loaded before the environment is read.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, settings); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	// godotenv never overrides variables that are already set.
	_ = godotenv.Load()
	settings.ApplyEnv(os.LookupEnv)

	return settings, nil
}

// ApplyEnv overrides the API key and database DSN from the environment.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		s.LastFM.APIKey = v
	}
	if v, ok := lookup(EnvDatabaseLocation); ok && v != "" {
		s.Database.DSN = v
	}
}

// Save writes settings to a YAML file.
//
// The API key and database location are left out; they are read from
// API_KEY and DATABASE_LOCATION instead.
func (s *Settings) Save(path string) error {
	if err := ioutils.EnsureParentDir(path); err != nil {
		return err
	}

	out := *s
	out.LastFM.APIKey = ""
	out.Database.DSN = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Redacted returns a copy safe for logging, with the API key masked and
// credentials stripped from the DSN.
func (s *Settings) Redacted() Settings {
	out := *s
	if out.LastFM.APIKey != "" {
		out.LastFM.APIKey = "********"
	}
	out.Database.DSN = redactDSN(out.Database.DSN)
	return out
}

func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	at := strings.LastIndex(rest, "@")
	if at == -1 {
		return dsn
	}
	return scheme + "://****@" + rest[at+1:]
}

// ToArchiveConfig converts settings to archive.Config.
func (s *Settings) ToArchiveConfig() *archive.Config {
	sel := s.Site.Selectors
	return &archive.Config{
		BaseURL:     s.Site.BaseURL,
		MaxEntries:  s.Site.MaxEntries,
		PauseMin:    s.Site.PauseMin,
		PauseMax:    s.Site.PauseMax,
		WaitTimeout: s.Site.WaitTimeout,
		Selectors: archive.Selectors{
			ListingItem: sel.ListingItem,
			TrackItem:   sel.TrackItem,
			Title:       sel.Title,
			Artist:      sel.Artist,
			Album:       sel.Album,
			ReleaseDate: sel.ReleaseDate,
		},
	}
}

// ToChromeOptions converts settings to archive.ChromeOptions.
func (s *Settings) ToChromeOptions() archive.ChromeOptions {
	return archive.ChromeOptions{
		Headless: s.Site.Headless,
	}
}

// ToLastFMConfig converts settings to lastfm.Config with a fresh HTTP client.
func (s *Settings) ToLastFMConfig() lastfm.Config {
	return lastfm.Config{
		Endpoint:   s.LastFM.Endpoint,
		APIKey:     s.LastFM.APIKey,
		HTTPClient: httpclient.NewClient(s.LastFM.RequestTimeout),
	}
}

// ToEnrichOptions converts settings to enrich.Options.
func (s *Settings) ToEnrichOptions() enrich.Options {
	return enrich.Options{
		Pacing:        s.LastFM.Pacing,
		Cooldown:      s.LastFM.Cooldown,
		MaxAttempts:   s.LastFM.MaxAttempts,
		DedupeArtists: s.LastFM.DedupeArtists,
	}
}
