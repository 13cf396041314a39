package model

import "strings"

// Placeholders used when a tracks page omits a field.
const (
	NoTitle       = "No title"
	NoArtist      = "No artist"
	NoAlbum       = "No album"
	NoReleaseDate = "No release date"
)

// TrackRecord represents a single track entry scraped from a tracks page.
//
// TrackRecord contains:
//   - Title, artist and album as displayed on the page
//   - Release date as free text (it is never parsed)
//   - The URL of the tracks page the entry was read from
//   - Genres, filled in by the enrichment stage
//
// Genres is nil until the artist has been resolved. Records are matched to
// lookups by artist name, so every record of the same artist ends up with
// the same genre string.
type TrackRecord struct {
	// Title is the track title.
	Title string

	// Artist is the artist name as shown on the page.
	Artist string

	// Album is the album or release name.
	Album string

	// ReleaseDate is the release date text, e.g. "12 Oct 2024".
	ReleaseDate string

	// SourceURL is the tracks page the record was scraped from.
	SourceURL string

	// Genres is the comma-space joined tag list, or nil when unresolved.
	Genres *string
}

// NewTrackRecord creates a TrackRecord, substituting the sentinel
// placeholder for every empty field.
func NewTrackRecord(title, artist, album, releaseDate, sourceURL string) *TrackRecord {
	return &TrackRecord{
		Title:       orDefault(title, NoTitle),
		Artist:      orDefault(artist, NoArtist),
		Album:       orDefault(album, NoAlbum),
		ReleaseDate: orDefault(releaseDate, NoReleaseDate),
		SourceURL:   sourceURL,
	}
}

// SetGenres stores the joined genre string on the record.
func (t *TrackRecord) SetGenres(genres string) {
	t.Genres = &genres
}

// HasGenres reports whether the record has been enriched.
func (t *TrackRecord) HasGenres() bool {
	return t.Genres != nil
}

// GenresOrEmpty returns the genre string, or "" when unresolved.
func (t *TrackRecord) GenresOrEmpty() string {
	if t.Genres == nil {
		return ""
	}
	return *t.Genres
}

// AttachGenres sets genres on every record whose Artist equals artist and
// returns how many records were updated.
func AttachGenres(records []*TrackRecord, artist, genres string) int {
	updated := 0
	for _, rec := range records {
		if rec.Artist == artist {
			rec.SetGenres(genres)
			updated++
		}
	}
	return updated
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
