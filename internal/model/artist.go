package model

import "strings"

const (
	// UnknownGenre replaces an empty tag list.
	UnknownGenre = "Unknown genre"

	// UnknownCountry is used when the API reports no country.
	UnknownCountry = "Unknown"
)

// ArtistGenreInfo is the result of one artist metadata lookup.
//
// It is never persisted on its own; the enrichment stage joins Genres and
// copies the string onto the matching TrackRecords.
type ArtistGenreInfo struct {
	// Name is the canonical artist name returned by the API.
	Name string

	// Genres is the ordered tag list. Never empty.
	Genres []string

	// Country is the artist's country, or UnknownCountry.
	Country string
}

// NewArtistGenreInfo creates an ArtistGenreInfo, replacing an empty genre
// list with UnknownGenre and an empty country with UnknownCountry.
func NewArtistGenreInfo(name string, genres []string, country string) *ArtistGenreInfo {
	if len(genres) == 0 {
		genres = []string{UnknownGenre}
	}
	if strings.TrimSpace(country) == "" {
		country = UnknownCountry
	}
	return &ArtistGenreInfo{
		Name:    name,
		Genres:  genres,
		Country: country,
	}
}

// JoinedGenres returns the genres joined with ", ".
func (a *ArtistGenreInfo) JoinedGenres() string {
	return strings.Join(a.Genres, ", ")
}
