package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackRecord_Sentinels(t *testing.T) {
	tests := []struct {
		name  string
		rec   *TrackRecord
		check func(t *testing.T, rec *TrackRecord)
	}{
		{
			name: "missing title",
			rec:  NewTrackRecord("", "Artist", "Album", "1 Jan 2024", "https://example.com"),
			check: func(t *testing.T, rec *TrackRecord) {
				assert.Equal(t, NoTitle, rec.Title)
				assert.Equal(t, "Artist", rec.Artist)
			},
		},
		{
			name: "all missing",
			rec:  NewTrackRecord("", "  ", "", "", ""),
			check: func(t *testing.T, rec *TrackRecord) {
				assert.Equal(t, NoTitle, rec.Title)
				assert.Equal(t, NoArtist, rec.Artist)
				assert.Equal(t, NoAlbum, rec.Album)
				assert.Equal(t, NoReleaseDate, rec.ReleaseDate)
			},
		},
		{
			name: "values trimmed",
			rec:  NewTrackRecord(" Song \n", "Artist", "Album", "2024", ""),
			check: func(t *testing.T, rec *TrackRecord) {
				assert.Equal(t, "Song", rec.Title)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.rec)
			assert.False(t, tt.rec.HasGenres())
		})
	}
}

func TestAttachGenres_ByName(t *testing.T) {
	records := []*TrackRecord{
		NewTrackRecord("One", "Burial", "A", "2024", ""),
		NewTrackRecord("Two", "Four Tet", "B", "2024", ""),
		NewTrackRecord("Three", "Burial", "C", "2024", ""),
	}

	n := AttachGenres(records, "Burial", "dubstep, electronic")

	assert.Equal(t, 2, n)
	require.True(t, records[0].HasGenres())
	require.True(t, records[2].HasGenres())
	assert.Equal(t, *records[0].Genres, *records[2].Genres)
	assert.Equal(t, "dubstep, electronic", records[2].GenresOrEmpty())
	assert.False(t, records[1].HasGenres())
	assert.Equal(t, "", records[1].GenresOrEmpty())
}

func TestNewArtistGenreInfo_Defaults(t *testing.T) {
	info := NewArtistGenreInfo("Burial", nil, "")
	assert.Equal(t, []string{UnknownGenre}, info.Genres)
	assert.Equal(t, UnknownCountry, info.Country)
	assert.Equal(t, UnknownGenre, info.JoinedGenres())

	info = NewArtistGenreInfo("Burial", []string{"rock", "pop"}, "UK")
	assert.Equal(t, "rock, pop", info.JoinedGenres())
	assert.Equal(t, "UK", info.Country)
}
