package dto

import (
	"bytes"
	"encoding/json"

	"github.com/handiism/trackid-scraper/internal/model"
)

// JSONArtistInfo is the body of an artist.getinfo response.
//
// Artist is nil when the API answers without an "artist" key, which
// happens for unknown artists.
type JSONArtistInfo struct {
	Artist  *JSONArtist `json:"artist"`
	Error   int         `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// JSONArtist represents the artist object.
type JSONArtist struct {
	Name    string    `json:"name"`
	Country string    `json:"country"`
	Tags    *JSONTags `json:"tags"`
}

// JSONTags wraps the tag list.
//
// Last.fm sends "tags": "" for artists without tags, so the type accepts
// both an object and a string.
type JSONTags struct {
	Tag JSONTagList `json:"tag"`
}

// UnmarshalJSON accepts an object or any scalar (treated as no tags).
func (t *JSONTags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		t.Tag = nil
		return nil
	}
	type plain JSONTags
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = JSONTags(p)
	return nil
}

// JSONTag is one tag entry.
type JSONTag struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// JSONTagList is a list of tags that also decodes from a single object,
// which Last.fm sends when there is exactly one tag.
type JSONTagList []JSONTag

// UnmarshalJSON accepts an array, a single object or null.
func (l *JSONTagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case data[0] == '{':
		var single JSONTag
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = JSONTagList{single}
		return nil
	}
	var many []JSONTag
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// ToArtistGenreInfo converts JSONArtist to a model.ArtistGenreInfo.
//
// Tags keep their API order; empty tag names are dropped.
func (ja *JSONArtist) ToArtistGenreInfo() *model.ArtistGenreInfo {
	var genres []string
	if ja.Tags != nil {
		for _, tag := range ja.Tags.Tag {
			if tag.Name != "" {
				genres = append(genres, tag.Name)
			}
		}
	}
	return model.NewArtistGenreInfo(ja.Name, genres, ja.Country)
}
