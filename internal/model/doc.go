// Package model defines the core data structures used throughout
// trackid-scraper.
//
// # TrackRecord
//
// TrackRecord is one entry scraped from a doyoutrackid.com tracks page:
//
//	rec := model.NewTrackRecord(title, artist, album, releaseDate, pageURL)
//	fmt.Println(rec.Title, rec.Artist)
//
// Fields the page omits are filled with sentinels such as "No title",
// so a record never carries an empty field because of missing markup.
//
// # ArtistGenreInfo
//
// ArtistGenreInfo is the transient result of a metadata lookup. It is
// consumed right away to annotate every record sharing the artist name:
//
//	info := model.NewArtistGenreInfo("Burial", []string{"dubstep"}, "")
//	n := model.AttachGenres(records, "Burial", info.JoinedGenres())
//	// info.Country == "Unknown"
package model
