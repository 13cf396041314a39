// Package lastfm is a minimal client for the Last.fm artist.getinfo method.
//
// The client performs one request per call and returns a Result whose
// Status tells the caller what happened:
//
//	res := client.ArtistInfo(ctx, "Four Tet")
//	switch {
//	case res.Status == lastfm.StatusFound:
//	    fmt.Println(res.Artist.JoinedGenres()) // "electronic, idm, ..."
//	case res.Status == lastfm.StatusNotFound:
//	    // terminal, do not retry
//	case res.Status.Retryable():
//	    // 429, other non-200, or transport failure
//	}
//
// # Response Shapes
//
// Last.fm is inconsistent about tags: "tags" may be an object or an empty
// string, and "tag" may be an array or a single object. The dto package
// normalizes all of them.
package lastfm
