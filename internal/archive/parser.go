package archive

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/handiism/trackid-scraper/internal/model"
	"github.com/sirupsen/logrus"
)

// Selectors are the CSS selectors used to read listing and tracks pages.
//
// The site uses hashed CSS module class names such as
// "Tracks_listItem__a1b2c", so the defaults match on the class prefix:
//
//	li[class^='Tracks_listItem']
type Selectors struct {
	// ListingItem matches one dated entry on the archive listing page.
	ListingItem string

	// TrackItem matches one track on a tracks page.
	TrackItem string

	// Title, Artist, Album and ReleaseDate are evaluated inside a TrackItem.
	Title       string
	Artist      string
	Album       string
	ReleaseDate string
}

// ParseEntryLinks extracts the href of the first anchor in every listing item.
//
// Items without an anchor, or whose anchor has no href, are logged and
// skipped. Links keep page order.
//
// Example:
//
//	links, err := ParseEntryLinks(html, "li[class^='BananaDates_listItem']", logger)
//	// links = []string{"/tracks/2024-10-31", "/tracks/2024-10-30", ...}
func ParseEntryLinks(html, itemSelector string, logger logrus.FieldLogger) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	var links []string
	doc.Find(itemSelector).Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Find("a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			logger.Info("No link found in this list item.")
			return
		}
		href = strings.TrimSpace(href)
		logger.Infof("Link: %s", href)
		links = append(links, href)
	})

	return links, nil
}

// ParseTracks extracts one TrackRecord per track item, in page order.
//
// A field whose selector matches nothing gets its sentinel placeholder
// (see model.NoTitle and friends). A matching element with blank text is
// stored as "". sourceURL is stored on every record.
//
// Example:
//
//	records, err := ParseTracks(html, selectors, "https://doyoutrackid.com/tracks/2024-10-31")
//	for _, r := range records {
//	    fmt.Printf("%s - %s\n", r.Artist, r.Title)
//	}
func ParseTracks(html string, sel Selectors, sourceURL string) ([]*model.TrackRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse tracks page: %w", err)
	}

	var records []*model.TrackRecord
	doc.Find(sel.TrackItem).Each(func(_ int, item *goquery.Selection) {
		records = append(records, &model.TrackRecord{
			Title:       textOr(item, sel.Title, model.NoTitle),
			Artist:      textOr(item, sel.Artist, model.NoArtist),
			Album:       textOr(item, sel.Album, model.NoAlbum),
			ReleaseDate: textOr(item, sel.ReleaseDate, model.NoReleaseDate),
			SourceURL:   sourceURL,
		})
	})

	return records, nil
}

// textOr returns the trimmed text of the first match, or missing when
// nothing matches.
func textOr(item *goquery.Selection, selector, missing string) string {
	if selector == "" {
		return missing
	}
	match := item.Find(selector).First()
	if match.Length() == 0 {
		return missing
	}
	return strings.TrimSpace(match.Text())
}
