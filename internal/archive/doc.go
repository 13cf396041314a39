// Package archive scrapes track listings from the doyoutrackid.com archive.
//
// The package handles two page types:
//
//  1. The archive listing for a month/year, which links to dated entries
//  2. A tracks page, which lists the identified tracks of one entry
//
// # Scraping
//
// Scraper drives a Browser through both pages:
//
//	browser, err := archive.NewChromeBrowser(ctx, archive.ChromeOptions{Headless: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer browser.Close()
//
//	s := archive.NewScraper(browser, cfg, logger)
//	records, err := s.Scrape(ctx, "10", "2024")
//
// By default only the first entry of the listing is followed; set
// Config.MaxEntries to follow more.
//
// # Parsing
//
// ParseEntryLinks and ParseTracks work on plain HTML strings with goquery,
// so they can be used without a browser:
//
//	records, err := archive.ParseTracks(html, selectors, pageURL)
//
// # Timeouts
//
// Every wait for page elements is bounded by Config.WaitTimeout. On expiry
// the scrape fails with a *WaitError that matches ErrWaitTimeout.
package archive
