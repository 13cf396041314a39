// Package enrich attaches genre tags from Last.fm to scraped track records.
//
// # Pipeline Position
//
// Enrichment runs after scraping and before persistence:
//
//	e := enrich.NewEnricher(client, opts, logger)
//	records, report, err := e.Enrich(ctx, records)
//	logger.Infof("resolved %d of %d lookups", report.Resolved, report.Lookups)
//
// # Script Filter
//
// Only names written in Latin script are looked up. IsLatin checks every
// letter against a policy table of allowed Unicode scripts and fails
// closed for anything else.
//
// # Retry Policy
//
// Each lookup makes at most Options.MaxAttempts requests. Rate limits,
// other non-200 statuses and transport failures wait Options.Cooldown and
// try again; an answer without an artist is final. The policy is built on
// github.com/sethvargo/go-retry with a constant backoff.
package enrich
