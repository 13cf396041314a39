// Package store persists enriched track records to a SQL database.
//
// # Supported Databases
//
// The database location uses URL-style DSNs, so the same value works as
// DATABASE_LOCATION for both engines:
//
//	sqlite:///tracks.db                      // github.com/mattn/go-sqlite3
//	postgresql://user:pw@localhost/trackid   // github.com/jackc/pgx/v4/stdlib
//
// # Replace Semantics
//
// Sink.Replace drops and recreates the table on every call and writes the
// full record set in one transaction. There is no append mode, no upsert
// and no history.
package store
