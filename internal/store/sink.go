package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	ioutils "github.com/handiism/trackid-scraper/internal/io"
	"github.com/handiism/trackid-scraper/internal/model"
	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "tracks_table_with_genres"

// columns in table order; "index" is the 0-based row position.
var columns = []string{"index", "Title", "Artist", "Album", "Release_Date", "URL", "Genres"}

// Sink writes enriched track records to a relational table.
//
// Every Replace drops and recreates the table, so the table always holds
// exactly the last written record set.
//
// Example usage:
//
//	sink, err := store.Open("sqlite:///tracks.db", "tracks_table_with_genres")
//	if err != nil {
//	    return err
//	}
//	defer sink.Close()
//
//	err = sink.Replace(ctx, records)
type Sink struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

// Open connects to the database described by location.
//
// The connection is opened lazily by database/sql, so an unreachable
// server surfaces on the first Replace rather than here.
func Open(location, table string) (*Sink, error) {
	dialect, dsn, err := ResolveDSN(location)
	if err != nil {
		return nil, err
	}
	if dialect.Driver == sqliteDialect.Driver {
		if err := ioutils.EnsureParentDir(sqliteFile(dsn)); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect.Name, err)
	}
	return NewSink(db, dialect, table), nil
}

// NewSink wraps an existing database handle.
func NewSink(db *sql.DB, dialect Dialect, table string) *Sink {
	if table == "" {
		table = DefaultTable
	}
	return &Sink{db: db, dialect: dialect, table: table}
}

// Table returns the target table name.
func (s *Sink) Table() string {
	return s.table
}

// Close releases the database handle.
func (s *Sink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Replace overwrites the table with records inside one transaction.
//
// Records are written with their slice position in the "index" column.
// Genres is NULL for records that were never enriched.
func (s *Sink) Replace(ctx context.Context, records []*model.TrackRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := s.replaceTx(ctx, tx, records); err != nil {
		return multierr.Append(err, tx.Rollback())
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Sink) replaceTx(ctx context.Context, tx *sql.Tx, records []*model.TrackRecord) error {
	table := quoteIdent(s.table)

	stmts := []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", table),
		fmt.Sprintf(`CREATE TABLE %s (
			"index" BIGINT,
			"Title" TEXT,
			"Artist" TEXT,
			"Album" TEXT,
			"Release_Date" TEXT,
			"URL" TEXT,
			"Genres" TEXT
		)`, table),
		fmt.Sprintf(`CREATE INDEX %s ON %s ("index")`, quoteIdent("ix_"+s.table+"_index"), table),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("prepare table %s: %w", s.table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, s.insertSQL())
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		var genres sql.NullString
		if rec.HasGenres() {
			genres = sql.NullString{String: *rec.Genres, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, rec.Title, rec.Artist, rec.Album, rec.ReleaseDate, rec.SourceURL, genres); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return nil
}

// Count returns the number of rows in the table.
func (s *Sink) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(s.table))).Scan(&n)
	return n, err
}

func (s *Sink) insertSQL() string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		params[i] = s.dialect.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(s.table), strings.Join(quoted, ", "), strings.Join(params, ", "))
}

// sqliteFile returns the file path of a go-sqlite3 DSN, or "" for
// in-memory databases.
func sqliteFile(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	path, _, _ = strings.Cut(path, "?")
	if path == ":memory:" {
		return ""
	}
	return path
}

// quoteIdent double-quotes an identifier, valid for both sqlite and postgres.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
