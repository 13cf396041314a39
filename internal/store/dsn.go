package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedDSN is returned when no dialect handles the DSN scheme.
var ErrUnsupportedDSN = errors.New("unsupported database location")

// Dialect describes how to talk to one SQL engine.
type Dialect struct {
	// Name is a short label for logs.
	Name string

	// Driver is the database/sql driver name.
	Driver string

	// placeholder returns the bind parameter for 1-based position n.
	placeholder func(n int) string
}

var (
	sqliteDialect = Dialect{
		Name:        "sqlite",
		Driver:      "sqlite3",
		placeholder: func(int) string { return "?" },
	}
	postgresDialect = Dialect{
		Name:        "postgres",
		Driver:      "pgx",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
)

// ResolveDSN maps a database location to a dialect and a driver-level DSN.
//
// Accepted forms:
//   - sqlite:///relative.db, sqlite:////abs/path.db (SQLAlchemy style)
//   - sqlite3://path.db, file:path.db, or a bare path ending in .db/.sqlite
//   - postgres://..., postgresql://..., postgresql+psycopg2://...
//
// Example:
//
//	d, dsn, err := ResolveDSN("sqlite:///tracks.db")
//	// d.Driver == "sqlite3", dsn == "tracks.db"
func ResolveDSN(location string) (Dialect, string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Dialect{}, "", fmt.Errorf("%w: empty", ErrUnsupportedDSN)
	}

	scheme, rest, hasScheme := strings.Cut(location, "://")
	if !hasScheme {
		switch {
		case strings.HasPrefix(location, "file:"):
			return sqliteDialect, location, nil
		case strings.HasSuffix(location, ".db"), strings.HasSuffix(location, ".sqlite"), location == ":memory:":
			return sqliteDialect, location, nil
		}
		return Dialect{}, "", fmt.Errorf("%w: %q", ErrUnsupportedDSN, location)
	}

	// SQLAlchemy allows "dialect+driver://"; only the dialect matters here.
	base, _, _ := strings.Cut(strings.ToLower(scheme), "+")

	switch base {
	case "sqlite":
		// sqlite:///rel.db -> "rel.db", sqlite:////abs.db -> "/abs.db"
		path := strings.TrimPrefix(rest, "/")
		if path == "" {
			path = ":memory:"
		}
		return sqliteDialect, path, nil
	case "sqlite3":
		return sqliteDialect, rest, nil
	case "postgres", "postgresql":
		return postgresDialect, "postgres://" + rest, nil
	}

	return Dialect{}, "", fmt.Errorf("%w: scheme %q", ErrUnsupportedDSN, scheme)
}
