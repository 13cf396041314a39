package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/handiism/trackid-scraper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDSN(t *testing.T) {
	tests := []struct {
		location   string
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{location: "sqlite:///tracks.db", wantDriver: "sqlite3", wantDSN: "tracks.db"},
		{location: "sqlite:////var/lib/tracks.db", wantDriver: "sqlite3", wantDSN: "/var/lib/tracks.db"},
		{location: "sqlite://", wantDriver: "sqlite3", wantDSN: ":memory:"},
		{location: "sqlite3://data/tracks.db", wantDriver: "sqlite3", wantDSN: "data/tracks.db"},
		{location: "file:tracks.db?cache=shared", wantDriver: "sqlite3", wantDSN: "file:tracks.db?cache=shared"},
		{location: "tracks.sqlite", wantDriver: "sqlite3", wantDSN: "tracks.sqlite"},
		{location: "postgres://u:p@db:5432/x", wantDriver: "pgx", wantDSN: "postgres://u:p@db:5432/x"},
		{location: "postgresql://u:p@db/x", wantDriver: "pgx", wantDSN: "postgres://u:p@db/x"},
		{location: "postgresql+psycopg2://u@db/x", wantDriver: "pgx", wantDSN: "postgres://u@db/x"},
		{location: "mysql://u@db/x", wantErr: true},
		{location: "", wantErr: true},
		{location: "not a dsn", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			d, dsn, err := ResolveDSN(tt.location)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedDSN)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, d.Driver)
			assert.Equal(t, tt.wantDSN, dsn)
		})
	}
}

func TestInsertSQL_Placeholders(t *testing.T) {
	pg := NewSink(nil, postgresDialect, "t")
	assert.Equal(t,
		`INSERT INTO "t" ("index", "Title", "Artist", "Album", "Release_Date", "URL", "Genres") VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pg.insertSQL())

	lite := NewSink(nil, sqliteDialect, "")
	assert.Equal(t, DefaultTable, lite.Table())
	assert.Contains(t, lite.insertSQL(), "VALUES (?, ?, ?, ?, ?, ?, ?)")
}

func testRecords() []*model.TrackRecord {
	a := model.NewTrackRecord("Archangel", "Burial", "Untrue", "5 Nov 2007", "https://doyoutrackid.com/tracks/1")
	a.SetGenres("dubstep, electronic")
	b := model.NewTrackRecord("", "Кино", "", "", "https://doyoutrackid.com/tracks/1")
	return []*model.TrackRecord{a, b}
}

func openTestSink(t *testing.T) *Sink {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracks.db")
	sink, err := Open("sqlite:///"+path, "tracks_test")
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestSink_ReplaceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sink := openTestSink(t)
	records := testRecords()

	require.NoError(t, sink.Replace(ctx, records))
	require.NoError(t, sink.Replace(ctx, records))

	n, err := sink.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(records), n)
}

func TestSink_ReplaceOverwrites(t *testing.T) {
	ctx := context.Background()
	sink := openTestSink(t)

	require.NoError(t, sink.Replace(ctx, testRecords()))
	require.NoError(t, sink.Replace(ctx, testRecords()[:1]))

	got, err := readAll(ctx, sink)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Archangel", got[0].Title)
}

func TestSink_RoundTrip(t *testing.T) {
	ctx := context.Background()
	sink := openTestSink(t)

	require.NoError(t, sink.Replace(ctx, testRecords()))

	got, err := readAll(ctx, sink)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "dubstep, electronic", got[0].GenresOrEmpty())
	assert.Equal(t, "https://doyoutrackid.com/tracks/1", got[0].SourceURL)
	assert.Equal(t, model.NoTitle, got[1].Title)
	assert.False(t, got[1].HasGenres(), "unenriched rows store NULL")
}

func TestSink_ReplaceEmpty(t *testing.T) {
	ctx := context.Background()
	sink := openTestSink(t)

	require.NoError(t, sink.Replace(ctx, testRecords()))
	require.NoError(t, sink.Replace(ctx, nil))

	n, err := sink.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSink_ReplaceFailsOnClosedDB(t *testing.T) {
	sink := openTestSink(t)
	require.NoError(t, sink.Close())

	err := sink.Replace(context.Background(), testRecords())
	assert.Error(t, err)
}

func TestSqliteFile(t *testing.T) {
	assert.Equal(t, "data/tracks.db", sqliteFile("data/tracks.db"))
	assert.Equal(t, "tracks.db", sqliteFile("file:tracks.db?cache=shared"))
	assert.Equal(t, "", sqliteFile(":memory:"))
}

func TestOpen_CreatesDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "tracks.db")

	sink, err := Open("sqlite:///"+path, "")
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Replace(ctx, testRecords()))
	assert.FileExists(t, path)
	assert.Equal(t, DefaultTable, sink.Table())
}

// readAll reads the table back in index order.
func readAll(ctx context.Context, s *Sink) ([]*model.TrackRecord, error) {
	query := fmt.Sprintf(`SELECT "Title", "Artist", "Album", "Release_Date", "URL", "Genres" FROM %s ORDER BY "index"`, quoteIdent(s.table))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*model.TrackRecord
	for rows.Next() {
		rec := &model.TrackRecord{}
		var genres sql.NullString
		if err := rows.Scan(&rec.Title, &rec.Artist, &rec.Album, &rec.ReleaseDate, &rec.SourceURL, &genres); err != nil {
			return nil, err
		}
		if genres.Valid {
			rec.SetGenres(genres.String)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func TestSink_FailedReplaceRollsBack(t *testing.T) {
	ctx := context.Background()
	sink := openTestSink(t)

	require.NoError(t, sink.Replace(ctx, testRecords()))

	// Take the index name so CREATE INDEX fails inside the transaction.
	_, err := sink.db.ExecContext(ctx, `CREATE TABLE "ix_tracks_test_index" (x INTEGER)`)
	require.NoError(t, err)

	err = sink.Replace(ctx, testRecords()[:1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prepare table tracks_test")

	n, err := sink.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "previous table survives the failed write")
}
