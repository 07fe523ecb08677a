package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/contre95/tonegarden/src/music"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteLibrary is the SQLite implementation of the music.Library and
// music.HealthStore ports.
type SqliteLibrary struct {
	db *sql.DB
}

// NewSqliteLibrary opens (or creates) the index database at path.
func NewSqliteLibrary(path string) (*SqliteLibrary, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Serialize writers; sqlite locks the whole file anyway.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &SqliteLibrary{db: db}, nil
}

// Close closes the underlying database handle.
func (d *SqliteLibrary) Close() error { return d.db.Close() }

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS artists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS albums (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			artist_id INTEGER REFERENCES artists(id),
			year INTEGER,
			UNIQUE(title, artist_id)
		);

		CREATE TABLE IF NOT EXISTS tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			artist_id INTEGER REFERENCES artists(id),
			album_id INTEGER REFERENCES albums(id),
			duration INTEGER,
			track_number INTEGER,
			modified_at TEXT,
			quality_score INTEGER,
			quality_flags INTEGER,
			musicbrainz_id TEXT
		);

		CREATE TABLE IF NOT EXISTS file_health (
			path TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			error_kind TEXT,
			error_msg TEXT,
			fingerprint TEXT,
			confidence REAL,
			musicbrainz_id TEXT,
			file_size INTEGER,
			content_hash TEXT,
			checked_at TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_artist ON tracks(artist_id);
		CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks(album_id);
		CREATE INDEX IF NOT EXISTS idx_tracks_quality ON tracks(quality_score);
		CREATE INDEX IF NOT EXISTS idx_file_health_status ON file_health(status);
	`)
	return err
}

// UpsertTrack inserts a track or, on path conflict, updates the
// existing row in place. Returns the row id either way.
func (d *SqliteLibrary) UpsertTrack(ctx context.Context, meta *music.TrackMetadata, path string, artistID, albumID *int64) (int64, error) {
	meta.EnsureDefaults()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tracks (path, title, artist_id, album_id, duration, track_number, musicbrainz_id, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			artist_id = excluded.artist_id,
			album_id = excluded.album_id,
			duration = excluded.duration,
			track_number = excluded.track_number,
			musicbrainz_id = excluded.musicbrainz_id,
			modified_at = excluded.modified_at
	`, path, meta.Title, artistID, albumID, meta.Duration, nullableInt(meta.TrackNumber),
		nullableString(meta.RecordingID), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM tracks WHERE path = ?`, path).Scan(&id); err != nil {
		return 0, err
	}

	return id, tx.Commit()
}

// GetOrCreateArtist returns the id of the named artist, inserting it
// first if it does not exist.
func (d *SqliteLibrary) GetOrCreateArtist(ctx context.Context, name string) (int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM artists WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		res, insErr := tx.ExecContext(ctx, `INSERT INTO artists (name) VALUES (?)`, name)
		if insErr != nil {
			return 0, insErr
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	return id, tx.Commit()
}

// GetOrCreateAlbum returns the id of the album with the given title
// and artist, inserting it first if it does not exist.
func (d *SqliteLibrary) GetOrCreateAlbum(ctx context.Context, title string, artistID *int64) (int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM albums WHERE title = ? AND artist_id IS ?`, title, artistID).Scan(&id)
	if err == sql.ErrNoRows {
		res, insErr := tx.ExecContext(ctx, `INSERT INTO albums (title, artist_id) VALUES (?, ?)`, title, artistID)
		if insErr != nil {
			return 0, insErr
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	return id, tx.Commit()
}

// GetTrack gets a track row by id. Returns nil when not found.
func (d *SqliteLibrary) GetTrack(ctx context.Context, id int64) (*music.Track, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, path, title, artist_id, album_id, duration, track_number,
			modified_at, quality_score, quality_flags, musicbrainz_id
		FROM tracks WHERE id = ?
	`, id)
	return scanTrack(row)
}

// GetTrackByPath gets a track row by its absolute path. Returns nil
// when not found.
func (d *SqliteLibrary) GetTrackByPath(ctx context.Context, path string) (*music.Track, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, path, title, artist_id, album_id, duration, track_number,
			modified_at, quality_score, quality_flags, musicbrainz_id
		FROM tracks WHERE path = ?
	`, path)
	return scanTrack(row)
}

func scanTrack(row *sql.Row) (*music.Track, error) {
	track := &music.Track{}
	var artistID, albumID, score, flags, trackNum, duration sql.NullInt64
	var modifiedAt, mbID sql.NullString

	err := row.Scan(&track.ID, &track.Path, &track.Title, &artistID, &albumID,
		&duration, &trackNum, &modifiedAt, &score, &flags, &mbID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if artistID.Valid {
		track.ArtistID = &artistID.Int64
	}
	if albumID.Valid {
		track.AlbumID = &albumID.Int64
	}
	track.Duration = int(duration.Int64)
	if trackNum.Valid {
		n := int(trackNum.Int64)
		track.TrackNumber = &n
	}
	if modifiedAt.Valid && modifiedAt.String != "" {
		if t, parseErr := time.Parse(time.RFC3339Nano, modifiedAt.String); parseErr == nil {
			track.ModifiedAt = &t
		}
	}
	if score.Valid {
		s := int(score.Int64)
		track.QualityScore = &s
	}
	if flags.Valid {
		f := music.QualityFlags(uint32(flags.Int64))
		track.QualityFlags = &f
	}
	if mbID.Valid && mbID.String != "" {
		track.RecordingID = &mbID.String
	}
	return track, nil
}

// GetTrackPathsWithMtime returns every indexed path with its recorded
// modification time (nil when never recorded). The reconciler joins
// the filesystem walk against this map.
func (d *SqliteLibrary) GetTrackPathsWithMtime(ctx context.Context) (map[string]*time.Time, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT path, modified_at FROM tracks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string]*time.Time)
	for rows.Next() {
		var path string
		var modifiedAt sql.NullString
		if err := rows.Scan(&path, &modifiedAt); err != nil {
			return nil, err
		}
		if modifiedAt.Valid && modifiedAt.String != "" {
			if t, parseErr := time.Parse(time.RFC3339Nano, modifiedAt.String); parseErr == nil {
				paths[path] = &t
				continue
			}
		}
		paths[path] = nil
	}
	return paths, rows.Err()
}

const trackWithMetadataSelect = `
	SELECT t.id, t.path, t.title,
		COALESCE(ar.name, ''), COALESCE(al.title, ''), al.year,
		t.duration, t.track_number, t.quality_score, t.quality_flags, t.musicbrainz_id
	FROM tracks t
	LEFT JOIN artists ar ON t.artist_id = ar.id
	LEFT JOIN albums al ON t.album_id = al.id
`

// GetAllTracksWithMetadata returns the full presentation join.
func (d *SqliteLibrary) GetAllTracksWithMetadata(ctx context.Context) ([]music.TrackWithMetadata, error) {
	rows, err := d.db.QueryContext(ctx, trackWithMetadataSelect+` ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTracksWithMetadata(rows)
}

// GetTrackWithMetadata returns the presentation row for one track.
// Returns nil when not found.
func (d *SqliteLibrary) GetTrackWithMetadata(ctx context.Context, id int64) (*music.TrackWithMetadata, error) {
	rows, err := d.db.QueryContext(ctx, trackWithMetadataSelect+` WHERE t.id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks, err := scanTracksWithMetadata(rows)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, nil
	}
	return &tracks[0], nil
}

// GetTracksNeedingQualityCheck returns tracks that were never scored,
// oldest first, capped at limit.
func (d *SqliteLibrary) GetTracksNeedingQualityCheck(ctx context.Context, limit int) ([]music.TrackWithMetadata, error) {
	rows, err := d.db.QueryContext(ctx,
		trackWithMetadataSelect+` WHERE t.quality_score IS NULL ORDER BY t.id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTracksWithMetadata(rows)
}

// CountTracksNeedingQualityCheck reports how many tracks still wait
// for a first assessment.
func (d *SqliteLibrary) CountTracksNeedingQualityCheck(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tracks WHERE quality_score IS NULL`).Scan(&n)
	return n, err
}

func scanTracksWithMetadata(rows *sql.Rows) ([]music.TrackWithMetadata, error) {
	tracks := []music.TrackWithMetadata{}
	for rows.Next() {
		var t music.TrackWithMetadata
		var year, trackNum, duration, score, flags sql.NullInt64
		var mbID sql.NullString

		err := rows.Scan(&t.ID, &t.Path, &t.Title, &t.Artist, &t.Album, &year,
			&duration, &trackNum, &score, &flags, &mbID)
		if err != nil {
			return nil, err
		}
		if year.Valid {
			y := int(year.Int64)
			t.Year = &y
		}
		t.Duration = int(duration.Int64)
		if trackNum.Valid {
			n := int(trackNum.Int64)
			t.TrackNumber = &n
		}
		if score.Valid {
			s := int(score.Int64)
			t.QualityScore = &s
		}
		if flags.Valid {
			f := music.QualityFlags(uint32(flags.Int64))
			t.QualityFlags = &f
		}
		if mbID.Valid && mbID.String != "" {
			t.RecordingID = &mbID.String
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// UpdateTrackPath rewrites a track's path after an organize move.
func (d *SqliteLibrary) UpdateTrackPath(ctx context.Context, id int64, newPath string) error {
	res, err := d.db.ExecContext(ctx, `UPDATE tracks SET path = ? WHERE id = ?`, newPath, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("track not found: %d", id)
	}
	return nil
}

// BatchUpdateTrackPaths rewrites many paths in a single transaction.
// The batch is all-or-nothing; the returned count is the number of
// rows that actually matched.
func (d *SqliteLibrary) BatchUpdateTrackPaths(ctx context.Context, updates []music.PathUpdate) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE tracks SET path = ? WHERE id = ?`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	updated := 0
	for _, u := range updates {
		res, err := stmt.ExecContext(ctx, u.NewPath, u.TrackID)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		updated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return updated, nil
}

// UpdateTrackMtime records the filesystem modification time seen by
// the last scan. Stored at nanosecond precision so the scanner's
// equality check against ModTime() holds for unchanged files.
func (d *SqliteLibrary) UpdateTrackMtime(ctx context.Context, path string, mtime time.Time) error {
	_, err := d.db.ExecContext(ctx, `UPDATE tracks SET modified_at = ? WHERE path = ?`,
		mtime.UTC().Format(time.RFC3339Nano), path)
	return err
}

// UpdateTrackQuality persists the score and flags computed by the
// gardener in one statement.
func (d *SqliteLibrary) UpdateTrackQuality(ctx context.Context, id int64, score int, flags music.QualityFlags) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE tracks SET quality_score = ?, quality_flags = ? WHERE id = ?`,
		score, int64(flags), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("track not found: %d", id)
	}
	return nil
}

// DeleteTrackByPath removes the index row for a path that disappeared
// from the filesystem. Deleting a missing row is not an error.
func (d *SqliteLibrary) DeleteTrackByPath(ctx context.Context, path string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM tracks WHERE path = ?`, path)
	if err != nil {
		slog.Error("DeleteTrackByPath failed", "path", path, "error", err)
	}
	return err
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
