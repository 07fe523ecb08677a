package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/contre95/tonegarden/src/music"
)

// GetFileHealth returns the health record for a path, or nil when no
// record exists yet.
func (d *SqliteLibrary) GetFileHealth(ctx context.Context, path string) (*music.FileHealth, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT path, status, error_kind, error_msg, fingerprint, confidence,
			musicbrainz_id, file_size, content_hash, checked_at
		FROM file_health WHERE path = ?
	`, path)

	h, err := scanFileHealth(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// UpsertFileHealth writes a health record, replacing any previous one
// for the same path.
func (d *SqliteLibrary) UpsertFileHealth(ctx context.Context, health *music.FileHealth) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO file_health (path, status, error_kind, error_msg, fingerprint,
			confidence, musicbrainz_id, file_size, content_hash, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			status = excluded.status,
			error_kind = excluded.error_kind,
			error_msg = excluded.error_msg,
			fingerprint = excluded.fingerprint,
			confidence = excluded.confidence,
			musicbrainz_id = excluded.musicbrainz_id,
			file_size = excluded.file_size,
			content_hash = excluded.content_hash,
			checked_at = excluded.checked_at
	`, health.Path, string(health.Status), nullableString(string(health.ErrorKind)),
		nullableString(health.ErrorMsg), nullableString(health.Fingerprint),
		health.Confidence, nullableString(health.RecordingID),
		health.FileSize, nullableString(health.ContentHash),
		health.CheckedAt.UTC().Format(time.RFC3339))
	return err
}

// InvalidateFileHealth drops the record for a path whose content
// changed; the next gardener pass recreates it.
func (d *SqliteLibrary) InvalidateFileHealth(ctx context.Context, path string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM file_health WHERE path = ?`, path)
	return err
}

// ListFileHealth returns health records, optionally filtered by status
// (empty status means all).
func (d *SqliteLibrary) ListFileHealth(ctx context.Context, status music.HealthStatus) ([]music.FileHealth, error) {
	query := `
		SELECT path, status, error_kind, error_msg, fingerprint, confidence,
			musicbrainz_id, file_size, content_hash, checked_at
		FROM file_health`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY path`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []music.FileHealth{}
	for rows.Next() {
		h, err := scanFileHealth(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, *h)
	}
	return records, rows.Err()
}

func scanFileHealth(scan func(dest ...any) error) (*music.FileHealth, error) {
	h := &music.FileHealth{}
	var status string
	var errorKind, errorMsg, fingerprint, mbID, contentHash, checkedAt sql.NullString
	var confidence sql.NullFloat64
	var fileSize sql.NullInt64

	err := scan(&h.Path, &status, &errorKind, &errorMsg, &fingerprint,
		&confidence, &mbID, &fileSize, &contentHash, &checkedAt)
	if err != nil {
		return nil, err
	}

	h.Status = music.HealthStatus(status)
	h.ErrorKind = music.HealthErrorKind(errorKind.String)
	h.ErrorMsg = errorMsg.String
	h.Fingerprint = fingerprint.String
	if confidence.Valid {
		h.Confidence = &confidence.Float64
	}
	h.RecordingID = mbID.String
	h.FileSize = fileSize.Int64
	h.ContentHash = contentHash.String
	if checkedAt.Valid && checkedAt.String != "" {
		if t, parseErr := time.Parse(time.RFC3339, checkedAt.String); parseErr == nil {
			h.CheckedAt = t
		}
	}
	return h, nil
}
