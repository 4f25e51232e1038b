package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"prompter/internal/store"
)

const recordingColumns = `id, owner_id, script_id, file_name, mime_type, size_bytes, duration_seconds, storage_path, created_at`

func (c *Client) CreateRecording(ctx context.Context, in store.RecordingInput) (*store.Recording, error) {
	rec := &store.Recording{
		ID:              uuid.NewString(),
		OwnerID:         in.OwnerID,
		ScriptID:        in.ScriptID,
		FileName:        in.FileName,
		MimeType:        in.MimeType,
		SizeBytes:       in.SizeBytes,
		DurationSeconds: in.DurationSeconds,
		StoragePath:     in.StoragePath,
		CreatedAt:       time.Now().UTC(),
	}

	query := `INSERT INTO recordings (` + recordingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := c.db.ExecContext(ctx, query,
		rec.ID,
		rec.OwnerID,
		nullString(rec.ScriptID),
		rec.FileName,
		rec.MimeType,
		rec.SizeBytes,
		rec.DurationSeconds,
		rec.StoragePath,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("creating recording: %w", err)
	}
	return rec, nil
}

func (c *Client) ListRecordings(ctx context.Context, ownerID, scriptID string) ([]store.Recording, error) {
	query := `
	SELECT ` + recordingColumns + `
	FROM recordings
	WHERE owner_id = ?
	  AND (? = '' OR script_id = ?)
	ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query, ownerID, scriptID, scriptID)
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	return collectRecordings(rows)
}

func (c *Client) DeleteRecording(ctx context.Context, id, ownerID string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting recording: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func collectRecordings(rows *sql.Rows) ([]store.Recording, error) {
	defer rows.Close()

	recordings := []store.Recording{}
	for rows.Next() {
		var r store.Recording
		var scriptID sql.NullString
		var created string
		if err := rows.Scan(&r.ID, &r.OwnerID, &scriptID, &r.FileName, &r.MimeType, &r.SizeBytes,
			&r.DurationSeconds, &r.StoragePath, &created); err != nil {
			return nil, fmt.Errorf("scanning recording: %w", err)
		}
		r.ScriptID = scriptID.String
		t, err := parseTime(created)
		if err != nil {
			return nil, err
		}
		r.CreatedAt = t
		recordings = append(recordings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recordings: %w", err)
	}
	return recordings, nil
}
