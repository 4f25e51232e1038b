package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"prompter/internal/store"
)

const recordingColumns = `id, owner_id, script_id, file_name, mime_type, size_bytes, duration_seconds, storage_path, created_at`

func (c *Client) CreateRecording(ctx context.Context, in store.RecordingInput) (*store.Recording, error) {
	query := `
INSERT INTO recordings (id, owner_id, script_id, file_name, mime_type, size_bytes, duration_seconds, storage_path)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + recordingColumns

	rows, err := c.pool.Query(ctx, query,
		uuid.NewString(),
		in.OwnerID,
		nullString(in.ScriptID),
		in.FileName,
		in.MimeType,
		in.SizeBytes,
		in.DurationSeconds,
		in.StoragePath,
	)
	if err != nil {
		return nil, fmt.Errorf("creating recording: %w", err)
	}
	recordings, err := collectRecordings(rows)
	if err != nil {
		return nil, fmt.Errorf("creating recording: %w", err)
	}
	if len(recordings) != 1 {
		return nil, fmt.Errorf("creating recording: expected 1 row, got %d", len(recordings))
	}
	return &recordings[0], nil
}

func (c *Client) ListRecordings(ctx context.Context, ownerID, scriptID string) ([]store.Recording, error) {
	query := `
SELECT ` + recordingColumns + `
FROM recordings
WHERE owner_id = $1
  AND ($2 = '' OR script_id = $2)
ORDER BY created_at DESC
`
	rows, err := c.pool.Query(ctx, query, ownerID, scriptID)
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	return collectRecordings(rows)
}

func (c *Client) DeleteRecording(ctx context.Context, id, ownerID string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM recordings WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting recording: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func collectRecordings(rows pgx.Rows) ([]store.Recording, error) {
	defer rows.Close()

	recordings := []store.Recording{}
	for rows.Next() {
		var r store.Recording
		var scriptID *string
		if err := rows.Scan(&r.ID, &r.OwnerID, &scriptID, &r.FileName, &r.MimeType, &r.SizeBytes,
			&r.DurationSeconds, &r.StoragePath, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning recording: %w", err)
		}
		if scriptID != nil {
			r.ScriptID = *scriptID
		}
		recordings = append(recordings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recordings: %w", err)
	}
	return recordings, nil
}
