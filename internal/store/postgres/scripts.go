package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"prompter/internal/store"
)

const scriptColumns = `id, owner_id, title, content, bg_url, music_url, tags, config::text, source_file, source_hash, created_at, updated_at`

func (c *Client) CreateScript(ctx context.Context, in store.ScriptInput) (*store.Script, error) {
	query := `
INSERT INTO scripts (id, owner_id, title, content, bg_url, music_url, tags, config, source_file, source_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)
RETURNING ` + scriptColumns

	row := c.pool.QueryRow(ctx, query,
		uuid.NewString(),
		in.OwnerID,
		in.Title,
		in.Content,
		in.BackgroundURL,
		in.MusicURL,
		tagsOrEmpty(in.Tags),
		nullString(string(in.Config)),
		nullString(in.SourceFile),
		nullString(in.SourceHash),
	)
	script, err := scanScript(row)
	if err != nil {
		return nil, fmt.Errorf("creating script: %w", err)
	}
	return script, nil
}

func (c *Client) UpdateScript(ctx context.Context, id string, in store.ScriptInput) (*store.Script, error) {
	query := `
UPDATE scripts SET
    title = $3,
    content = $4,
    bg_url = $5,
    music_url = $6,
    tags = $7,
    config = $8::jsonb,
    updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING ` + scriptColumns

	row := c.pool.QueryRow(ctx, query,
		id,
		in.OwnerID,
		in.Title,
		in.Content,
		in.BackgroundURL,
		in.MusicURL,
		tagsOrEmpty(in.Tags),
		nullString(string(in.Config)),
	)
	script, err := scanScript(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating script: %w", err)
	}
	return script, nil
}

func (c *Client) GetScript(ctx context.Context, id, ownerID string) (*store.Script, error) {
	query := `SELECT ` + scriptColumns + ` FROM scripts WHERE id = $1 AND ($2 = '' OR owner_id = $2)`

	script, err := scanScript(c.pool.QueryRow(ctx, query, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting script: %w", err)
	}
	return script, nil
}

func (c *Client) ListScripts(ctx context.Context, ownerID, tag string) ([]store.ScriptSummary, error) {
	query := `
SELECT id, owner_id, title, tags, char_length(content), updated_at
FROM scripts
WHERE ($1 = '' OR owner_id = $1)
  AND ($2 = '' OR $2 = ANY(tags))
ORDER BY updated_at DESC, title ASC
`

	rows, err := c.pool.Query(ctx, query, ownerID, tag)
	if err != nil {
		return nil, fmt.Errorf("listing scripts: %w", err)
	}
	defer rows.Close()

	summaries := []store.ScriptSummary{}
	for rows.Next() {
		var s store.ScriptSummary
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Tags, &s.CharCount, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning script summary: %w", err)
		}
		if s.Tags == nil {
			s.Tags = []string{}
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scripts: %w", err)
	}

	return summaries, nil
}

func (c *Client) DeleteScript(ctx context.Context, id, ownerID string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM scripts WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting script: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *Client) CountScripts(ctx context.Context, ownerID string) (int, error) {
	var count int
	if err := c.pool.QueryRow(ctx, `SELECT count(*) FROM scripts WHERE owner_id = $1`, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting scripts: %w", err)
	}
	return count, nil
}

func (c *Client) UpsertImportedScript(ctx context.Context, in store.ScriptInput) error {
	if in.SourceFile == "" {
		return fmt.Errorf("imported script requires a source file")
	}

	query := `
INSERT INTO scripts (id, owner_id, title, content, bg_url, music_url, tags, config, source_file, source_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)
ON CONFLICT (owner_id, source_file) DO UPDATE SET
    title = EXCLUDED.title,
    content = EXCLUDED.content,
    bg_url = EXCLUDED.bg_url,
    music_url = EXCLUDED.music_url,
    tags = EXCLUDED.tags,
    config = EXCLUDED.config,
    source_hash = EXCLUDED.source_hash,
    updated_at = now()
`
	_, err := c.pool.Exec(ctx, query,
		uuid.NewString(),
		in.OwnerID,
		in.Title,
		in.Content,
		in.BackgroundURL,
		in.MusicURL,
		tagsOrEmpty(in.Tags),
		nullString(string(in.Config)),
		in.SourceFile,
		nullString(in.SourceHash),
	)
	if err != nil {
		return fmt.Errorf("upserting imported script: %w", err)
	}
	return nil
}

func (c *Client) GetScriptHashes(ctx context.Context, ownerID string) (map[string]string, error) {
	query := `
SELECT source_file, source_hash FROM scripts
WHERE owner_id = $1
  AND source_file IS NOT NULL
  AND source_hash IS NOT NULL
`

	rows, err := c.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query script hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var sourceFile, sourceHash string
		if err := rows.Scan(&sourceFile, &sourceHash); err != nil {
			return nil, fmt.Errorf("scanning script hash: %w", err)
		}
		hashes[sourceFile] = sourceHash
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating script hashes: %w", err)
	}

	return hashes, nil
}

func scanScript(row pgx.Row) (*store.Script, error) {
	var s store.Script
	var config, sourceFile, sourceHash *string

	err := row.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Content, &s.BackgroundURL, &s.MusicURL,
		&s.Tags, &config, &sourceFile, &sourceHash, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if s.Tags == nil {
		s.Tags = []string{}
	}
	if config != nil {
		s.Config = json.RawMessage(*config)
	}
	if sourceFile != nil {
		s.SourceFile = *sourceFile
	}
	if sourceHash != nil {
		s.SourceHash = *sourceHash
	}
	return &s, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
