package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"prompter/internal/store"
)

const scriptColumns = `id, owner_id, title, content, bg_url, music_url, tags, config, source_file, source_hash, created_at, updated_at`

func (c *Client) CreateScript(ctx context.Context, in store.ScriptInput) (*store.Script, error) {
	tagsJSON, err := marshalTags(in.Tags)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := formatTime(time.Now())

	query := `
	INSERT INTO scripts (id, owner_id, title, content, bg_url, music_url, tags, config, source_file, source_hash, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = c.db.ExecContext(ctx, query,
		id,
		in.OwnerID,
		in.Title,
		in.Content,
		in.BackgroundURL,
		in.MusicURL,
		tagsJSON,
		nullString(string(in.Config)),
		nullString(in.SourceFile),
		nullString(in.SourceHash),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating script: %w", err)
	}

	return c.GetScript(ctx, id, in.OwnerID)
}

func (c *Client) UpdateScript(ctx context.Context, id string, in store.ScriptInput) (*store.Script, error) {
	tagsJSON, err := marshalTags(in.Tags)
	if err != nil {
		return nil, err
	}

	query := `
	UPDATE scripts SET
		title = ?,
		content = ?,
		bg_url = ?,
		music_url = ?,
		tags = ?,
		config = ?,
		updated_at = ?
	WHERE id = ? AND owner_id = ?
	`
	res, err := c.db.ExecContext(ctx, query,
		in.Title,
		in.Content,
		in.BackgroundURL,
		in.MusicURL,
		tagsJSON,
		nullString(string(in.Config)),
		formatTime(time.Now()),
		id,
		in.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating script: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, store.ErrNotFound
	}

	return c.GetScript(ctx, id, in.OwnerID)
}

func (c *Client) GetScript(ctx context.Context, id, ownerID string) (*store.Script, error) {
	query := `SELECT ` + scriptColumns + ` FROM scripts WHERE id = ? AND (? = '' OR owner_id = ?)`

	row := c.db.QueryRowContext(ctx, query, id, ownerID, ownerID)
	script, err := scanScript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting script: %w", err)
	}
	return script, nil
}

func (c *Client) ListScripts(ctx context.Context, ownerID, tag string) ([]store.ScriptSummary, error) {
	query := `
	SELECT id, owner_id, title, tags, length(content), updated_at
	FROM scripts
	WHERE (? = '' OR owner_id = ?)
	  AND (? = '' OR EXISTS (SELECT 1 FROM json_each(scripts.tags) WHERE json_each.value = ?))
	ORDER BY updated_at DESC, title ASC
	`

	rows, err := c.db.QueryContext(ctx, query, ownerID, ownerID, tag, tag)
	if err != nil {
		return nil, fmt.Errorf("listing scripts: %w", err)
	}
	defer rows.Close()

	summaries := []store.ScriptSummary{}
	for rows.Next() {
		var s store.ScriptSummary
		var tagsText, updated string
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Title, &tagsText, &s.CharCount, &updated); err != nil {
			return nil, fmt.Errorf("scanning script summary: %w", err)
		}
		if s.Tags, err = unmarshalTags(tagsText); err != nil {
			return nil, err
		}
		if s.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scripts: %w", err)
	}

	return summaries, nil
}

func (c *Client) DeleteScript(ctx context.Context, id, ownerID string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM scripts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting script: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *Client) CountScripts(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `SELECT count(*) FROM scripts WHERE owner_id = ?`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting scripts: %w", err)
	}
	return count, nil
}

func (c *Client) UpsertImportedScript(ctx context.Context, in store.ScriptInput) error {
	if in.SourceFile == "" {
		return fmt.Errorf("imported script requires a source file")
	}

	tagsJSON, err := marshalTags(in.Tags)
	if err != nil {
		return err
	}
	now := formatTime(time.Now())

	query := `
	INSERT INTO scripts (id, owner_id, title, content, bg_url, music_url, tags, config, source_file, source_hash, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (owner_id, source_file) DO UPDATE SET
		title = excluded.title,
		content = excluded.content,
		bg_url = excluded.bg_url,
		music_url = excluded.music_url,
		tags = excluded.tags,
		config = excluded.config,
		source_hash = excluded.source_hash,
		updated_at = excluded.updated_at
	`
	_, err = c.db.ExecContext(ctx, query,
		uuid.NewString(),
		in.OwnerID,
		in.Title,
		in.Content,
		in.BackgroundURL,
		in.MusicURL,
		tagsJSON,
		nullString(string(in.Config)),
		in.SourceFile,
		nullString(in.SourceHash),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upserting imported script: %w", err)
	}
	return nil
}

func (c *Client) GetScriptHashes(ctx context.Context, ownerID string) (map[string]string, error) {
	query := `
	SELECT source_file, source_hash
	FROM scripts
	WHERE owner_id = ? AND source_file IS NOT NULL AND source_hash IS NOT NULL
	`

	rows, err := c.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("getting script hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var file, hash string
		if err := rows.Scan(&file, &hash); err != nil {
			return nil, fmt.Errorf("scanning script hash: %w", err)
		}
		hashes[file] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating script hashes: %w", err)
	}

	return hashes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScript(row rowScanner) (*store.Script, error) {
	var s store.Script
	var tagsText, created, updated string
	var config, sourceFile, sourceHash sql.NullString

	err := row.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Content, &s.BackgroundURL, &s.MusicURL,
		&tagsText, &config, &sourceFile, &sourceHash, &created, &updated)
	if err != nil {
		return nil, err
	}

	if s.Tags, err = unmarshalTags(tagsText); err != nil {
		return nil, err
	}
	if config.Valid {
		s.Config = json.RawMessage(config.String)
	}
	s.SourceFile = sourceFile.String
	s.SourceHash = sourceHash.String
	if s.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &s, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshaling tags: %w", err)
	}
	return string(data), nil
}

func unmarshalTags(text string) ([]string, error) {
	tags := []string{}
	if text == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(text), &tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
