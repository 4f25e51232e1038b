package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All statements run in one implicit transaction. IF NOT EXISTS keeps
	// repeated runs idempotent.
	ddl := `
CREATE TABLE IF NOT EXISTS scripts (
    id          TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL,
    title       TEXT NOT NULL,
    content     TEXT NOT NULL DEFAULT '',
    bg_url      TEXT NOT NULL DEFAULT '',
    music_url   TEXT NOT NULL DEFAULT '',
    tags        TEXT[] NOT NULL DEFAULT '{}',
    config      JSONB,
    source_file TEXT,
    source_hash TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uq_script_source UNIQUE (owner_id, source_file)
);

ALTER TABLE scripts ADD COLUMN IF NOT EXISTS search_vector TSVECTOR
    GENERATED ALWAYS AS (
        setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
        setweight(to_tsvector('english', array_to_string(tags, ' ')), 'B') ||
        setweight(to_tsvector('english', coalesce(content, '')), 'C')
    ) STORED;

CREATE TABLE IF NOT EXISTS recordings (
    id               TEXT PRIMARY KEY,
    owner_id         TEXT NOT NULL,
    script_id        TEXT,
    file_name        TEXT NOT NULL,
    mime_type        TEXT NOT NULL DEFAULT '',
    size_bytes       BIGINT NOT NULL DEFAULT 0,
    duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
    storage_path     TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS app_state (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_scripts_search ON scripts USING GIN (search_vector);
CREATE INDEX IF NOT EXISTS idx_scripts_owner ON scripts (owner_id);
CREATE INDEX IF NOT EXISTS idx_scripts_owner_updated ON scripts (owner_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_scripts_tags ON scripts USING GIN (tags);
CREATE INDEX IF NOT EXISTS idx_recordings_owner ON recordings (owner_id);
CREATE INDEX IF NOT EXISTS idx_recordings_script ON recordings (script_id);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
