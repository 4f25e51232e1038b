package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS scripts (
		id          TEXT PRIMARY KEY,
		owner_id    TEXT NOT NULL,
		title       TEXT NOT NULL,
		content     TEXT NOT NULL DEFAULT '',
		bg_url      TEXT NOT NULL DEFAULT '',
		music_url   TEXT NOT NULL DEFAULT '',
		tags        TEXT NOT NULL DEFAULT '[]',
		config      TEXT,
		source_file TEXT,
		source_hash TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		CONSTRAINT uq_script_source UNIQUE (owner_id, source_file)
	);

	CREATE TABLE IF NOT EXISTS recordings (
		id               TEXT PRIMARY KEY,
		owner_id         TEXT NOT NULL,
		script_id        TEXT,
		file_name        TEXT NOT NULL,
		mime_type        TEXT NOT NULL DEFAULT '',
		size_bytes       INTEGER NOT NULL DEFAULT 0,
		duration_seconds REAL NOT NULL DEFAULT 0,
		storage_path     TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS app_state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scripts_owner ON scripts (owner_id);
	CREATE INDEX IF NOT EXISTS idx_scripts_owner_updated ON scripts (owner_id, updated_at);
	CREATE INDEX IF NOT EXISTS idx_recordings_owner ON recordings (owner_id);
	CREATE INDEX IF NOT EXISTS idx_recordings_script ON recordings (script_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS scripts_fts USING fts5(
		title,
		tags,
		content,
		content=scripts,
		content_rowid=rowid
	);

	CREATE TRIGGER IF NOT EXISTS scripts_ai AFTER INSERT ON scripts BEGIN
		INSERT INTO scripts_fts(rowid, title, tags, content)
		VALUES (new.rowid, new.title, new.tags, new.content);
	END;

	CREATE TRIGGER IF NOT EXISTS scripts_ad AFTER DELETE ON scripts BEGIN
		INSERT INTO scripts_fts(scripts_fts, rowid, title, tags, content)
		VALUES ('delete', old.rowid, old.title, old.tags, old.content);
	END;

	CREATE TRIGGER IF NOT EXISTS scripts_au AFTER UPDATE ON scripts BEGIN
		INSERT INTO scripts_fts(scripts_fts, rowid, title, tags, content)
		VALUES ('delete', old.rowid, old.title, old.tags, old.content);
		INSERT INTO scripts_fts(rowid, title, tags, content)
		VALUES (new.rowid, new.title, new.tags, new.content);
	END;
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

// splitStatements splits DDL on statement-terminating semicolons. Trigger
// bodies end with "END;" so their inner statements are kept together.
func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder
	inTrigger := false

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(stripped), "CREATE TRIGGER") {
			inTrigger = true
		}
		current.WriteString(line)
		current.WriteString("\n")

		if !strings.HasSuffix(stripped, ";") {
			continue
		}
		if inTrigger && !strings.EqualFold(stripped, "END;") {
			continue
		}
		inTrigger = false
		statements = append(statements, current.String())
		current.Reset()
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}

	return statements
}
