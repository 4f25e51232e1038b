package sqlite

import (
	"context"
	"fmt"
	"strings"

	"prompter/internal/store"
)

func (c *Client) RemoveStaleScripts(ctx context.Context, ownerID string, currentSourceFiles []string) (int64, error) {
	var query string
	args := []any{ownerID}

	if len(currentSourceFiles) == 0 {
		query = `DELETE FROM scripts WHERE owner_id = ? AND source_file IS NOT NULL`
	} else {
		placeholders := make([]string, len(currentSourceFiles))
		for i, file := range currentSourceFiles {
			placeholders[i] = "?"
			args = append(args, file)
		}
		query = fmt.Sprintf(
			`DELETE FROM scripts WHERE owner_id = ? AND source_file IS NOT NULL AND source_file NOT IN (%s)`,
			strings.Join(placeholders, ", "),
		)
	}

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("removing stale scripts: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting removed scripts: %w", err)
	}
	return removed, nil
}

func (c *Client) ListOrphanedRecordings(ctx context.Context) ([]store.Recording, error) {
	query := `
	SELECT ` + recordingColumns + `
	FROM recordings r
	WHERE r.script_id IS NOT NULL
	  AND NOT EXISTS (SELECT 1 FROM scripts s WHERE s.id = r.script_id)
	ORDER BY r.created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing orphaned recordings: %w", err)
	}
	return collectRecordings(rows)
}
