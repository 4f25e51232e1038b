package postgres

import (
	"context"
	"fmt"

	"prompter/internal/store"
)

func (c *Client) RemoveStaleScripts(ctx context.Context, ownerID string, currentSourceFiles []string) (int64, error) {
	if currentSourceFiles == nil {
		currentSourceFiles = []string{}
	}

	query := `
DELETE FROM scripts
WHERE owner_id = $1
  AND source_file IS NOT NULL
  AND NOT (source_file = ANY($2))
`

	tag, err := c.pool.Exec(ctx, query, ownerID, currentSourceFiles)
	if err != nil {
		return 0, fmt.Errorf("removing stale scripts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (c *Client) ListOrphanedRecordings(ctx context.Context) ([]store.Recording, error) {
	query := `
SELECT ` + recordingColumns + `
FROM recordings r
WHERE r.script_id IS NOT NULL
  AND NOT EXISTS (SELECT 1 FROM scripts s WHERE s.id = r.script_id)
ORDER BY r.created_at ASC
`
	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing orphaned recordings: %w", err)
	}
	return collectRecordings(rows)
}
