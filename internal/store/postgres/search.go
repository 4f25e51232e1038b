package postgres

import (
	"context"
	"fmt"
	"strings"

	"prompter/internal/store"
)

func (c *Client) SearchScripts(ctx context.Context, ownerID, query string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	sql := `
SELECT id, title, tags,
    ts_rank(search_vector, websearch_to_tsquery('english', $1)) AS score,
    CASE WHEN content <> '' THEN
        ts_headline('english', content, websearch_to_tsquery('english', $1),
            'MaxFragments=2, MaxWords=40, MinWords=20, StartSel=**, StopSel=**')
    ELSE '' END AS snippet
FROM scripts
WHERE search_vector @@ websearch_to_tsquery('english', $1)
  AND ($2 = '' OR owner_id = $2)
ORDER BY score DESC, title ASC
LIMIT 50
`

	rows, err := c.pool.Query(ctx, sql, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("searching scripts: %w", err)
	}
	defer rows.Close()

	results := []store.SearchResult{}
	for rows.Next() {
		var r store.SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Tags, &r.Score, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		if r.Tags == nil {
			r.Tags = []string{}
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}
