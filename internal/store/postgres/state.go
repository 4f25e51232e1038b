package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"prompter/internal/store"
)

func (c *Client) GetState(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.pool.QueryRow(ctx, `SELECT value FROM app_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting state %s: %w", key, err)
	}
	return value, nil
}

func (c *Client) PutState(ctx context.Context, key string, value []byte) error {
	query := `
INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`
	if _, err := c.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("putting state %s: %w", key, err)
	}
	return nil
}

func (c *Client) DeleteState(ctx context.Context, key string) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM app_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("deleting state %s: %w", key, err)
	}
	return nil
}
