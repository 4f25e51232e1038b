package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"prompter/internal/store"
)

func (c *Client) GetState(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting state %s: %w", key, err)
	}
	return []byte(value), nil
}

func (c *Client) PutState(ctx context.Context, key string, value []byte) error {
	query := `
	INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := c.db.ExecContext(ctx, query, key, string(value), formatTime(time.Now())); err != nil {
		return fmt.Errorf("putting state %s: %w", key, err)
	}
	return nil
}

func (c *Client) DeleteState(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting state %s: %w", key, err)
	}
	return nil
}
