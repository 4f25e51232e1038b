package persist

import (
	"context"
	"errors"
	"fmt"

	"prompter/internal/store"
)

// StateBackend is the key/value slice of store.Store used for durable state.
type StateBackend interface {
	GetState(ctx context.Context, key string) ([]byte, error)
	PutState(ctx context.Context, key string, value []byte) error
	DeleteState(ctx context.Context, key string) error
}

// DBStorage keeps state documents in the application database.
type DBStorage struct {
	db StateBackend
}

func NewDBStorage(db StateBackend) *DBStorage {
	return &DBStorage{db: db}
}

func (d *DBStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := d.db.GetState(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

func (d *DBStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := d.db.PutState(ctx, key, value); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (d *DBStorage) Remove(ctx context.Context, key string) error {
	if err := d.db.DeleteState(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
