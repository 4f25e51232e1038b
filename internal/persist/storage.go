package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("storage key not found")
	ErrQuotaExceeded  = errors.New("storage quota exceeded")
	ErrUnavailable    = errors.New("storage unavailable")
	ErrMalformed      = errors.New("malformed stored value")
	ErrUnknownVersion = errors.New("unknown stored schema version")
)

// Storage is a durable key/value area. Values are opaque JSON documents.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

type prefixed struct {
	inner  Storage
	prefix string
}

// Prefixed namespaces every key of inner under prefix + ":".
func Prefixed(inner Storage, prefix string) Storage {
	if prefix == "" {
		return inner
	}
	return &prefixed{inner: inner, prefix: prefix + ":"}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}

// LoadJSON decodes the value under key into v. It reports false with a nil
// error when the key is absent.
func LoadJSON(ctx context.Context, s Storage, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return true, nil
}

func SaveJSON(ctx context.Context, s Storage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
