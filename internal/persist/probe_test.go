package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type brokenStorage struct{ err error }

func (b brokenStorage) Get(ctx context.Context, key string) ([]byte, error) { return nil, b.err }
func (b brokenStorage) Set(ctx context.Context, key string, value []byte) error {
	return b.err
}
func (b brokenStorage) Remove(ctx context.Context, key string) error { return b.err }

func TestProbe(t *testing.T) {
	ctx := context.Background()

	t.Run("available", func(t *testing.T) {
		s := NewMemoryStorage(0)
		status := Probe(ctx, s)
		assert.True(t, status.Available)
		assert.False(t, status.QuotaExceeded)
		_, err := s.Get(ctx, probeKey)
		assert.ErrorIs(t, err, ErrNotFound, "probe key must be cleaned up")
	})

	t.Run("quota exceeded", func(t *testing.T) {
		status := Probe(ctx, NewMemoryStorage(4))
		assert.False(t, status.Available)
		assert.True(t, status.QuotaExceeded)
		assert.NotEmpty(t, status.Message)
	})

	t.Run("unavailable", func(t *testing.T) {
		status := Probe(ctx, brokenStorage{err: ErrUnavailable})
		assert.False(t, status.Available)
		assert.False(t, status.QuotaExceeded)
	})
}
