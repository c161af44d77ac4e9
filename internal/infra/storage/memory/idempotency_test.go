package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/app/middleware"
)

func TestIdempotencyStoreExpiresRecords(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := NewIdempotencyStore(time.Hour)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, middleware.IdempotencyRecord{Key: "a", OccurredAt: now}))
	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdempotencyStoreWithoutTTLKeepsRecords(t *testing.T) {
	s := NewIdempotencyStore(0)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, middleware.IdempotencyRecord{Key: "a"}))
	_, ok, _ := s.Get(ctx, "a")
	assert.True(t, ok)
}
