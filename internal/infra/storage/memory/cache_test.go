package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/policies"
)

func TestQuoteCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewQuoteCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", dto.Quote{RoomID: "r1"}, time.Minute))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r1", got.RoomID)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Sweep())
}

func TestBroadcasterDropsForSlowSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := NewBroadcaster()
	_, err := b.Subscribe(ctx)
	require.NoError(t, err)
	for i := 0; i < subscriberBuffer+3; i++ {
		b.Publish(policiesChange(i))
	}
	assert.Equal(t, uint64(3), b.Dropped())
}

func policiesChange(i int) policies.Change {
	return policies.Change{Collection: policies.CollectionRooms, DocumentID: string(rune('a' + i%26))}
}
