package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/app/policies"
)

type chanFeed struct {
	ch chan policies.Change
}

func (f chanFeed) Subscribe(ctx context.Context) (<-chan policies.Change, error) {
	return f.ch, nil
}

func TestRunBumpsRevisionOnCatalogChanges(t *testing.T) {
	feed := chanFeed{ch: make(chan policies.Change)}
	var mu sync.Mutex
	var seen []string
	svc := &Service{Feed: feed, OnChange: func(c policies.Change) {
		mu.Lock()
		seen = append(seen, c.Collection)
		mu.Unlock()
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	feed.ch <- policies.Change{Collection: policies.CollectionRules, DocumentID: "r1"}
	feed.ch <- policies.Change{Collection: policies.CollectionBookings, DocumentID: "b1"}
	feed.ch <- policies.Change{Collection: policies.CollectionRooms, DocumentID: "room-1"}

	require.Eventually(t, func() bool { return svc.Revision() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{policies.CollectionRules, policies.CollectionRooms}, seen)
}

type closingFeed struct {
	mu    sync.Mutex
	calls int
	first chan policies.Change
}

func (f *closingFeed) Subscribe(ctx context.Context) (<-chan policies.Change, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls == 1 {
		return f.first, nil
	}
	return make(chan policies.Change), nil
}

func (f *closingFeed) subscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRunBumpsWhenStreamIsCut(t *testing.T) {
	feed := &closingFeed{first: make(chan policies.Change)}
	svc := &Service{Feed: feed, RetryBackoff: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	close(feed.first)
	require.Eventually(t, func() bool { return feed.subscriptions() == 2 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return svc.Revision() == 2 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRunRequiresFeed(t *testing.T) {
	assert.ErrorIs(t, (&Service{}).Run(context.Background()), ErrFeedRequired)
}

func TestAffects(t *testing.T) {
	assert.True(t, Affects(policies.Change{Collection: policies.CollectionSiteConfig}))
	assert.False(t, Affects(policies.Change{Collection: policies.CollectionBookings}))
	assert.False(t, Affects(policies.Change{Collection: "unknown"}))
}
