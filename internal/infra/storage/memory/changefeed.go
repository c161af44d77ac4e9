package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"hotelrates/internal/app/policies"
)

const subscriberBuffer = 64

// Broadcaster fans committed changes out to subscribers. A subscriber whose
// buffer is full is closed rather than blocking commits, so it learns it
// missed changes and can resubscribe. Dropped counts those closures.
type Broadcaster struct {
	mu      sync.Mutex
	subs    map[chan policies.Change]struct{}
	dropped atomic.Uint64
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan policies.Change]struct{})}
}

func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan policies.Change, error) {
	ch := make(chan policies.Change, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	go func() {
		<-ctx.Done()
		b.mu.Lock()
		b.remove(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

func (b *Broadcaster) Publish(change policies.Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- change:
		default:
			b.remove(ch)
			b.dropped.Add(1)
		}
	}
}

// remove must be called with mu held.
func (b *Broadcaster) remove(ch chan policies.Change) {
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

var _ policies.ChangeFeed = (*Broadcaster)(nil)
