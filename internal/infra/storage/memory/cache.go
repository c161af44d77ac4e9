package memory

import (
	"context"
	"sync"
	"time"

	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/policies"
)

const maxCachedQuotes = 10000

// QuoteCache is a process local policies.QuoteCache.
type QuoteCache struct {
	mu    sync.Mutex
	items map[string]cachedQuote
	now   func() time.Time
}

type cachedQuote struct {
	quote   dto.Quote
	expires time.Time
}

func NewQuoteCache() *QuoteCache {
	return &QuoteCache{items: make(map[string]cachedQuote), now: time.Now}
}

func (c *QuoteCache) Get(ctx context.Context, key string) (dto.Quote, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return dto.Quote{}, false, nil
	}
	if !item.expires.IsZero() && !c.now().Before(item.expires) {
		delete(c.items, key)
		return dto.Quote{}, false, nil
	}
	return item.quote, true, nil
}

// Set stores quote; a non-positive ttl keeps it until the cache fills up.
func (c *QuoteCache) Set(ctx context.Context, key string, quote dto.Quote, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) >= maxCachedQuotes && c.sweepLocked() >= maxCachedQuotes {
		c.items = make(map[string]cachedQuote)
	}
	item := cachedQuote{quote: quote}
	if ttl > 0 {
		item.expires = c.now().Add(ttl)
	}
	c.items[key] = item
	return nil
}

// Sweep drops expired entries and returns how many remain.
func (c *QuoteCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked()
}

func (c *QuoteCache) sweepLocked() int {
	now := c.now()
	for k, item := range c.items {
		if !item.expires.IsZero() && !now.Before(item.expires) {
			delete(c.items, k)
		}
	}
	return len(c.items)
}

var _ policies.QuoteCache = (*QuoteCache)(nil)
