// Package redis keeps computed quotes in Redis so every replica shares them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"hotelrates/internal/app/dto"
)

const keyPrefix = "hotelrates:"

// QuoteCache keys are scoped by namespace. Catalog revisions are counted per
// process, so each process must use its own namespace or two replicas at the
// same revision number could read each other's quotes for different catalogs.
type QuoteCache struct {
	client goredis.UniversalClient
	prefix string
}

func NewQuoteCache(client goredis.UniversalClient, namespace string) *QuoteCache {
	return &QuoteCache{client: client, prefix: keyPrefix + namespace + ":"}
}

// Dial connects to addr and pings it.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *QuoteCache) Get(ctx context.Context, key string) (dto.Quote, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return dto.Quote{}, false, nil
		}
		return dto.Quote{}, false, err
	}
	var q dto.Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		// An unreadable entry is a miss; the next Set overwrites it.
		return dto.Quote{}, false, nil
	}
	return q, true, nil
}

func (c *QuoteCache) Set(ctx context.Context, key string, quote dto.Quote, ttl time.Duration) error {
	raw, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, raw, ttl).Err()
}

func (c *QuoteCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
