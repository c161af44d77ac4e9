package policies

import (
	"context"
	"time"

	"hotelrates/internal/app/dto"
)

// QuoteCache stores computed quotes. Keys embed the catalog revision, so
// entries never need explicit invalidation.
type QuoteCache interface {
	Get(ctx context.Context, key string) (dto.Quote, bool, error)
	Set(ctx context.Context, key string, quote dto.Quote, ttl time.Duration) error
}
