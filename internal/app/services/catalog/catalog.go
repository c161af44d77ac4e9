// Package catalog tracks a revision number for the pricing inputs. Quote
// caching keys on the revision so a room, rule or config change makes stale
// quotes unreachable.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"hotelrates/internal/app/policies"
)

var ErrFeedRequired = errors.New("catalog: change feed required")

type Service struct {
	Feed   policies.ChangeFeed
	Logger *slog.Logger
	// RetryBackoff is the pause before resubscribing after the feed closes.
	RetryBackoff time.Duration
	// OnChange, when set, sees every relevant change after the bump.
	OnChange func(policies.Change)

	revision atomic.Uint64
}

func (s *Service) Revision() uint64 {
	return s.revision.Load()
}

// Bump advances the revision and returns the new value.
func (s *Service) Bump() uint64 {
	return s.revision.Add(1)
}

// Run subscribes to the feed until ctx is done, resubscribing when the
// stream ends. Booking changes do not affect prices and are ignored.
func (s *Service) Run(ctx context.Context) error {
	if s.Feed == nil {
		return ErrFeedRequired
	}
	backoff := s.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	resubscribe := false
	for {
		changes, err := s.Feed.Subscribe(ctx)
		if err != nil {
			s.logWarn(ctx, "catalog subscribe failed", err)
		} else {
			if resubscribe {
				// changes published during the backoff were not seen
				s.Bump()
			}
			resubscribe = true
			s.consume(ctx, changes)
			// events may have been missed while the stream was down
			s.Bump()
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
	}
}

func (s *Service) consume(ctx context.Context, changes <-chan policies.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			if !Affects(ch) {
				continue
			}
			rev := s.Bump()
			if s.Logger != nil {
				s.Logger.DebugContext(ctx, "catalog changed",
					"collection", ch.Collection,
					"document_id", ch.DocumentID,
					"operation", ch.Operation,
					"revision", rev,
				)
			}
			if s.OnChange != nil {
				s.OnChange(ch)
			}
		}
	}
}

// Affects reports whether ch can change a quote.
func Affects(ch policies.Change) bool {
	switch ch.Collection {
	case policies.CollectionRooms, policies.CollectionRules, policies.CollectionSiteConfig:
		return true
	}
	return false
}

func (s *Service) logWarn(ctx context.Context, msg string, err error) {
	if s.Logger != nil {
		s.Logger.WarnContext(ctx, msg, "error", err)
	}
}

var _ policies.CatalogRevision = (*Service)(nil)
