package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"hotelrates/internal/app/policies"
)

// Deduper remembers processed event ids; inbox.Store implements it.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// ChangeFeed turns the outbox topics back into change notifications, for
// replicas that share a Mongo database but should not each open a change
// stream. Every replica needs its own Group so each one sees every event.
type ChangeFeed struct {
	Brokers     []string
	Group       string
	TopicPrefix string
	Config      *sarama.Config
	Inbox       Deduper
	Logger      *slog.Logger
}

// eventCollections maps event name prefixes to the collection they change.
var eventCollections = map[string]string{
	"room":         policies.CollectionRooms,
	"pricing_rule": policies.CollectionRules,
	"site_config":  policies.CollectionSiteConfig,
	"booking":      policies.CollectionBookings,
}

func (f *ChangeFeed) Topics() []string {
	out := make([]string, 0, len(eventCollections))
	for prefix := range eventCollections {
		out = append(out, f.TopicPrefix+prefix+".events.v1")
	}
	return out
}

func (f *ChangeFeed) Subscribe(ctx context.Context) (<-chan policies.Change, error) {
	if len(f.Brokers) == 0 || f.Group == "" {
		return nil, errors.New("kafka: change feed needs brokers and a group")
	}
	out := make(chan policies.Change, 16)
	handler := MessageHandlerFunc(func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		ch, id, ok := changeFromMessage(msg)
		if !ok {
			return nil
		}
		if f.Inbox != nil && id != "" {
			seen, err := f.Inbox.Seen(ctx, id)
			if err != nil {
				return err
			}
			if seen {
				return nil
			}
		}
		select {
		case out <- ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	consumer, err := NewConsumer(f.Brokers, f.Group, f.Config, handler, f.Logger)
	if err != nil {
		return nil, err
	}
	go func() {
		defer close(out)
		defer consumer.Close()
		if err := consumer.Run(ctx, f.Topics()); err != nil && f.Logger != nil {
			f.Logger.Warn("kafka change feed stopped", "error", err)
		}
	}()
	return out, nil
}

type cloudEvent struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Time    time.Time `json:"time"`
}

// changeFromMessage decodes an outbox CloudEvent. ok is false for messages
// that are not change events of a known collection.
func changeFromMessage(msg *sarama.ConsumerMessage) (policies.Change, string, bool) {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return policies.Change{}, "", false
	}
	name := strings.TrimSuffix(evt.Type, ".v1")
	prefix, op, found := strings.Cut(name, ".")
	if !found {
		return policies.Change{}, "", false
	}
	collection, known := eventCollections[prefix]
	if !known {
		return policies.Change{}, "", false
	}
	subject := evt.Subject
	if subject == "" {
		subject = string(msg.Key)
	}
	if evt.ID == "" {
		evt.ID = headerValue(msg, "ce_id")
	}
	at := evt.Time.UTC()
	if evt.Time.IsZero() {
		at = msg.Timestamp.UTC()
	}
	return policies.Change{Collection: collection, DocumentID: subject, Operation: op, At: at}, evt.ID, true
}
