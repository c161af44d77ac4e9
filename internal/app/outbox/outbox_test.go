package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/domain/shared/events"
)

type sliceOutbox struct{ records []EventRecord }

func (o *sliceOutbox) Add(_ context.Context, r EventRecord) error {
	o.records = append(o.records, r)
	return nil
}

func (o *sliceOutbox) Flush(context.Context) error { return nil }

func TestJSONEventEncoder(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	rec, err := JSONEventEncoder{IDGenerator: func() string { return "ev-1" }}.Encode(
		events.Named{Name: "pricing_rule.updated", Aggregate: "rule-1", Time: at})
	require.NoError(t, err)

	assert.Equal(t, "ev-1", rec.ID)
	assert.Equal(t, "pricing_rule.updated", rec.Name)
	assert.Equal(t, "rule-1", rec.Aggregate)
	assert.Equal(t, time.UTC, rec.OccurredAt.Location())
	assert.Equal(t, "pricing_rule", rec.Headers["aggregate_type"])
	assert.JSONEq(t, `{"name":"pricing_rule.updated","aggregate":"rule-1","time":"2024-06-01T12:00:00+01:00"}`, string(rec.Payload))
}

type failingEncoder struct{ after int }

func (f *failingEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	if f.after == 0 {
		return EventRecord{}, errors.New("nope")
	}
	f.after--
	return EventRecord{Name: ev.EventName()}, nil
}

func TestRecordDomainEventsIsAllOrNothing(t *testing.T) {
	box := &sliceOutbox{}
	evs := []events.DomainEvent{
		events.Named{Name: "room.updated"},
		events.Named{Name: "room.updated"},
	}
	err := RecordDomainEvents(context.Background(), box, &failingEncoder{after: 1}, evs)
	require.Error(t, err)
	assert.Empty(t, box.records)

	require.NoError(t, RecordDomainEvents(context.Background(), box, nil, evs))
	assert.Len(t, box.records, 2)
}
