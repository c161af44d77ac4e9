package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorderDrainEmpties(t *testing.T) {
	var r EventRecorder
	r.Record(Named{Name: "room.updated", Aggregate: "r1", Time: time.Unix(0, 0)})
	r.Record(nil)
	assert.Len(t, r.PendingEvents(), 1)

	evs := r.Drain()
	assert.Len(t, evs, 1)
	assert.Empty(t, r.PendingEvents())
	assert.Empty(t, r.Drain())
}

func TestAggregateType(t *testing.T) {
	assert.Equal(t, "booking", AggregateType("booking.created"))
	assert.Equal(t, "pricing_rule", AggregateType("pricing_rule.deleted"))
	assert.Equal(t, "plain", AggregateType("plain"))
}
