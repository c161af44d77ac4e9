package middleware

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/outbox"
	"hotelrates/internal/app/uow"
	domainbooking "hotelrates/internal/domain/booking"
	domainpricing "hotelrates/internal/domain/pricing"
	domainrooms "hotelrates/internal/domain/rooms"
	domainsiteconfig "hotelrates/internal/domain/siteconfig"
)

type reserve struct {
	Room    string
	IdemKey string
}

func (reserve) Key() string              { return "test.reserve" }
func (c reserve) IdempotencyKey() string { return c.IdemKey }
func (reserve) ResultPrototype() any     { return new(string) }

type countingBus struct {
	calls int
	err   error
}

func (b *countingBus) Dispatch(_ context.Context, cmd commands.Command) (any, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	id := fmt.Sprintf("booking-%d", b.calls)
	return &id, nil
}

type mapStore map[string]IdempotencyRecord

func (s mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s[key]
	return rec, ok, nil
}

func (s mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s[rec.Key] = rec
	return nil
}

func TestIdempotencyReplaysResult(t *testing.T) {
	inner := &countingBus{}
	store := mapStore{}
	bus := ChainCommands(inner, Idempotency(store, nil))
	cmd := reserve{Room: "r1", IdemKey: "abc"}

	first, err := commands.Dispatch[reserve, *string](context.Background(), bus, cmd)
	require.NoError(t, err)
	second, err := commands.Dispatch[reserve, *string](context.Background(), bus, cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, *first, *second)
	assert.Contains(t, store, "test.reserve:abc")
}

func TestIdempotencyRemembersDomainFailures(t *testing.T) {
	inner := &countingBus{err: errors.New("room unavailable")}
	bus := ChainCommands(inner, Idempotency(mapStore{}, nil))
	cmd := reserve{IdemKey: "k"}

	_, err := bus.Dispatch(context.Background(), cmd)
	require.Error(t, err)
	_, err = bus.Dispatch(context.Background(), cmd)
	assert.ErrorIs(t, err, ErrReplayedFailure)
	assert.Equal(t, 1, inner.calls)
}

func TestIdempotencyReplayKeepsFailureClass(t *testing.T) {
	inner := &countingBus{err: fmt.Errorf("reserve: %w", domainbooking.ErrCheckInInPast)}
	store := mapStore{}
	bus := ChainCommands(inner, Idempotency(store, nil, domainbooking.ErrRoomUnavailable, domainbooking.ErrCheckInInPast))
	cmd := reserve{IdemKey: "past"}

	_, first := bus.Dispatch(context.Background(), cmd)
	require.ErrorIs(t, first, domainbooking.ErrCheckInInPast)
	_, second := bus.Dispatch(context.Background(), cmd)

	assert.ErrorIs(t, second, ErrReplayedFailure)
	assert.ErrorIs(t, second, domainbooking.ErrCheckInInPast)
	assert.NotErrorIs(t, second, domainbooking.ErrRoomUnavailable)
	assert.Equal(t, first.Error(), second.Error())
	assert.Equal(t, domainbooking.ErrCheckInInPast.Error(), store["test.reserve:past"].Class)
	assert.Equal(t, 1, inner.calls)
}

func TestIdempotencyForgetsRetryableFailures(t *testing.T) {
	inner := &countingBus{err: uow.ErrConflict}
	store := mapStore{}
	bus := ChainCommands(inner, Idempotency(store, nil))
	cmd := reserve{IdemKey: "k"}

	_, err := bus.Dispatch(context.Background(), cmd)
	assert.ErrorIs(t, err, uow.ErrConflict)
	assert.Empty(t, store)

	inner.err = nil
	_, err = bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestIdempotencyIgnoresEmptyKey(t *testing.T) {
	inner := &countingBus{}
	bus := ChainCommands(inner, Idempotency(mapStore{}, nil))
	for i := 0; i < 2; i++ {
		_, err := bus.Dispatch(context.Background(), reserve{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.calls)
}

type fakeUnit struct {
	committed, rolledBack bool
}

func (u *fakeUnit) Rooms() domainrooms.Repository           { return nil }
func (u *fakeUnit) Bookings() domainbooking.Repository      { return nil }
func (u *fakeUnit) Rules() domainpricing.RuleRepository     { return nil }
func (u *fakeUnit) SiteConfig() domainsiteconfig.Repository { return nil }
func (u *fakeUnit) Commit(context.Context) error            { u.committed = true; return nil }
func (u *fakeUnit) Rollback(context.Context) error          { u.rolledBack = true; return nil }

type fakeFactory struct{ units []*fakeUnit }

func (f *fakeFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{}
	f.units = append(f.units, u)
	return u, nil
}

func TestTransactionCommitsOrRollsBack(t *testing.T) {
	factory := &fakeFactory{}
	inner := &countingBus{}
	bus := ChainCommands(inner, Transaction(factory, nil))

	_, err := bus.Dispatch(context.Background(), reserve{})
	require.NoError(t, err)
	inner.err = errors.New("boom")
	_, err = bus.Dispatch(context.Background(), reserve{})
	require.Error(t, err)

	require.Len(t, factory.units, 2)
	assert.True(t, factory.units[0].committed)
	assert.False(t, factory.units[0].rolledBack)
	assert.False(t, factory.units[1].committed)
	assert.True(t, factory.units[1].rolledBack)
}

func TestTransactionReusesUnitInContext(t *testing.T) {
	factory := &fakeFactory{}
	bus := ChainCommands(&countingBus{}, Transaction(factory, nil))
	ctx := uow.ContextWithUnitOfWork(context.Background(), &fakeUnit{})
	_, err := bus.Dispatch(ctx, reserve{})
	require.NoError(t, err)
	assert.Empty(t, factory.units)
}

type recordingOutbox struct{ flushed int }

func (o *recordingOutbox) Add(context.Context, outbox.EventRecord) error { return nil }
func (o *recordingOutbox) Flush(context.Context) error                   { o.flushed++; return nil }

func TestOutboxFlushOnlyAfterSuccess(t *testing.T) {
	box := &recordingOutbox{}
	inner := &countingBus{}
	bus := ChainCommands(inner, OutboxFlush(box))
	_, _ = bus.Dispatch(context.Background(), reserve{})
	inner.err = errors.New("boom")
	_, _ = bus.Dispatch(context.Background(), reserve{})
	assert.Equal(t, 1, box.flushed)
}

type denyAll struct{}

func (denyAll) Authorize(context.Context, any) error { return errors.New("denied") }

type observerFunc func(kind, key string, took time.Duration, err error)

func (f observerFunc) ObserveMessage(kind, key string, took time.Duration, err error) {
	f(kind, key, took, err)
}

func TestChainOrderIsOutermostFirst(t *testing.T) {
	var seen []string
	inner := &countingBus{}
	bus := ChainCommands(inner,
		Logging(nil, observerFunc(func(kind, key string, _ time.Duration, err error) {
			seen = append(seen, kind+" "+key+" "+fmt.Sprint(err != nil))
		})),
		Authorization(denyAll{}),
	)
	_, err := bus.Dispatch(context.Background(), reserve{})
	require.EqualError(t, err, "denied")
	assert.Equal(t, 0, inner.calls)
	assert.Equal(t, []string{"command test.reserve true"}, seen)
}
