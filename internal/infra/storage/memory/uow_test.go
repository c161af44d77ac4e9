package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/app/policies"
	"hotelrates/internal/app/uow"
	domainbooking "hotelrates/internal/domain/booking"
	domainpricing "hotelrates/internal/domain/pricing"
	domainrooms "hotelrates/internal/domain/rooms"
)

func seedRoom(t *testing.T, f *Factory, id string) {
	t.Helper()
	ctx := context.Background()
	unit, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Rooms().Save(ctx, &domainrooms.Room{ID: id, Name: id, Price: 100, Category: domainrooms.CategoryStandard}))
	require.NoError(t, unit.Commit(ctx))
}

func TestCommitPublishesAndRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())
	seedRoom(t, f, "r1")

	unit, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Rules().Save(ctx, &domainpricing.Rule{ID: "x", Type: domainpricing.RuleCustom}))
	got, err := unit.Rules().ByID(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", got.ID)
	require.NoError(t, unit.Rollback(ctx))

	reader, err := f.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	_, err = reader.Rules().ByID(ctx, "x")
	assert.ErrorIs(t, err, domainpricing.ErrRuleNotFound)
	room, err := reader.Rooms().ByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), room.Version)
	require.NoError(t, reader.Rollback(ctx))
}

func TestReadOnlyUnitRejectsWrites(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())
	unit, err := f.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	err = unit.Bookings().LockRoom(ctx, "r1")
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestReturnedValuesAreDetached(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())
	seedRoom(t, f, "r1")

	unit, _ := f.Begin(ctx, uow.TxOptions{ReadOnly: true})
	room, err := unit.Rooms().ByID(ctx, "r1")
	require.NoError(t, err)
	room.Price = 1
	again, _ := unit.Rooms().ByID(ctx, "r1")
	assert.Equal(t, 100.0, again.Price)
}

func TestWriteUnitsAreSerialized(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())
	seedRoom(t, f, "r1")

	first, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)

	started := make(chan struct{})
	acquired := make(chan struct{})
	go func() {
		close(started)
		second, err := f.Begin(ctx, uow.TxOptions{})
		if err == nil {
			close(acquired)
			_ = second.Rollback(ctx)
		}
	}()
	<-started
	select {
	case <-acquired:
		t.Fatal("second writer started while the first was open")
	case <-time.After(30 * time.Millisecond):
	}
	require.NoError(t, first.Commit(ctx))
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second writer never started")
	}
}

func TestConcurrentOverlappingBookingsOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())
	seedRoom(t, f, "r1")

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unit, err := f.Begin(ctx, uow.TxOptions{})
			if err != nil {
				return
			}
			defer unit.Rollback(ctx)
			require.NoError(t, unit.Bookings().LockRoom(ctx, "r1"))
			existing, _ := unit.Bookings().ListByRoom(ctx, "r1")
			if len(existing) > 0 {
				return
			}
			b := &domainbooking.Booking{ID: string(rune('a' + i)), RoomID: "r1", ISOCheckIn: "2030-01-01", ISOCheckOut: "2030-01-03", Status: domainbooking.StatusPending}
			require.NoError(t, unit.Bookings().Save(ctx, b))
			require.NoError(t, unit.Commit(ctx))
			mu.Lock()
			wins++
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestCommittedChangesReachSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewStore()
	f := NewFactory(store)
	changes, err := store.Changes.Subscribe(ctx)
	require.NoError(t, err)

	seedRoom(t, f, "r9")

	select {
	case ch := <-changes:
		assert.Equal(t, policies.CollectionRooms, ch.Collection)
		assert.Equal(t, "r9", ch.DocumentID)
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}
}

func TestRuleDeleteWithinUnit(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewStore())
	unit, _ := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, unit.Rules().Save(ctx, &domainpricing.Rule{ID: "b"}))
	require.NoError(t, unit.Rules().Save(ctx, &domainpricing.Rule{ID: "a"}))
	require.NoError(t, unit.Commit(ctx))

	unit, _ = f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, unit.Rules().Delete(ctx, "a"))
	assert.ErrorIs(t, unit.Rules().Delete(ctx, "a"), domainpricing.ErrRuleNotFound)
	rules, err := unit.Rules().List(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "b", rules[0].ID)
	require.NoError(t, unit.Commit(ctx))
}
