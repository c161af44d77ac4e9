package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/app/uow"
	domainbooking "hotelrates/internal/domain/booking"
	domainrooms "hotelrates/internal/domain/rooms"
	"hotelrates/internal/infra/storage/memory"
)

type skipCount struct{ n int }

func (s *skipCount) CountSkippedBookings(n int) { s.n += n }

func seeded(t *testing.T) *memory.Factory {
	t.Helper()
	ctx := context.Background()
	factory := memory.NewFactory(memory.NewStore())
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Rooms().Save(ctx, &domainrooms.Room{ID: "r1", Price: 80, Category: domainrooms.CategoryStandard}))
	for _, b := range []*domainbooking.Booking{
		{ID: "b1", RoomID: "r1", ISOCheckIn: "2024-06-10", ISOCheckOut: "2024-06-12", Status: domainbooking.StatusPending},
		{ID: "legacy", RoomID: "r1", CheckIn: "Jun 20, 2024", CheckOut: "Jun 22, 2024", Status: domainbooking.StatusArrived},
		{ID: "junk", RoomID: "r1", CheckIn: "soon", Status: domainbooking.StatusPending},
		{ID: "gone", RoomID: "r1", ISOCheckIn: "2024-06-14", ISOCheckOut: "2024-06-16", Status: domainbooking.StatusCancelled},
	} {
		require.NoError(t, unit.Bookings().Save(ctx, b))
	}
	require.NoError(t, unit.Commit(ctx))
	return factory
}

func TestCheckAvailability(t *testing.T) {
	factory := seeded(t)
	skips := &skipCount{}
	h := &CheckAvailabilityHandler{UoWFactory: factory, Skips: skips}
	ctx := context.Background()

	res, err := h.Handle(ctx, CheckAvailabilityQuery{RoomID: "r1", CheckIn: "2024-06-11", CheckOut: "2024-06-13"})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, []string{"b1"}, res.Conflicts)
	assert.Equal(t, 1, skips.n)

	res, err = h.Handle(ctx, CheckAvailabilityQuery{RoomID: "r1", CheckIn: "2024-06-14", CheckOut: "2024-06-16"})
	require.NoError(t, err)
	assert.True(t, res.Available)

	_, err = h.Handle(ctx, CheckAvailabilityQuery{RoomID: "nope", CheckIn: "2024-06-14", CheckOut: "2024-06-16"})
	assert.ErrorIs(t, err, domainrooms.ErrRoomNotFound)
}

func TestRoomCalendar(t *testing.T) {
	factory := seeded(t)
	cal, err := (&RoomCalendarHandler{UoWFactory: factory}).Handle(context.Background(), RoomCalendarQuery{RoomID: "r1", From: "2024-06-01", To: "2024-07-01"})
	require.NoError(t, err)
	require.Len(t, cal.Blocks, 2)
	assert.Equal(t, "b1", cal.Blocks[0].BookingID)
	assert.Equal(t, "legacy", cal.Blocks[1].BookingID)
	assert.Equal(t, "2024-06-20", cal.Blocks[1].From)
}
