package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/domain/pricing"
	"hotelrates/internal/domain/shared/daterange"
)

func newPending(t *testing.T) *Booking {
	t.Helper()
	dr, err := daterange.ParseISO("2024-06-10", "2024-06-12")
	require.NoError(t, err)
	b, err := NewBooking(CreateParams{
		ID:        "bk-1",
		RoomID:    "room-101",
		GuestName: " Ada Lovelace ",
		Guests:    2,
		Range:     dr,
		Price:     pricing.Breakdown{TotalNights: 2, FinalTotal: 420},
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestNewBookingFillsDerivedFields(t *testing.T) {
	b := newPending(t)
	assert.Equal(t, "Ada Lovelace", b.GuestName)
	assert.Equal(t, "2024-06-10", b.ISOCheckIn)
	assert.Equal(t, "2024-06-12", b.ISOCheckOut)
	assert.Equal(t, "Jun 10, 2024", b.CheckIn)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentUnpaid, b.PaymentStatus)
	assert.Equal(t, 420.0, b.TotalPrice)
	assert.Equal(t, 2, b.Nights)

	evs := b.Drain()
	require.Len(t, evs, 1)
	assert.Equal(t, "booking.created", evs[0].EventName())
	assert.Empty(t, b.PendingEvents())
}

func TestNewBookingValidation(t *testing.T) {
	dr, _ := daterange.ParseISO("2024-06-10", "2024-06-12")
	_, err := NewBooking(CreateParams{RoomID: "r", GuestName: "", Guests: 1, Range: dr})
	assert.ErrorIs(t, err, ErrGuestRequired)
	_, err = NewBooking(CreateParams{RoomID: "", GuestName: "x", Guests: 1, Range: dr})
	assert.ErrorIs(t, err, ErrRoomRequired)
	_, err = NewBooking(CreateParams{RoomID: "r", GuestName: "x", Guests: 0, Range: dr})
	assert.ErrorIs(t, err, ErrInvalidGuests)
}

func TestStatusTransitions(t *testing.T) {
	now := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

	b := newPending(t)
	assert.ErrorIs(t, b.CheckOutGuest(now), ErrInvalidState)
	require.NoError(t, b.MarkArrived(now))
	assert.ErrorIs(t, b.MarkArrived(now), ErrInvalidState)
	require.NoError(t, b.CheckOutGuest(now))
	assert.Equal(t, StatusCheckedOut, b.Status)
	assert.ErrorIs(t, b.Cancel("late", now), ErrInvalidState)

	c := newPending(t)
	require.NoError(t, c.MarkPaid("pay_1", now))
	require.NoError(t, c.Cancel("guest request", now))
	assert.Equal(t, StatusCancelled, c.Status)
	assert.Equal(t, PaymentRefunded, c.PaymentStatus)
	assert.False(t, c.Blocking())
	assert.ErrorIs(t, c.MarkPaid("pay_2", now), ErrInvalidState)
}

func TestStayPrefersISOFields(t *testing.T) {
	b := Booking{ISOCheckIn: "2024-06-11", ISOCheckOut: "2024-06-15", CheckIn: "garbage"}
	dr, err := b.Stay()
	require.NoError(t, err)
	assert.Equal(t, "[2024-06-11, 2024-06-15)", dr.String())
}

func TestStayFallsBackToDisplayDates(t *testing.T) {
	cases := []struct{ in, out string }{
		{"Jun 11, 2024", "Jun 15, 2024"},
		{"June 11, 2024", "June 15, 2024"},
		{"Tue Jun 11 2024", "Sat Jun 15 2024"},
		{"06/11/2024", "06/15/2024"},
		{"2024-06-11T15:00:00Z", "2024-06-15T11:00:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			b := Booking{CheckIn: tc.in, CheckOut: tc.out}
			dr, err := b.Stay()
			require.NoError(t, err)
			assert.Equal(t, "[2024-06-11, 2024-06-15)", dr.String())
		})
	}
}

func TestStayUnresolvable(t *testing.T) {
	cases := []Booking{
		{},
		{CheckIn: "someday", CheckOut: "Jun 15, 2024"},
		{ISOCheckIn: "2024-13-40", ISOCheckOut: "2024-06-15"},
		{ISOCheckIn: "2024/06/11", ISOCheckOut: "2024-06-15", CheckIn: "soon"},
	}
	for _, b := range cases {
		_, err := b.Stay()
		assert.ErrorIs(t, err, ErrUnresolvableDate)
	}
}

func TestStayKeepsDegenerateRanges(t *testing.T) {
	zero := Booking{ISOCheckIn: "2024-06-11", ISOCheckOut: "2024-06-11"}
	dr, err := zero.Stay()
	require.NoError(t, err)
	assert.Equal(t, dr.CheckIn, dr.CheckOut)

	inverted := Booking{ISOCheckIn: "2024-06-12", ISOCheckOut: "2024-06-10"}
	dr, err = inverted.Stay()
	require.NoError(t, err)
	assert.True(t, dr.CheckOut.Before(dr.CheckIn))
}

func TestStayFallsBackToDisplayWhenISOIsMalformed(t *testing.T) {
	b := Booking{ISOCheckIn: "2024/06/11", ISOCheckOut: "2024/06/13", CheckIn: "Jun 11, 2024", CheckOut: "Jun 13, 2024"}
	dr, err := b.Stay()
	require.NoError(t, err)
	assert.Equal(t, "[2024-06-11, 2024-06-13)", dr.String())
}

func TestValidateDateRange(t *testing.T) {
	now := time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)
	today, _ := daterange.ParseISO("2024-06-10", "2024-06-11")
	past, _ := daterange.ParseISO("2024-06-09", "2024-06-11")
	assert.NoError(t, ValidateDateRange(today, now))
	assert.ErrorIs(t, ValidateDateRange(past, now), ErrCheckInInPast)
}
