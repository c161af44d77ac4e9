package availability

import (
	"sort"

	"hotelrates/internal/domain/booking"
	"hotelrates/internal/domain/shared/daterange"
)

// Occupancy is a booked range shown on the room calendar.
type Occupancy struct {
	BookingID string
	Range     daterange.DateRange
	Status    booking.Status
}

// Calendar lists the non-cancelled stays of roomID that intersect window,
// ordered by check-in. Unresolvable bookings are left out, as in Check.
func Calendar(roomID string, window daterange.DateRange, bookings []booking.Booking) []Occupancy {
	out := make([]Occupancy, 0)
	for i := range bookings {
		b := &bookings[i]
		if b.RoomID != roomID || !b.Blocking() {
			continue
		}
		stay, err := b.Stay()
		if err != nil || !stay.Overlaps(window) {
			continue
		}
		out = append(out, Occupancy{BookingID: b.ID, Range: stay, Status: b.Status})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range.CheckIn.Before(out[j].Range.CheckIn)
	})
	return out
}
