// Package availability decides whether a room can take a new stay given the
// bookings already recorded for it.
//
// The check is a read-only predicate over a caller supplied snapshot. It does
// not make the subsequent booking write exclusive: two callers can both see a
// room as free and both write. Callers that need a hard guarantee must hold a
// serializing write around check and insert (see booking.Repository.LockRoom).
package availability

import (
	"context"
	"log/slog"
	"time"

	"hotelrates/internal/domain/booking"
	"hotelrates/internal/domain/shared/daterange"
)

// Report explains a Check result.
type Report struct {
	Available bool
	// Conflicts lists ids of bookings that overlap the candidate stay.
	Conflicts []string
	// Skipped lists ids of bookings whose dates could not be resolved.
	Skipped []string
}

type Checker struct {
	Logger *slog.Logger
}

// IsRoomAvailable reports whether no non-cancelled booking of roomID overlaps
// [checkIn, checkOut). Bookings with unresolvable dates never conflict.
func IsRoomAvailable(roomID string, checkIn, checkOut time.Time, bookings []booking.Booking) bool {
	return Checker{}.Check(roomID, daterange.DateRange{CheckIn: checkIn, CheckOut: checkOut}, bookings).Available
}

// IsRoomAvailableISO is IsRoomAvailable for YYYY-MM-DD inputs. Only a
// malformed candidate range is an error.
func (c Checker) IsRoomAvailableISO(roomID, checkIn, checkOut string, bookings []booking.Booking) (bool, error) {
	dr, err := daterange.ParseISO(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return c.Check(roomID, dr, bookings).Available, nil
}

func (c Checker) Check(roomID string, candidate daterange.DateRange, bookings []booking.Booking) Report {
	report := Report{Available: true}
	for i := range bookings {
		b := &bookings[i]
		if b.RoomID != roomID || !b.Blocking() {
			continue
		}
		stay, err := b.Stay()
		if err != nil {
			report.Skipped = append(report.Skipped, b.ID)
			if c.Logger != nil {
				c.Logger.LogAttrs(context.Background(), slog.LevelWarn, "booking dates unresolvable, ignored for availability",
					slog.String("booking_id", b.ID),
					slog.String("room_id", b.RoomID),
					slog.String("iso_check_in", b.ISOCheckIn),
					slog.String("check_in", b.CheckIn),
					slog.Any("error", err),
				)
			}
			continue
		}
		if candidate.CheckIn.Before(stay.CheckOut) && candidate.CheckOut.After(stay.CheckIn) {
			report.Available = false
			report.Conflicts = append(report.Conflicts, b.ID)
		}
	}
	return report
}
