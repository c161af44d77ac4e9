package availability

import (
	"context"
	"strings"

	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/handlers/support"
	"hotelrates/internal/app/queries"
	"hotelrates/internal/app/uow"
	domainavailability "hotelrates/internal/domain/availability"
	domainrooms "hotelrates/internal/domain/rooms"
	"hotelrates/internal/domain/shared/daterange"
)

const getCalendarKey = "availability.calendar"

// RoomCalendarQuery lists booked ranges of a room within [From, To).
type RoomCalendarQuery struct {
	RoomID string
	From   string
	To     string
}

func (q RoomCalendarQuery) Key() string { return getCalendarKey }

func (q RoomCalendarQuery) Validate() error {
	if strings.TrimSpace(q.RoomID) == "" {
		return domainrooms.ErrIDRequired
	}
	_, err := daterange.ParseISO(q.From, q.To)
	return err
}

type RoomCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *RoomCalendarHandler) Handle(ctx context.Context, q RoomCalendarQuery) (dto.Calendar, error) {
	window, err := daterange.ParseISO(q.From, q.To)
	if err != nil {
		return dto.Calendar{}, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if _, err := unit.Rooms().ByID(execCtx, q.RoomID); err != nil {
		return dto.Calendar{}, err
	}
	bookings, err := unit.Bookings().ListByRoom(execCtx, q.RoomID)
	if err != nil {
		return dto.Calendar{}, err
	}
	from, to := window.ISO()
	return dto.Calendar{
		RoomID: q.RoomID,
		From:   from,
		To:     to,
		Blocks: dto.MapOccupancy(domainavailability.Calendar(q.RoomID, window, bookings)),
	}, nil
}

var _ queries.Handler[RoomCalendarQuery, dto.Calendar] = (*RoomCalendarHandler)(nil)
