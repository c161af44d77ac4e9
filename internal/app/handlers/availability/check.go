package availability

import (
	"context"
	"log/slog"
	"strings"

	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/handlers/support"
	"hotelrates/internal/app/queries"
	"hotelrates/internal/app/uow"
	domainavailability "hotelrates/internal/domain/availability"
	domainrooms "hotelrates/internal/domain/rooms"
	"hotelrates/internal/domain/shared/daterange"
)

const checkAvailabilityKey = "availability.check"

type CheckAvailabilityQuery struct {
	RoomID   string
	CheckIn  string
	CheckOut string
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

func (q CheckAvailabilityQuery) Validate() error {
	if strings.TrimSpace(q.RoomID) == "" {
		return domainrooms.ErrIDRequired
	}
	_, err := daterange.ParseISO(q.CheckIn, q.CheckOut)
	return err
}

// SkipCounter is told how many bookings a check had to ignore.
type SkipCounter interface {
	CountSkippedBookings(n int)
}

type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
	Skips      SkipCounter
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.Availability, error) {
	dr, err := daterange.ParseISO(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.Availability{}, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Availability{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if _, err := unit.Rooms().ByID(execCtx, q.RoomID); err != nil {
		return dto.Availability{}, err
	}
	bookings, err := unit.Bookings().ListByRoom(execCtx, q.RoomID)
	if err != nil {
		return dto.Availability{}, err
	}
	report := domainavailability.Checker{Logger: h.Logger}.Check(q.RoomID, dr, bookings)
	if h.Skips != nil && len(report.Skipped) > 0 {
		h.Skips.CountSkippedBookings(len(report.Skipped))
	}
	in, out := dr.ISO()
	return dto.Availability{
		RoomID:    q.RoomID,
		CheckIn:   in,
		CheckOut:  out,
		Available: report.Available,
		Conflicts: report.Conflicts,
	}, nil
}

var _ queries.Handler[CheckAvailabilityQuery, dto.Availability] = (*CheckAvailabilityHandler)(nil)
