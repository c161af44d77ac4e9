package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/handlers/support"
	"hotelrates/internal/app/middleware"
	"hotelrates/internal/app/outbox"
	"hotelrates/internal/app/uow"
	domainavailability "hotelrates/internal/domain/availability"
	domainbooking "hotelrates/internal/domain/booking"
	domainpricing "hotelrates/internal/domain/pricing"
	domainrooms "hotelrates/internal/domain/rooms"
	"hotelrates/internal/domain/shared/daterange"
)

const createBookingKey = "booking.create"

// CreateBookingCommand books a room for [CheckIn, CheckOut), YYYY-MM-DD.
type CreateBookingCommand struct {
	CommandID       string
	RoomID          string
	GuestName       string
	GuestEmail      string
	Guests          int
	CheckIn         string
	CheckOut        string
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &dto.Booking{} }

func (c CreateBookingCommand) Validate() error {
	if strings.TrimSpace(c.RoomID) == "" {
		return domainbooking.ErrRoomRequired
	}
	if strings.TrimSpace(c.GuestName) == "" {
		return domainbooking.ErrGuestRequired
	}
	if c.Guests <= 0 {
		return domainbooking.ErrInvalidGuests
	}
	_, err := daterange.ParseISO(c.CheckIn, c.CheckOut)
	return err
}

// BookingObserver is told about every booking the handler creates.
type BookingObserver interface {
	BookingCreated(roomID string, nights int, total float64)
	CountSkippedBookings(n int)
}

// CreateBookingHandler checks availability, prices the stay and stores the
// booking in one unit of work. The room lock taken before reading existing
// bookings makes the check and the insert atomic with respect to other
// bookings of the same room.
type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Observer   BookingObserver
	Now        func() time.Time
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*dto.Booking, error) {
	dr, err := daterange.ParseISO(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := support.Clock(h.Now)
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return nil, err
	}

	unit, execCtx, commit, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	room, err := unit.Rooms().ByID(execCtx, cmd.RoomID)
	if err != nil {
		if errors.Is(err, domainrooms.ErrRoomNotFound) {
			return nil, fmt.Errorf("%w: %s", domainpricing.ErrUnknownRoom, cmd.RoomID)
		}
		return nil, err
	}
	if room.Capacity > 0 && cmd.Guests > room.Capacity {
		return nil, domainbooking.ErrOverCapacity
	}

	if err := unit.Bookings().LockRoom(execCtx, room.ID); err != nil {
		return nil, err
	}
	existing, err := unit.Bookings().ListByRoom(execCtx, room.ID)
	if err != nil {
		return nil, err
	}
	report := domainavailability.Checker{Logger: h.Logger}.Check(room.ID, dr, existing)
	if h.Observer != nil && len(report.Skipped) > 0 {
		h.Observer.CountSkippedBookings(len(report.Skipped))
	}
	if !report.Available {
		return nil, fmt.Errorf("%w: conflicts with %s", domainbooking.ErrRoomUnavailable, strings.Join(report.Conflicts, ", "))
	}

	rules, err := unit.Rules().List(execCtx)
	if err != nil {
		return nil, err
	}
	price, err := domainpricing.Calculate(room, dr.CheckIn, dr.CheckOut, rules)
	if err != nil {
		return nil, err
	}

	id := cmd.CommandID
	if id == "" {
		id = uuid.NewString()
	}
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         id,
		RoomID:     room.ID,
		GuestName:  cmd.GuestName,
		GuestEmail: cmd.GuestEmail,
		Guests:     cmd.Guests,
		Range:      dr,
		Price:      price,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(execCtx, booking); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, booking.Drain()); err != nil {
		return nil, err
	}
	if err := commit(); err != nil {
		return nil, err
	}

	if h.Observer != nil {
		h.Observer.BookingCreated(room.ID, price.TotalNights, price.FinalTotal)
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "booking created",
			"booking_id", booking.ID,
			"room_id", room.ID,
			"nights", price.TotalNights,
			"total", price.FinalTotal,
		)
	}
	out := dto.MapBooking(booking)
	return &out, nil
}

var (
	_ commands.Handler[CreateBookingCommand, *dto.Booking] = (*CreateBookingHandler)(nil)
	_ middleware.IdempotentCommand                         = CreateBookingCommand{}
)
