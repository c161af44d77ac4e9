package booking

import (
	"context"
	"strings"
	"time"

	"hotelrates/internal/app/auth"
	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/handlers/support"
	"hotelrates/internal/app/outbox"
	"hotelrates/internal/app/queries"
	"hotelrates/internal/app/uow"
	domainbooking "hotelrates/internal/domain/booking"
)

const (
	cancelBookingKey    = "booking.cancel"
	markArrivedKey      = "booking.arrive"
	checkOutBookingKey  = "booking.check_out"
	markPaidKey         = "booking.paid"
	listRoomBookingsKey = "booking.list_by_room"
)

type CancelBookingCommand struct {
	auth.BackOffice
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string       { return cancelBookingKey }
func (c CancelBookingCommand) Validate() error   { return requireID(c.BookingID) }
func (c CancelBookingCommand) bookingID() string { return c.BookingID }

type MarkArrivedCommand struct {
	auth.BackOffice
	BookingID string
}

func (c MarkArrivedCommand) Key() string       { return markArrivedKey }
func (c MarkArrivedCommand) Validate() error   { return requireID(c.BookingID) }
func (c MarkArrivedCommand) bookingID() string { return c.BookingID }

type CheckOutBookingCommand struct {
	auth.BackOffice
	BookingID string
}

func (c CheckOutBookingCommand) Key() string       { return checkOutBookingKey }
func (c CheckOutBookingCommand) Validate() error   { return requireID(c.BookingID) }
func (c CheckOutBookingCommand) bookingID() string { return c.BookingID }

// MarkPaidCommand records a payment confirmed by the payment provider.
type MarkPaidCommand struct {
	auth.BackOffice
	BookingID       string
	Reference       string
	IdempotencyKeyV string
}

func (c MarkPaidCommand) Key() string            { return markPaidKey }
func (c MarkPaidCommand) Validate() error        { return requireID(c.BookingID) }
func (c MarkPaidCommand) bookingID() string      { return c.BookingID }
func (c MarkPaidCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c MarkPaidCommand) ResultPrototype() any   { return &dto.Booking{} }

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return domainbooking.ErrBookingNotFound
	}
	return nil
}

type bookingCommand interface {
	commands.Command
	bookingID() string
}

// TransitionHandler applies one status change to a stored booking.
type TransitionHandler[C bookingCommand] struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Apply      func(b *domainbooking.Booking, cmd C, now time.Time) error
}

func (h *TransitionHandler[C]) Handle(ctx context.Context, cmd C) (*dto.Booking, error) {
	unit, execCtx, commit, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	b, err := unit.Bookings().ByID(execCtx, cmd.bookingID())
	if err != nil {
		return nil, err
	}
	if err := h.Apply(b, cmd, support.Clock(h.Now)); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(execCtx, b); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, b.Drain()); err != nil {
		return nil, err
	}
	if err := commit(); err != nil {
		return nil, err
	}
	out := dto.MapBooking(b)
	return &out, nil
}

func NewCancelHandler(factory uow.UoWFactory, box outbox.Outbox) *TransitionHandler[CancelBookingCommand] {
	return &TransitionHandler[CancelBookingCommand]{UoWFactory: factory, Outbox: box,
		Apply: func(b *domainbooking.Booking, cmd CancelBookingCommand, now time.Time) error {
			return b.Cancel(cmd.Reason, now)
		}}
}

func NewArriveHandler(factory uow.UoWFactory, box outbox.Outbox) *TransitionHandler[MarkArrivedCommand] {
	return &TransitionHandler[MarkArrivedCommand]{UoWFactory: factory, Outbox: box,
		Apply: func(b *domainbooking.Booking, _ MarkArrivedCommand, now time.Time) error {
			return b.MarkArrived(now)
		}}
}

func NewCheckOutHandler(factory uow.UoWFactory, box outbox.Outbox) *TransitionHandler[CheckOutBookingCommand] {
	return &TransitionHandler[CheckOutBookingCommand]{UoWFactory: factory, Outbox: box,
		Apply: func(b *domainbooking.Booking, _ CheckOutBookingCommand, now time.Time) error {
			return b.CheckOutGuest(now)
		}}
}

func NewMarkPaidHandler(factory uow.UoWFactory, box outbox.Outbox) *TransitionHandler[MarkPaidCommand] {
	return &TransitionHandler[MarkPaidCommand]{UoWFactory: factory, Outbox: box,
		Apply: func(b *domainbooking.Booking, cmd MarkPaidCommand, now time.Time) error {
			return b.MarkPaid(cmd.Reference, now)
		}}
}

type ListRoomBookingsQuery struct {
	auth.BackOffice
	RoomID string
}

func (q ListRoomBookingsQuery) Key() string { return listRoomBookingsKey }

type ListRoomBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRoomBookingsHandler) Handle(ctx context.Context, q ListRoomBookingsQuery) (dto.BookingCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if _, err := unit.Rooms().ByID(execCtx, q.RoomID); err != nil {
		return dto.BookingCollection{}, err
	}
	bookings, err := unit.Bookings().ListByRoom(execCtx, q.RoomID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	items := make([]dto.Booking, 0, len(bookings))
	for i := range bookings {
		items = append(items, dto.MapBooking(&bookings[i]))
	}
	return dto.BookingCollection{Items: items}, nil
}

var (
	_ commands.Handler[CancelBookingCommand, *dto.Booking]          = (*TransitionHandler[CancelBookingCommand])(nil)
	_ queries.Handler[ListRoomBookingsQuery, dto.BookingCollection] = (*ListRoomBookingsHandler)(nil)
)
