package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"hotelrates/internal/domain/pricing"
	"hotelrates/internal/domain/shared/daterange"
	"hotelrates/internal/domain/shared/events"
)

var (
	ErrInvalidState    = errors.New("booking: invalid status transition")
	ErrBookingNotFound = errors.New("booking: not found")
	ErrGuestRequired   = errors.New("booking: guest name is required")
	ErrRoomRequired    = errors.New("booking: room id is required")
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrRoomUnavailable = errors.New("booking: room is not available for the selected dates")
	ErrOverCapacity    = errors.New("booking: guests exceed room capacity")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusArrived    Status = "arrived"
	StatusCheckedOut Status = "checked-out"
	StatusCancelled  Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking references a room by id. ISOCheckIn/ISOCheckOut hold the stay as
// YYYY-MM-DD strings; CheckIn/CheckOut keep the human formatted dates that
// older records carry instead of the ISO fields.
type Booking struct {
	ID            string
	RoomID        string
	GuestName     string
	GuestEmail    string
	Guests        int
	ISOCheckIn    string
	ISOCheckOut   string
	CheckIn       string
	CheckOut      string
	Status        Status
	PaymentStatus PaymentStatus
	TotalPrice    float64
	Nights        int
	Price         pricing.Breakdown
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id string) (*Booking, error)
	ListByRoom(ctx context.Context, roomID string) ([]Booking, error)
	Save(ctx context.Context, booking *Booking) error
	// LockRoom serializes booking writes for a room until the surrounding
	// unit of work ends.
	LockRoom(ctx context.Context, roomID string) error
}

type CreateParams struct {
	ID         string
	RoomID     string
	GuestName  string
	GuestEmail string
	Guests     int
	Range      daterange.DateRange
	Price      pricing.Breakdown
	CreatedAt  time.Time
}

func NewBooking(p CreateParams) (*Booking, error) {
	if strings.TrimSpace(p.RoomID) == "" {
		return nil, ErrRoomRequired
	}
	if strings.TrimSpace(p.GuestName) == "" {
		return nil, ErrGuestRequired
	}
	if p.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if err := p.Range.Validate(); err != nil {
		return nil, err
	}
	in, out := p.Range.ISO()
	now := p.CreatedAt.UTC()
	b := &Booking{
		ID:            p.ID,
		RoomID:        p.RoomID,
		GuestName:     strings.TrimSpace(p.GuestName),
		GuestEmail:    strings.TrimSpace(p.GuestEmail),
		Guests:        p.Guests,
		ISOCheckIn:    in,
		ISOCheckOut:   out,
		CheckIn:       p.Range.CheckIn.Format(DisplayLayout),
		CheckOut:      p.Range.CheckOut.Format(DisplayLayout),
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		TotalPrice:    p.Price.FinalTotal,
		Nights:        p.Price.TotalNights,
		Price:         p.Price.Copy(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(Created{BookingID: b.ID, RoomID: b.RoomID, CheckIn: in, CheckOut: out, TotalPrice: b.TotalPrice, At: now})
	return b, nil
}

// Blocking reports whether the booking occupies its room.
func (b *Booking) Blocking() bool {
	return b.Status != StatusCancelled
}

func (b *Booking) MarkArrived(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.touch(StatusArrived, now)
	b.Record(Arrived{BookingID: b.ID, RoomID: b.RoomID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckOutGuest(now time.Time) error {
	if b.Status != StatusArrived {
		return ErrInvalidState
	}
	b.touch(StatusCheckedOut, now)
	b.Record(CheckedOut{BookingID: b.ID, RoomID: b.RoomID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusArrived:
	default:
		return ErrInvalidState
	}
	b.touch(StatusCancelled, now)
	if b.PaymentStatus == PaymentPaid {
		b.PaymentStatus = PaymentRefunded
	}
	b.Record(Cancelled{BookingID: b.ID, RoomID: b.RoomID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// MarkPaid records a settled payment reported by the payment provider.
func (b *Booking) MarkPaid(reference string, now time.Time) error {
	if b.Status == StatusCancelled || b.PaymentStatus != PaymentUnpaid {
		return ErrInvalidState
	}
	b.PaymentStatus = PaymentPaid
	b.UpdatedAt = now.UTC()
	b.Record(Paid{BookingID: b.ID, Reference: reference, Amount: b.TotalPrice, At: b.UpdatedAt})
	return nil
}

func (b *Booking) touch(s Status, now time.Time) {
	b.Status = s
	b.UpdatedAt = now.UTC()
}
