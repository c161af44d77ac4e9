package booking

import "time"

type Created struct {
	BookingID  string    `json:"booking_id"`
	RoomID     string    `json:"room_id"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	TotalPrice float64   `json:"total_price"`
	At         time.Time `json:"at"`
}

func (e Created) EventName() string     { return "booking.created" }
func (e Created) AggregateID() string   { return e.BookingID }
func (e Created) OccurredAt() time.Time { return e.At }

type Arrived struct {
	BookingID string    `json:"booking_id"`
	RoomID    string    `json:"room_id"`
	At        time.Time `json:"at"`
}

func (e Arrived) EventName() string     { return "booking.arrived" }
func (e Arrived) AggregateID() string   { return e.BookingID }
func (e Arrived) OccurredAt() time.Time { return e.At }

type CheckedOut struct {
	BookingID string    `json:"booking_id"`
	RoomID    string    `json:"room_id"`
	At        time.Time `json:"at"`
}

func (e CheckedOut) EventName() string     { return "booking.checked_out" }
func (e CheckedOut) AggregateID() string   { return e.BookingID }
func (e CheckedOut) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	BookingID string    `json:"booking_id"`
	RoomID    string    `json:"room_id"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return e.BookingID }
func (e Cancelled) OccurredAt() time.Time { return e.At }

type Paid struct {
	BookingID string    `json:"booking_id"`
	Reference string    `json:"reference"`
	Amount    float64   `json:"amount"`
	At        time.Time `json:"at"`
}

func (e Paid) EventName() string     { return "booking.paid" }
func (e Paid) AggregateID() string   { return e.BookingID }
func (e Paid) OccurredAt() time.Time { return e.At }
