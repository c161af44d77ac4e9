package dto

import (
	"time"

	domainbooking "hotelrates/internal/domain/booking"
)

type Booking struct {
	ID            string         `json:"id"`
	RoomID        string         `json:"room_id"`
	GuestName     string         `json:"guest_name"`
	GuestEmail    string         `json:"guest_email,omitempty"`
	Guests        int            `json:"guests"`
	CheckIn       string         `json:"check_in"`
	CheckOut      string         `json:"check_out"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"payment_status"`
	TotalPrice    float64        `json:"total_price"`
	Nights        int            `json:"nights"`
	Price         PriceBreakdown `json:"price"`
	CreatedAt     time.Time      `json:"created_at"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	checkIn, checkOut := b.ISOCheckIn, b.ISOCheckOut
	if checkIn == "" {
		checkIn = b.CheckIn
	}
	if checkOut == "" {
		checkOut = b.CheckOut
	}
	return Booking{
		ID:            b.ID,
		RoomID:        b.RoomID,
		GuestName:     b.GuestName,
		GuestEmail:    b.GuestEmail,
		Guests:        b.Guests,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		TotalPrice:    b.TotalPrice,
		Nights:        b.Nights,
		Price:         MapBreakdown(b.Price),
		CreatedAt:     b.CreatedAt,
	}
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}
