package dto

import "hotelrates/internal/domain/availability"

type Availability struct {
	RoomID    string   `json:"room_id"`
	CheckIn   string   `json:"check_in"`
	CheckOut  string   `json:"check_out"`
	Available bool     `json:"available"`
	Conflicts []string `json:"conflicts,omitempty"`
}

type CalendarBlock struct {
	BookingID string `json:"booking_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Status    string `json:"status"`
}

type Calendar struct {
	RoomID string          `json:"room_id"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Blocks []CalendarBlock `json:"blocks"`
}

func MapOccupancy(o []availability.Occupancy) []CalendarBlock {
	blocks := make([]CalendarBlock, 0, len(o))
	for _, b := range o {
		from, to := b.Range.ISO()
		blocks = append(blocks, CalendarBlock{BookingID: b.BookingID, From: from, To: to, Status: string(b.Status)})
	}
	return blocks
}
