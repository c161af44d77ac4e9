package dto

import (
	"time"

	domainrooms "hotelrates/internal/domain/rooms"
)

type Room struct {
	ID          string    `json:"id" toml:"id"`
	Name        string    `json:"name" toml:"name"`
	Description string    `json:"description,omitempty" toml:"description"`
	Price       float64   `json:"price" toml:"price"`
	Category    string    `json:"category" toml:"category"`
	Capacity    int       `json:"capacity" toml:"capacity"`
	Amenities   []string  `json:"amenities" toml:"amenities"`
	Photos      []string  `json:"photos" toml:"photos"`
	UpdatedAt   time.Time `json:"updated_at" toml:"updated_at"`
}

func MapRoom(r *domainrooms.Room) Room {
	return Room{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    string(r.Category),
		Capacity:    r.Capacity,
		Amenities:   append([]string{}, r.Amenities...),
		Photos:      append([]string{}, r.Photos...),
		UpdatedAt:   r.UpdatedAt,
	}
}

type RoomCollection struct {
	Items []Room `json:"items"`
}
