package rooms

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"hotelrates/internal/domain/shared/events"
)

var (
	ErrRoomNotFound  = errors.New("rooms: room not found")
	ErrIDRequired    = errors.New("rooms: id is required")
	ErrInvalidPrice  = errors.New("rooms: price must be a finite non-negative number")
	ErrCategoryEmpty = errors.New("rooms: category is required")
)

type Category string

const (
	CategoryStandard     Category = "standard"
	CategoryDeluxe       Category = "deluxe"
	CategorySuite        Category = "suite"
	CategoryFamily       Category = "family"
	CategoryPresidential Category = "presidential"
)

// Room is owned by the back office; the pricing and availability engines only read it.
type Room struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Category    Category
	Capacity    int
	Amenities   []string
	Photos      []string
	Version     int64
	UpdatedAt   time.Time
}

type Repository interface {
	ByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context) ([]*Room, error)
	Save(ctx context.Context, room *Room) error
}

// Validate checks the attributes the engines depend on.
func (r *Room) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrIDRequired
	}
	if !ValidPrice(r.Price) {
		return ErrInvalidPrice
	}
	if strings.TrimSpace(string(r.Category)) == "" {
		return ErrCategoryEmpty
	}
	return nil
}

func ValidPrice(p float64) bool {
	return p >= 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// Copy returns a detached value safe to hand to callers.
func (r *Room) Copy() *Room {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Amenities = append([]string(nil), r.Amenities...)
	clone.Photos = append([]string(nil), r.Photos...)
	return &clone
}

// AddPhoto appends a photo URL once.
func (r *Room) AddPhoto(url string, now time.Time) {
	for _, p := range r.Photos {
		if p == url {
			return
		}
	}
	r.Photos = append(r.Photos, url)
	r.UpdatedAt = now.UTC()
}

// EventUpdated is published whenever a room is saved.
const EventUpdated = "room.updated"

func UpdatedEvent(id string, at time.Time) events.Named {
	return events.Named{Name: EventUpdated, Aggregate: id, Time: at.UTC()}
}
