package memory

import (
	"context"
	"sync"

	"hotelrates/internal/app/policies"
	domainbooking "hotelrates/internal/domain/booking"
	domainpricing "hotelrates/internal/domain/pricing"
	domainrooms "hotelrates/internal/domain/rooms"
	domainsiteconfig "hotelrates/internal/domain/siteconfig"
)

// Store holds committed state. Repositories never hand out pointers into it.
type Store struct {
	mu       sync.RWMutex
	rooms    map[string]*domainrooms.Room
	bookings map[string]*domainbooking.Booking
	rules    map[string]domainpricing.Rule
	config   *domainsiteconfig.Config

	Changes *Broadcaster
}

func NewStore() *Store {
	return &Store{
		rooms:    make(map[string]*domainrooms.Room),
		bookings: make(map[string]*domainbooking.Booking),
		rules:    make(map[string]domainpricing.Rule),
		Changes:  NewBroadcaster(),
	}
}

func (s *Store) room(id string) (*domainrooms.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r.Copy(), ok
}

func (s *Store) roomList() []*domainrooms.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domainrooms.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r.Copy())
	}
	return out
}

func (s *Store) booking(id string) (*domainbooking.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, false
	}
	return copyBooking(b), true
}

func (s *Store) bookingsOf(roomID string) []*domainbooking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range s.bookings {
		if b.RoomID == roomID {
			out = append(out, copyBooking(b))
		}
	}
	return out
}

func (s *Store) rule(id string) (domainpricing.Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	return copyRule(r), ok
}

func (s *Store) ruleList() []domainpricing.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domainpricing.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, copyRule(r))
	}
	return out
}

func (s *Store) siteConfig() (domainsiteconfig.Config, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return domainsiteconfig.Config{}, false
	}
	return domainsiteconfig.Merge(domainsiteconfig.Config{}, *s.config), true
}

// apply commits staged writes atomically and announces them.
func (s *Store) apply(ctx context.Context, st *staged) {
	s.mu.Lock()
	for id, r := range st.rooms {
		s.rooms[id] = r
	}
	for id, b := range st.bookings {
		s.bookings[id] = b
	}
	for id, r := range st.rules {
		s.rules[id] = r
	}
	for id := range st.deletedRules {
		delete(s.rules, id)
	}
	if st.config != nil {
		cfg := *st.config
		s.config = &cfg
	}
	s.mu.Unlock()

	if s.Changes == nil {
		return
	}
	for _, ch := range st.changes {
		s.Changes.Publish(ch)
	}
}

func copyBooking(b *domainbooking.Booking) *domainbooking.Booking {
	clone := &domainbooking.Booking{
		ID:            b.ID,
		RoomID:        b.RoomID,
		GuestName:     b.GuestName,
		GuestEmail:    b.GuestEmail,
		Guests:        b.Guests,
		ISOCheckIn:    b.ISOCheckIn,
		ISOCheckOut:   b.ISOCheckOut,
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		TotalPrice:    b.TotalPrice,
		Nights:        b.Nights,
		Price:         b.Price.Copy(),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		Version:       b.Version,
	}
	return clone
}

func copyRule(r domainpricing.Rule) domainpricing.Rule {
	r.DaysOfWeek = append([]int(nil), r.DaysOfWeek...)
	r.RoomCategories = append([]string(nil), r.RoomCategories...)
	if r.MinNights != nil {
		n := *r.MinNights
		r.MinNights = &n
	}
	if r.StartDate != nil {
		t := *r.StartDate
		r.StartDate = &t
	}
	if r.EndDate != nil {
		t := *r.EndDate
		r.EndDate = &t
	}
	return r
}

type staged struct {
	rooms        map[string]*domainrooms.Room
	bookings     map[string]*domainbooking.Booking
	rules        map[string]domainpricing.Rule
	deletedRules map[string]bool
	config       *domainsiteconfig.Config
	changes      []policies.Change
}

func newStaged() *staged {
	return &staged{
		rooms:        make(map[string]*domainrooms.Room),
		bookings:     make(map[string]*domainbooking.Booking),
		rules:        make(map[string]domainpricing.Rule),
		deletedRules: make(map[string]bool),
	}
}
