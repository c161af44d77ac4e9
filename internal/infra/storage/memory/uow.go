package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"hotelrates/internal/app/policies"
	"hotelrates/internal/app/uow"
	domainbooking "hotelrates/internal/domain/booking"
	domainpricing "hotelrates/internal/domain/pricing"
	domainrooms "hotelrates/internal/domain/rooms"
	domainsiteconfig "hotelrates/internal/domain/siteconfig"
)

var (
	// ErrFactoryMisconfigured indicates a factory without a store.
	ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")
	ErrUnitClosed           = errors.New("memory: unit of work already finished")
	ErrReadOnly             = errors.New("memory: write in read-only unit of work")
)

// Factory hands out units over one Store. Write units run one at a time, so
// a check followed by an insert inside a unit cannot interleave with another
// writer. Read-only units never block.
type Factory struct {
	Store *Store

	writeMu sync.Mutex
}

func NewFactory(store *Store) *Factory {
	return &Factory{Store: store}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	u := &Unit{store: f.Store, readOnly: opts.ReadOnly, staged: newStaged()}
	if !opts.ReadOnly {
		f.writeMu.Lock()
		u.release = f.writeMu.Unlock
	}
	return u, nil
}

// Unit buffers writes until Commit. Reads see the unit's own writes.
type Unit struct {
	store    *Store
	readOnly bool
	staged   *staged
	release  func()

	mu   sync.Mutex
	done bool
}

func (u *Unit) Rooms() domainrooms.Repository           { return roomRepo{u} }
func (u *Unit) Bookings() domainbooking.Repository      { return bookingRepo{u} }
func (u *Unit) Rules() domainpricing.RuleRepository     { return ruleRepo{u} }
func (u *Unit) SiteConfig() domainsiteconfig.Repository { return siteConfigRepo{u} }

func (u *Unit) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return ErrUnitClosed
	}
	u.finish()
	if !u.readOnly {
		u.store.apply(ctx, u.staged)
	}
	u.unlock()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return nil
	}
	u.finish()
	u.unlock()
	return nil
}

func (u *Unit) finish() {
	u.done = true
}

func (u *Unit) unlock() {
	if u.release != nil {
		u.release()
		u.release = nil
	}
}

func (u *Unit) writable() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return ErrUnitClosed
	}
	if u.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (u *Unit) record(collection, id, op string) {
	u.staged.changes = append(u.staged.changes, policies.Change{
		Collection: collection,
		DocumentID: id,
		Operation:  op,
		At:         time.Now().UTC(),
	})
}

type roomRepo struct{ u *Unit }

func (r roomRepo) ByID(ctx context.Context, id string) (*domainrooms.Room, error) {
	if room, ok := r.u.staged.rooms[id]; ok {
		return room.Copy(), nil
	}
	room, ok := r.u.store.room(id)
	if !ok {
		return nil, domainrooms.ErrRoomNotFound
	}
	return room, nil
}

func (r roomRepo) List(ctx context.Context) ([]*domainrooms.Room, error) {
	byID := make(map[string]*domainrooms.Room)
	for _, room := range r.u.store.roomList() {
		byID[room.ID] = room
	}
	for id, room := range r.u.staged.rooms {
		byID[id] = room.Copy()
	}
	out := make([]*domainrooms.Room, 0, len(byID))
	for _, room := range byID {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r roomRepo) Save(ctx context.Context, room *domainrooms.Room) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if err := room.Validate(); err != nil {
		return err
	}
	room.Version++
	r.u.staged.rooms[room.ID] = room.Copy()
	r.u.record(policies.CollectionRooms, room.ID, "upsert")
	return nil
}

type bookingRepo struct{ u *Unit }

func (r bookingRepo) ByID(ctx context.Context, id string) (*domainbooking.Booking, error) {
	if b, ok := r.u.staged.bookings[id]; ok {
		return copyBooking(b), nil
	}
	b, ok := r.u.store.booking(id)
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return b, nil
}

// ListByRoom returns the room's bookings ordered by creation time.
func (r bookingRepo) ListByRoom(ctx context.Context, roomID string) ([]domainbooking.Booking, error) {
	byID := make(map[string]*domainbooking.Booking)
	for _, b := range r.u.store.bookingsOf(roomID) {
		byID[b.ID] = b
	}
	for id, b := range r.u.staged.bookings {
		if b.RoomID == roomID {
			byID[id] = copyBooking(b)
		}
	}
	out := make([]domainbooking.Booking, 0, len(byID))
	for _, b := range byID {
		out = append(out, *b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r bookingRepo) Save(ctx context.Context, b *domainbooking.Booking) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	b.Version++
	r.u.staged.bookings[b.ID] = copyBooking(b)
	r.u.record(policies.CollectionBookings, b.ID, "upsert")
	return nil
}

// LockRoom only checks the unit is writable; write units are already
// serialized by the factory.
func (r bookingRepo) LockRoom(ctx context.Context, roomID string) error {
	return r.u.writable()
}

type ruleRepo struct{ u *Unit }

func (r ruleRepo) ByID(ctx context.Context, id string) (*domainpricing.Rule, error) {
	if r.u.staged.deletedRules[id] {
		return nil, domainpricing.ErrRuleNotFound
	}
	if rule, ok := r.u.staged.rules[id]; ok {
		c := copyRule(rule)
		return &c, nil
	}
	rule, ok := r.u.store.rule(id)
	if !ok {
		return nil, domainpricing.ErrRuleNotFound
	}
	return &rule, nil
}

// List returns rules in id order so pricing output is reproducible.
func (r ruleRepo) List(ctx context.Context) ([]domainpricing.Rule, error) {
	byID := make(map[string]domainpricing.Rule)
	for _, rule := range r.u.store.ruleList() {
		byID[rule.ID] = rule
	}
	for id, rule := range r.u.staged.rules {
		byID[id] = copyRule(rule)
	}
	for id := range r.u.staged.deletedRules {
		delete(byID, id)
	}
	out := make([]domainpricing.Rule, 0, len(byID))
	for _, rule := range byID {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ruleRepo) Save(ctx context.Context, rule *domainpricing.Rule) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	delete(r.u.staged.deletedRules, rule.ID)
	r.u.staged.rules[rule.ID] = copyRule(*rule)
	r.u.record(policies.CollectionRules, rule.ID, "upsert")
	return nil
}

func (r ruleRepo) Delete(ctx context.Context, id string) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if _, err := r.ByID(ctx, id); err != nil {
		return err
	}
	delete(r.u.staged.rules, id)
	r.u.staged.deletedRules[id] = true
	r.u.record(policies.CollectionRules, id, "delete")
	return nil
}

type siteConfigRepo struct{ u *Unit }

func (r siteConfigRepo) Load(ctx context.Context) (domainsiteconfig.Config, bool, error) {
	if r.u.staged.config != nil {
		return domainsiteconfig.Merge(domainsiteconfig.Config{}, *r.u.staged.config), true, nil
	}
	cfg, ok := r.u.store.siteConfig()
	return cfg, ok, nil
}

func (r siteConfigRepo) Save(ctx context.Context, cfg domainsiteconfig.Config) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	clone := domainsiteconfig.Merge(domainsiteconfig.Config{}, cfg)
	r.u.staged.config = &clone
	r.u.record(policies.CollectionSiteConfig, "site", "upsert")
	return nil
}

var _ uow.UoWFactory = (*Factory)(nil)
