package rooms

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"hotelrates/internal/app/auth"
	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/handlers/support"
	"hotelrates/internal/app/outbox"
	"hotelrates/internal/app/queries"
	"hotelrates/internal/app/uow"
	domainrooms "hotelrates/internal/domain/rooms"
	"hotelrates/internal/domain/shared/events"
)

const (
	upsertRoomKey = "rooms.upsert"
	listRoomsKey  = "rooms.list"
)

type UpsertRoomCommand struct {
	auth.BackOffice
	Room dto.Room
}

func (c UpsertRoomCommand) Key() string { return upsertRoomKey }

func (c UpsertRoomCommand) Validate() error {
	room := toDomain(c.Room)
	return room.Validate()
}

type UpsertRoomHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

// Handle creates or replaces a room. Photos are managed separately and are
// kept from the stored room.
func (h *UpsertRoomHandler) Handle(ctx context.Context, cmd UpsertRoomCommand) (*dto.Room, error) {
	room := toDomain(cmd.Room)
	if err := room.Validate(); err != nil {
		return nil, err
	}
	unit, execCtx, commit, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	existing, err := unit.Rooms().ByID(execCtx, room.ID)
	switch {
	case err == nil:
		room.Photos = existing.Photos
		room.Version = existing.Version
	case !errors.Is(err, domainrooms.ErrRoomNotFound):
		return nil, err
	}
	now := support.Clock(h.Now)
	room.UpdatedAt = now
	if err := unit.Rooms().Save(execCtx, room); err != nil {
		return nil, err
	}
	ev := domainrooms.UpdatedEvent(room.ID, now)
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, []events.DomainEvent{ev}); err != nil {
		return nil, err
	}
	if err := commit(); err != nil {
		return nil, err
	}
	out := dto.MapRoom(room)
	return &out, nil
}

func toDomain(r dto.Room) *domainrooms.Room {
	return &domainrooms.Room{
		ID:          strings.TrimSpace(r.ID),
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Price:       r.Price,
		Category:    domainrooms.Category(strings.ToLower(strings.TrimSpace(r.Category))),
		Capacity:    r.Capacity,
		Amenities:   append([]string(nil), r.Amenities...),
	}
}

type ListRoomsQuery struct {
	Category string
}

func (q ListRoomsQuery) Key() string { return listRoomsKey }

type ListRoomsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRoomsHandler) Handle(ctx context.Context, q ListRoomsQuery) (dto.RoomCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RoomCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	rooms, err := unit.Rooms().List(execCtx)
	if err != nil {
		return dto.RoomCollection{}, err
	}
	category := strings.ToLower(strings.TrimSpace(q.Category))
	items := make([]dto.Room, 0, len(rooms))
	for _, r := range rooms {
		if category != "" && string(r.Category) != category {
			continue
		}
		items = append(items, dto.MapRoom(r))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return dto.RoomCollection{Items: items}, nil
}

var (
	_ commands.Handler[UpsertRoomCommand, *dto.Room]      = (*UpsertRoomHandler)(nil)
	_ queries.Handler[ListRoomsQuery, dto.RoomCollection] = (*ListRoomsHandler)(nil)
)
