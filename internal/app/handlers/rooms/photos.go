package rooms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"hotelrates/internal/app/auth"
	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/handlers/support"
	"hotelrates/internal/app/outbox"
	"hotelrates/internal/app/policies"
	"hotelrates/internal/app/uow"
	domainrooms "hotelrates/internal/domain/rooms"
	"hotelrates/internal/domain/shared/events"
)

const uploadRoomPhotoKey = "rooms.photos.upload"

var (
	ErrPhotoStoreUnavailable = errors.New("rooms: photo store unavailable")
	ErrPhotoRequired         = errors.New("rooms: photo is required")
)

type UploadRoomPhotoCommand struct {
	auth.BackOffice
	RoomID      string
	ObjectKey   string
	ContentType string
	Reader      io.Reader
}

func (c UploadRoomPhotoCommand) Key() string { return uploadRoomPhotoKey }

func (c UploadRoomPhotoCommand) Validate() error {
	if strings.TrimSpace(c.RoomID) == "" {
		return domainrooms.ErrIDRequired
	}
	if c.Reader == nil || strings.TrimSpace(c.ObjectKey) == "" {
		return ErrPhotoRequired
	}
	return nil
}

type UploadRoomPhotoHandler struct {
	UoWFactory uow.UoWFactory
	Photos     policies.PhotoStore
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *UploadRoomPhotoHandler) Handle(ctx context.Context, cmd UploadRoomPhotoCommand) (*dto.Room, error) {
	if h.Photos == nil {
		return nil, ErrPhotoStoreUnavailable
	}
	unit, execCtx, commit, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	room, err := unit.Rooms().ByID(execCtx, cmd.RoomID)
	if err != nil {
		return nil, err
	}
	publicURL, err := h.Photos.Upload(ctx, cmd.ObjectKey, cmd.Reader, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	now := support.Clock(h.Now)
	room.AddPhoto(publicURL, now)
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
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "room photo added", "room_id", room.ID, "object_key", cmd.ObjectKey)
	}
	out := dto.MapRoom(room)
	return &out, nil
}

var _ commands.Handler[UploadRoomPhotoCommand, *dto.Room] = (*UploadRoomPhotoHandler)(nil)
