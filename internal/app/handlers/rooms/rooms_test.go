package rooms

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/app/dto"
	domainrooms "hotelrates/internal/domain/rooms"
	"hotelrates/internal/infra/storage/memory"
)

type fakePhotos struct {
	keys []string
	err  error
}

func (f *fakePhotos) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example/" + key, nil
}

func TestUpsertListAndUploadPhoto(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewFactory(memory.NewStore())
	box := memory.NewOutbox(nil)
	upsert := &UpsertRoomHandler{UoWFactory: factory, Outbox: box}

	for _, r := range []dto.Room{
		{ID: "s-2", Name: "Sea Suite", Price: 320, Category: "Suite", Capacity: 3},
		{ID: "d-1", Name: "Deluxe", Price: 180, Category: "deluxe", Capacity: 2},
	} {
		_, err := upsert.Handle(ctx, UpsertRoomCommand{Room: r})
		require.NoError(t, err)
	}

	photos := &fakePhotos{}
	up := &UploadRoomPhotoHandler{UoWFactory: factory, Photos: photos, Outbox: box}
	room, err := up.Handle(ctx, UploadRoomPhotoCommand{RoomID: "s-2", ObjectKey: "rooms/s-2/a.jpg", ContentType: "image/jpeg", Reader: bytes.NewReader([]byte("x"))})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example/rooms/s-2/a.jpg"}, room.Photos)

	// a later upsert keeps photos
	_, err = upsert.Handle(ctx, UpsertRoomCommand{Room: dto.Room{ID: "s-2", Name: "Sea Suite", Price: 340, Category: "suite"}})
	require.NoError(t, err)

	list, err := (&ListRoomsHandler{UoWFactory: factory}).Handle(ctx, ListRoomsQuery{})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "d-1", list.Items[0].ID)
	assert.Equal(t, 340.0, list.Items[1].Price)
	assert.Len(t, list.Items[1].Photos, 1)

	suites, err := (&ListRoomsHandler{UoWFactory: factory}).Handle(ctx, ListRoomsQuery{Category: "SUITE"})
	require.NoError(t, err)
	require.Len(t, suites.Items, 1)

	require.NoError(t, box.Flush(ctx))
	assert.Len(t, box.Delivered(), 4)
}

func TestUploadFailuresLeaveRoomUntouched(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewFactory(memory.NewStore())
	_, err := (&UpsertRoomHandler{UoWFactory: factory}).Handle(ctx, UpsertRoomCommand{Room: dto.Room{ID: "d-1", Price: 100, Category: "deluxe"}})
	require.NoError(t, err)

	up := &UploadRoomPhotoHandler{UoWFactory: factory, Photos: &fakePhotos{err: errors.New("bucket gone")}}
	_, err = up.Handle(ctx, UploadRoomPhotoCommand{RoomID: "d-1", ObjectKey: "k", Reader: bytes.NewReader(nil)})
	assert.ErrorContains(t, err, "bucket gone")

	_, err = (&UploadRoomPhotoHandler{UoWFactory: factory}).Handle(ctx, UploadRoomPhotoCommand{RoomID: "d-1"})
	assert.ErrorIs(t, err, ErrPhotoStoreUnavailable)

	assert.ErrorIs(t, UpsertRoomCommand{Room: dto.Room{ID: "x", Price: -1, Category: "deluxe"}}.Validate(), domainrooms.ErrInvalidPrice)
}
