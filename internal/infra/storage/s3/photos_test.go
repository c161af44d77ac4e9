package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhotoStoreValidatesOptions(t *testing.T) {
	_, err := NewPhotoStore(Options{Bucket: "b"}, nil)
	assert.ErrorIs(t, err, ErrEndpointRequired)
	_, err = NewPhotoStore(Options{Endpoint: "minio:9000"}, nil)
	assert.ErrorIs(t, err, ErrBucketRequired)
}

func TestObjectURLUsesPublicEndpoint(t *testing.T) {
	store, err := NewPhotoStore(Options{
		Endpoint:       "http://minio:9000",
		PublicEndpoint: "https://cdn.example.com/",
		Bucket:         "photos",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/photos/rooms/r-1/a.jpg", store.objectURL("/rooms/r-1/a.jpg"))

	plain, err := NewPhotoStore(Options{Endpoint: "minio:9000", Bucket: "photos"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/photos/x.png", plain.objectURL("x.png"))
}

func TestUploadRejectsEmptyKey(t *testing.T) {
	store, err := NewPhotoStore(Options{Endpoint: "minio:9000", Bucket: "photos"}, nil)
	require.NoError(t, err)
	_, err = store.Upload(context.Background(), " / ", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrKeyRequired)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "minio:9000", hostOf("http://minio:9000"))
	assert.Equal(t, "minio:9000", hostOf("minio:9000"))
}
