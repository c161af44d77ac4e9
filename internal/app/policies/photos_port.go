package policies

import (
	"context"
	"io"
)

// PhotoStore persists room photos and returns their public URL.
type PhotoStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}
