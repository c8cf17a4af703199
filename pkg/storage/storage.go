package storage

import (
	"context"
	"io"
)

// ImageStore persists listing images and returns a public URL for each.
type ImageStore interface {
	Save(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error)
	Remove(ctx context.Context, url string) error
}
