package storage

import (
	"context"
	"io"
)

// Storage is the blob store behind the catalog. The returned handle is what
// the resource row records; Open/Delete take it back.
type Storage interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (handle string, err error)
	Open(ctx context.Context, handle string) (io.ReadCloser, error)
	Delete(ctx context.Context, handle string) error
}
