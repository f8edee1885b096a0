// Package storage is the physical byte store behind the file registry. Keys
// are opaque strings constructed by the registry; the gateway never
// interprets or sanitizes them.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("object not found")

// Gateway is the narrow contract the document store consumes. Delete is
// idempotent: removing an absent key succeeds.
type Gateway interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
