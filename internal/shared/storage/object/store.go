package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a key does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// Object is an open handle to a stored blob. Callers must close Body.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64 // -1 when unknown
}

// Reader opens stored objects by key. The service never writes blobs.
type Reader interface {
	Open(ctx context.Context, key string) (*Object, error)
}
