package store

import (
	"context"
	"errors"
)

// Backend is the persistence port for the single serialized document.
// Implementations live under internal/storage; the store never knows which
// one it is talking to.
type Backend interface {
	// Read returns the stored document bytes, or ErrNoDocument when
	// nothing has been written yet.
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

var (
	// ErrNoDocument reports that the backend holds no document.
	ErrNoDocument = errors.New("no stored document")

	// ErrNotFound reports a mutation targeting an id that no longer
	// exists, e.g. a double delete. Treated as a failure signal, never a
	// crash.
	ErrNotFound = errors.New("not found")

	// ErrCorruptData reports an unrecognizable stored document. The store
	// recovers by discarding it and falling back to defaults; the error
	// lets the caller surface a notification.
	ErrCorruptData = errors.New("stored document is corrupt")
)
