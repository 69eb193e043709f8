package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Storage is a browser-scoped key-value store. Each session owns its own namespace,
// the same way every browser profile owns its local storage.
//
// Writes replace the previous value. There is no versioning: concurrent writers on the
// same session and key end with the last write.
type Storage interface {
	GetItem(ctx context.Context, sessionID, key string) (string, error)
	SetItem(ctx context.Context, sessionID, key, value string) error
	RemoveItem(ctx context.Context, sessionID, key string) error
}
