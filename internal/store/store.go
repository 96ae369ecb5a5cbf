package store

import (
	"context"
	"errors"
)

// ErrNotFound reports that no snapshot has ever been saved for a room.
var ErrNotFound = errors.New("snapshot not found")

// Store is the durable key/value contract the room coordinator relies on: one
// blob per room, read once at cold start, written after every mutating
// command.
type Store interface {
	Load(ctx context.Context, room string) ([]byte, error)
	Save(ctx context.Context, room string, data []byte) error
}
