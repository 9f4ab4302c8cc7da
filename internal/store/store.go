// Package store persists room state in a machine-local key-value store.
// All side effects in the system are confined here; the game and session
// layers stay pure. Writes are unconditional overwrites: there is no
// optimistic locking, the logical clock on the state itself is the only
// merge tiebreak.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/fruitbowl/fruitbowl/internal/game"
)

var (
	// ErrNotFound is returned by Load when no state exists for a room code
	ErrNotFound = errors.New("room not found")

	// ErrUnavailable wraps persistence failures so callers can treat any
	// backend outage uniformly
	ErrUnavailable = errors.New("store unavailable")
)

// Store reads and writes the persisted state blob for a room
type Store interface {
	// Save serializes state and writes it under the room-scoped key,
	// overwriting any existing entry
	Save(ctx context.Context, state game.State) error

	// Load reads the state for a room code, or ErrNotFound
	Load(ctx context.Context, roomCode string) (game.State, error)

	// Clear removes the entry for a room code. Clearing an absent room is
	// not an error.
	Clear(ctx context.Context, roomCode string) error
}

// Key returns the persistence key for a room code
func Key(roomCode string) string {
	return fmt.Sprintf("room:%s", roomCode)
}
