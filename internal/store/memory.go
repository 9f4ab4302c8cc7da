package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fruitbowl/fruitbowl/internal/game"
)

// Memory is an in-process Store. Multiple sessions sharing one Memory see
// each other's writes immediately (read-your-writes), which makes it the
// backend for tests and for the in-process demo.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Save(_ context.Context, state game.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: encoding state: %v", ErrUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[Key(state.RoomCode)] = data
	return nil
}

func (m *Memory) Load(_ context.Context, roomCode string) (game.State, error) {
	m.mu.RLock()
	data, ok := m.blobs[Key(roomCode)]
	m.mu.RUnlock()

	if !ok {
		return game.State{}, ErrNotFound
	}

	var state game.State
	if err := json.Unmarshal(data, &state); err != nil {
		return game.State{}, fmt.Errorf("%w: decoding state: %v", ErrUnavailable, err)
	}
	return state, nil
}

func (m *Memory) Clear(_ context.Context, roomCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, Key(roomCode))
	return nil
}
