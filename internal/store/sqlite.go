package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fruitbowl/fruitbowl/internal/game"
)

// The stand-in for the browser's localStorage: a per-machine SQLite file
// that every local client process opens. One row per room, whole state as a
// JSON blob.
var schema = `CREATE TABLE IF NOT EXISTS rooms (
  key        TEXT PRIMARY KEY,
  state      TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);`

// SQLite is a file-backed Store shared by all client processes on one
// machine
type SQLite struct {
	db *sqlx.DB
}

// DefaultPath returns the default database location under the user cache
// directory
func DefaultPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache dir: %w", err)
	}
	return filepath.Join(base, "fruitbowl", "rooms.db"), nil
}

// OpenSQLite opens (creating if necessary) the room database at path
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating store dir: %v", ErrUnavailable, err)
	}

	// _busy_timeout keeps concurrent local clients from tripping over
	// transient SQLITE_BUSY during the poll window
	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrUnavailable, path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: applying schema: %v", ErrUnavailable, err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Save(ctx context.Context, state game.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: encoding state: %v", ErrUnavailable, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rooms (key, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		Key(state.RoomCode), string(data), state.LastUpdate)
	if err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrUnavailable, Key(state.RoomCode), err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, roomCode string) (game.State, error) {
	var blob string
	err := s.db.GetContext(ctx, &blob, `SELECT state FROM rooms WHERE key = ?`, Key(roomCode))
	if errors.Is(err, sql.ErrNoRows) {
		return game.State{}, ErrNotFound
	}
	if err != nil {
		return game.State{}, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, Key(roomCode), err)
	}

	var state game.State
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return game.State{}, fmt.Errorf("%w: decoding %s: %v", ErrUnavailable, Key(roomCode), err)
	}
	return state, nil
}

func (s *SQLite) Clear(ctx context.Context, roomCode string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE key = ?`, Key(roomCode)); err != nil {
		return fmt.Errorf("%w: clearing %s: %v", ErrUnavailable, Key(roomCode), err)
	}
	return nil
}
