// Package session owns a client's view of a room. A Session holds the
// current authoritative state, applies intents through the pure operations
// in internal/game, persists each transition, and reports every state change
// through a single callback. It also runs the polling synchronization loop
// that converges independent clients on the last-written state.
package session

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/fruitbowl/fruitbowl/internal/game"
	"github.com/fruitbowl/fruitbowl/internal/store"
)

// DefaultPollInterval is the sync cadence between store reads
const DefaultPollInterval = 300 * time.Millisecond

// Session is the single owner of the local game state. All mutation flows
// through its intent methods; the Presentation Layer only reads states
// delivered by the OnStateChange callback.
type Session struct {
	store    store.Store
	logger   *log.Logger
	clock    quartz.Clock
	rng      *rand.Rand
	interval time.Duration

	mu       sync.Mutex
	inRoom   bool
	playerID string
	state    game.State

	onStateChange func(game.State)
}

// Option configures a Session
type Option func(*Session)

// WithClock injects the clock used for polling and the logical timestamp
// source. Tests pass a quartz mock.
func WithClock(clock quartz.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithRNG injects the random source for room codes, player ids and deals
func WithRNG(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithPollInterval overrides the sync loop cadence
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// New creates a session against the given store
func New(st store.Store, logger *log.Logger, opts ...Option) *Session {
	s := &Session{
		store:    st,
		logger:   logger.WithPrefix("session"),
		clock:    quartz.NewReal(),
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnStateChange registers the render callback. It is invoked after every
// local mutation and whenever the sync loop adopts a newer persisted state.
// The callback receives a deep copy and must not call back into the session
// synchronously.
func (s *Session) OnStateChange(fn func(game.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStateChange = fn
}

// State returns a deep copy of the current state
func (s *Session) State() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// PlayerID returns this client's player id, empty before create/join
func (s *Session) PlayerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID
}

// InRoom reports whether the session is attached to a room
func (s *Session) InRoom() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inRoom
}

// IsMyTurn reports whether the local player is the current player
func (s *Session) IsMyTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.state.CurrentTurn()
	return ok && current.ID == s.playerID
}

// IsHost reports whether the local player created the room
func (s *Session) IsHost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.state.FindPlayer(s.playerID)
	return ok && s.state.Players[i].IsHost
}

// Create makes a new room with this client as host and persists it
func (s *Session) Create(ctx context.Context, name string) (game.State, error) {
	s.mu.Lock()
	st := game.NewRoom(s.rng, name, s.now())
	s.state = st
	s.playerID = st.Players[0].ID
	s.inRoom = true
	s.mu.Unlock()

	if err := s.store.Save(ctx, st); err != nil {
		return game.State{}, err
	}

	s.logger.Info("created room", "room", st.RoomCode, "player", s.playerID)
	s.notify(st)
	return st.Clone(), nil
}

// Join loads the room for code, seats this client and persists the result.
// Surfaces store.ErrNotFound for an unknown code and game.ErrRoomFull for a
// full room; the store is untouched on failure.
func (s *Session) Join(ctx context.Context, code, name string) (game.State, error) {
	existing, err := s.store.Load(ctx, code)
	if err != nil {
		return game.State{}, err
	}

	s.mu.Lock()
	next, err := game.Join(existing, s.rng, name, s.now())
	if err != nil {
		s.mu.Unlock()
		return game.State{}, err
	}
	s.state = next
	s.playerID = next.Players[len(next.Players)-1].ID
	s.inRoom = true
	s.mu.Unlock()

	if err := s.store.Save(ctx, next); err != nil {
		return game.State{}, err
	}

	s.logger.Info("joined room", "room", code, "player", s.playerID, "players", len(next.Players))
	s.notify(next)
	return next.Clone(), nil
}

// Start deals cards and begins the game
func (s *Session) Start(ctx context.Context) (game.State, error) {
	return s.apply(ctx, func(st game.State, now int64) (game.State, error) {
		return game.Start(st, s.rng, now)
	})
}

// PassCard passes the card at cardIndex in the local player's hand to the
// player seated at targetIndex. The selected card is a parameter, never part
// of the shared state.
func (s *Session) PassCard(ctx context.Context, cardIndex, targetIndex int) (game.State, error) {
	return s.apply(ctx, func(st game.State, now int64) (game.State, error) {
		return game.PassCard(st, s.playerID, cardIndex, targetIndex, now)
	})
}

// PassToNext passes the card at cardIndex to the next player in turn order
// after the local player
func (s *Session) PassToNext(ctx context.Context, cardIndex int) (game.State, error) {
	return s.apply(ctx, func(st game.State, now int64) (game.State, error) {
		idx, ok := st.FindPlayer(s.playerID)
		if !ok {
			return st, game.ErrNotYourTurn
		}
		return game.PassCard(st, s.playerID, cardIndex, st.NextIndex(idx), now)
	})
}

// Leave removes this client from the persisted room and detaches the
// session, which stops further polling-driven mutation. The freshest
// persisted state is rewritten so the departure is visible to the remaining
// players; the last player out clears the room entry.
func (s *Session) Leave(ctx context.Context) error {
	s.mu.Lock()
	if !s.inRoom {
		s.mu.Unlock()
		return nil
	}
	code := s.state.RoomCode
	playerID := s.playerID
	local := s.state.Clone()
	now := s.now()

	s.inRoom = false
	s.playerID = ""
	s.state = game.State{}
	s.mu.Unlock()

	persisted, err := s.store.Load(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		// Fall back to the local copy so leaving still detaches cleanly
		s.logger.Warn("loading room for leave", "room", code, "error", err)
		persisted = local
	}

	next, err := game.Leave(persisted, playerID, now)
	if err != nil {
		return err
	}

	if len(next.Players) == 0 {
		s.logger.Info("left room, clearing empty room", "room", code)
		return s.store.Clear(ctx, code)
	}

	s.logger.Info("left room", "room", code, "player", playerID)
	return s.store.Save(ctx, next)
}

// Refresh forces an immediate poll outside the ticker cadence
func (s *Session) Refresh(ctx context.Context) {
	s.pollOnce(ctx)
}

// Run drives the synchronization loop until ctx is cancelled. Store errors
// are logged and the loop continues at the next tick; they are never fatal.
func (s *Session) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval, "sync")
	defer ticker.Stop()

	s.logger.Debug("sync loop started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

// pollOnce reads the persisted state and adopts it wholesale when its
// logical clock is strictly ahead of ours. Two clients writing in the same
// poll window race: the larger timestamp wins and the other write is lost.
// That is the store's contract, not a bug to paper over here.
func (s *Session) pollOnce(ctx context.Context) {
	s.mu.Lock()
	if !s.inRoom || s.state.Over {
		s.mu.Unlock()
		return
	}
	code := s.state.RoomCode
	s.mu.Unlock()

	persisted, err := s.store.Load(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Debug("room missing from store", "room", code)
		return
	}
	if err != nil {
		s.logger.Warn("sync poll failed", "room", code, "error", err)
		return
	}

	s.mu.Lock()
	if !s.inRoom || persisted.LastUpdate <= s.state.LastUpdate {
		s.mu.Unlock()
		return
	}
	s.state = persisted
	s.mu.Unlock()

	s.logger.Debug("adopted newer state",
		"room", code,
		"lastUpdate", persisted.LastUpdate,
		"players", len(persisted.Players),
		"started", persisted.Started)
	s.notify(persisted)
}

// apply runs a pure operation against the current state, persists the
// result and notifies. On failure the local state is left untouched and the
// operation's error is returned as-is.
func (s *Session) apply(ctx context.Context, op func(game.State, int64) (game.State, error)) (game.State, error) {
	s.mu.Lock()
	next, err := op(s.state, s.now())
	if err != nil {
		s.mu.Unlock()
		return game.State{}, err
	}
	s.state = next
	s.mu.Unlock()

	if err := s.store.Save(ctx, next); err != nil {
		return game.State{}, err
	}

	s.notify(next)
	return next.Clone(), nil
}

func (s *Session) notify(st game.State) {
	s.mu.Lock()
	fn := s.onStateChange
	s.mu.Unlock()
	if fn != nil {
		fn(st.Clone())
	}
}

// now is the logical clock source, read under s.mu
func (s *Session) now() int64 {
	return s.clock.Now().UnixMilli()
}
