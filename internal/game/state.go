package game

import (
	"fmt"
	rand "math/rand/v2"
	"strconv"

	"github.com/fruitbowl/fruitbowl/internal/card"
)

// MaxPlayers is the number of seats in a room. A game starts with exactly
// this many players.
const MaxPlayers = 4

// Player is one seat in a room. Players are owned by the State and have no
// independent lifecycle: created on join, mutated by deal/pass, removed on
// leave.
type Player struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Cards  []card.Kind `json:"cards"`
	IsHost bool        `json:"isHost"`
}

// State is the authoritative game state for one room. It has value
// semantics: operations never mutate their input, they return a fresh copy.
// The whole value is serialized to the store and replaced wholesale on sync.
//
// Player order is join order is turn order. LastUpdate is a logical clock,
// strictly increasing across successful operations, and is the sole tiebreak
// when merging a persisted state with a local one.
type State struct {
	RoomCode      string   `json:"roomCode"`
	Players       []Player `json:"players"`
	CurrentPlayer int      `json:"currentPlayer"`
	Started       bool     `json:"gameStarted"`
	Over          bool     `json:"gameOver"`
	WinnerID      string   `json:"winnerId,omitempty"`
	LastUpdate    int64    `json:"lastUpdate"`
}

// Clone returns a deep copy of s. Hands are copied so a clone never aliases
// the original's card slices.
func (s State) Clone() State {
	c := s
	c.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		cp := p
		if p.Cards != nil {
			cp.Cards = make([]card.Kind, len(p.Cards))
			copy(cp.Cards, p.Cards)
		}
		c.Players[i] = cp
	}
	return c
}

// FindPlayer returns the seat index of the player with the given id
func (s State) FindPlayer(id string) (int, bool) {
	for i, p := range s.Players {
		if p.ID == id {
			return i, true
		}
	}
	return 0, false
}

// CurrentTurn returns the player whose turn it is
func (s State) CurrentTurn() (Player, bool) {
	if s.CurrentPlayer < 0 || s.CurrentPlayer >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.CurrentPlayer], true
}

// NextIndex returns the seat after from in turn order
func (s State) NextIndex(from int) int {
	if len(s.Players) == 0 {
		return 0
	}
	return (from + 1) % len(s.Players)
}

// Winner returns the winning player once the game is over
func (s State) Winner() (Player, bool) {
	if !s.Over || s.WinnerID == "" {
		return Player{}, false
	}
	i, ok := s.FindPlayer(s.WinnerID)
	if !ok {
		return Player{}, false
	}
	return s.Players[i], true
}

// HasFourOfAKind reports whether p holds a complete winning hand: exactly
// HandSize cards, all the same kind.
func HasFourOfAKind(p Player) bool {
	if len(p.Cards) != card.HandSize {
		return false
	}
	first := p.Cards[0]
	for _, c := range p.Cards[1:] {
		if c != first {
			return false
		}
	}
	return true
}

// NewRoomCode generates a 4-digit numeric room code. Codes are not checked
// for collisions; the store is machine-local and stale rooms are overwritten
// by design.
func NewRoomCode(rng *rand.Rand) string {
	n := 1000 + intN(rng, 9000)
	return strconv.Itoa(n)
}

// NewPlayerID generates an opaque player id, unique per process-join
func NewPlayerID(rng *rand.Rand) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 9)
	for i := range b {
		b[i] = alphabet[intN(rng, len(alphabet))]
	}
	return fmt.Sprintf("player_%s", b)
}

// bump advances the logical clock. The result is always strictly greater
// than prev even when wall clocks collide across processes.
func bump(prev, now int64) int64 {
	if now <= prev {
		return prev + 1
	}
	return now
}

func intN(rng *rand.Rand, n int) int {
	if rng != nil {
		return rng.IntN(n)
	}
	return rand.IntN(n)
}
