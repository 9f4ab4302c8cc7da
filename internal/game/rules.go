package game

import (
	rand "math/rand/v2"

	"github.com/fruitbowl/fruitbowl/internal/card"
)

// NewRoom creates a fresh room with the given host seated first. The host's
// seat is seat 0, so the host leads once the game starts.
func NewRoom(rng *rand.Rand, hostName string, now int64) State {
	return State{
		RoomCode: NewRoomCode(rng),
		Players: []Player{{
			ID:     NewPlayerID(rng),
			Name:   hostName,
			Cards:  []card.Kind{},
			IsHost: true,
		}},
		LastUpdate: bump(0, now),
	}
}

// Join seats a new player in the room. Fails with ErrRoomFull when all
// MaxPlayers seats are taken; the input state is returned unchanged on
// failure.
func Join(s State, rng *rand.Rand, name string, now int64) (State, error) {
	if len(s.Players) >= MaxPlayers {
		return s, ErrRoomFull
	}

	next := s.Clone()
	next.Players = append(next.Players, Player{
		ID:    NewPlayerID(rng),
		Name:  name,
		Cards: []card.Kind{},
	})
	next.LastUpdate = bump(s.LastUpdate, now)
	return next, nil
}

// Start deals the shuffled deck and begins the game. Fails with
// ErrNotEnoughPlayers unless the room holds exactly MaxPlayers.
func Start(s State, rng *rand.Rand, now int64) (State, error) {
	if s.Over {
		return s, ErrGameOver
	}
	if len(s.Players) != MaxPlayers {
		return s, ErrNotEnoughPlayers
	}

	deck := card.Shuffle(rng, card.BuildDeck())
	hands, err := card.Deal(deck, len(s.Players))
	if err != nil {
		return s, err
	}

	next := s.Clone()
	for i := range next.Players {
		next.Players[i].Cards = hands[i]
	}
	next.Started = true
	next.CurrentPlayer = 0
	next.LastUpdate = bump(s.LastUpdate, now)
	return next, nil
}

// PassCard moves one card from the acting player's hand to the end of the
// target's hand and advances the turn. The win condition is checked only
// against the receiver: a player can only reach four-of-a-kind by receiving,
// since passing removes a card. When the receiver wins the turn is not
// advanced and the game stops.
func PassCard(s State, fromID string, cardIndex, toIndex int, now int64) (State, error) {
	if s.Over {
		return s, ErrGameOver
	}

	current, ok := s.CurrentTurn()
	if !ok || current.ID != fromID {
		return s, ErrNotYourTurn
	}
	if cardIndex < 0 || cardIndex >= len(current.Cards) {
		return s, ErrInvalidCard
	}
	if toIndex < 0 || toIndex >= len(s.Players) || toIndex == s.CurrentPlayer {
		return s, ErrInvalidTarget
	}

	next := s.Clone()
	from := &next.Players[next.CurrentPlayer]
	to := &next.Players[toIndex]

	passed := from.Cards[cardIndex]
	from.Cards = append(from.Cards[:cardIndex], from.Cards[cardIndex+1:]...)
	to.Cards = append(to.Cards, passed)

	next.LastUpdate = bump(s.LastUpdate, now)

	if HasFourOfAKind(*to) {
		next.Over = true
		next.WinnerID = to.ID
		return next, nil
	}

	next.CurrentPlayer = next.NextIndex(next.CurrentPlayer)
	return next, nil
}

// Leave removes a player from the room. CurrentPlayer is adjusted so it
// keeps pointing at the same logical next player: decremented when the
// removal was before it, clamped modulo the new length otherwise. Leaving
// with an unknown id is a no-op.
func Leave(s State, playerID string, now int64) (State, error) {
	idx, ok := s.FindPlayer(playerID)
	if !ok {
		return s, nil
	}

	next := s.Clone()
	next.Players = append(next.Players[:idx], next.Players[idx+1:]...)

	if idx < next.CurrentPlayer {
		next.CurrentPlayer--
	}
	if len(next.Players) == 0 {
		next.CurrentPlayer = 0
	} else {
		next.CurrentPlayer %= len(next.Players)
	}

	next.LastUpdate = bump(s.LastUpdate, now)
	return next, nil
}
