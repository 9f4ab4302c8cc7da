package card

import (
	"errors"
	rand "math/rand/v2"
)

// ErrDeckSize is returned when a deck cannot be split evenly into hands
var ErrDeckSize = errors.New("deck size does not match player count")

// BuildDeck returns a full deck in fixed construction order: CopiesPerKind
// copies of each kind, kind-major.
func BuildDeck() []Kind {
	deck := make([]Kind, 0, DeckSize)
	for k := Kind(0); k < NumKinds; k++ {
		for i := 0; i < CopiesPerKind; i++ {
			deck = append(deck, k)
		}
	}
	return deck
}

// Shuffle returns a uniformly shuffled copy of deck using Fisher-Yates.
// The caller's slice is never mutated. A nil rng falls back to the global
// random source.
func Shuffle(rng *rand.Rand, deck []Kind) []Kind {
	shuffled := make([]Kind, len(deck))
	copy(shuffled, deck)
	for i := len(shuffled) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Deal splits deck into contiguous HandSize-card hands, in order.
// Requires hands*HandSize == len(deck).
func Deal(deck []Kind, hands int) ([][]Kind, error) {
	if hands*HandSize != len(deck) {
		return nil, ErrDeckSize
	}
	dealt := make([][]Kind, hands)
	for i := 0; i < hands; i++ {
		hand := make([]Kind, HandSize)
		copy(hand, deck[i*HandSize:(i+1)*HandSize])
		dealt[i] = hand
	}
	return dealt, nil
}
