package session

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/fruitbowl/fruitbowl/internal/card"
	"github.com/fruitbowl/fruitbowl/internal/game"
)

// Bot plays a session automatically: it starts the game once the room is
// full (host only), and on its turn sheds a card outside its majority kind
// to the next player. Used by the demo command and the end-to-end tests.
type Bot struct {
	sess   *Session
	logger *log.Logger
	clock  quartz.Clock
	think  time.Duration
}

// NewBot wraps sess with automated play. think is the pause between looks
// at the table.
func NewBot(sess *Session, logger *log.Logger, clock quartz.Clock, think time.Duration) *Bot {
	if think <= 0 {
		think = 50 * time.Millisecond
	}
	return &Bot{
		sess:   sess,
		logger: logger.WithPrefix("bot"),
		clock:  clock,
		think:  think,
	}
}

// Run plays until the game is over or ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	ticker := b.clock.NewTicker(b.think, "bot")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := b.act(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

func (b *Bot) act(ctx context.Context) (bool, error) {
	st := b.sess.State()
	if st.Over {
		return true, nil
	}

	if !st.Started {
		if b.sess.IsHost() && len(st.Players) == game.MaxPlayers {
			if _, err := b.sess.Start(ctx); err != nil && !errors.Is(err, game.ErrNotEnoughPlayers) {
				return false, err
			}
		}
		return false, nil
	}

	if !b.sess.IsMyTurn() {
		return false, nil
	}

	idx, ok := st.FindPlayer(b.sess.PlayerID())
	if !ok {
		return true, nil
	}
	hand := st.Players[idx].Cards
	if len(hand) == 0 {
		return false, nil
	}

	choice := shedIndex(hand)
	next, err := b.sess.PassToNext(ctx, choice)
	if err != nil {
		// Our view was stale; the next poll sorts it out
		if errors.Is(err, game.ErrNotYourTurn) || errors.Is(err, game.ErrGameOver) {
			return false, nil
		}
		return false, err
	}

	b.logger.Debug("passed card",
		"room", next.RoomCode,
		"card", hand[choice],
		"handSize", len(hand)-1)
	return next.Over, nil
}

// shedIndex picks the card to give away: the first card that is not of the
// hand's most common kind, or card 0 when the hand is uniform
func shedIndex(hand []card.Kind) int {
	counts := make(map[card.Kind]int, len(hand))
	for _, c := range hand {
		counts[c]++
	}
	majority := hand[0]
	for c, n := range counts {
		if n > counts[majority] {
			majority = c
		}
	}
	for i, c := range hand {
		if c != majority {
			return i
		}
	}
	return 0
}
