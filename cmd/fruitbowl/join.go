package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fruitbowl/fruitbowl/internal/game"
	"github.com/fruitbowl/fruitbowl/internal/session"
	"github.com/fruitbowl/fruitbowl/internal/store"
)

// JoinCmd joins an existing room by its 4-digit code
type JoinCmd struct {
	Code string `kong:"arg,help='4-digit room code'"`
	ClientFlags
}

func (c *JoinCmd) Run() error {
	if len(c.Code) != 4 {
		return fmt.Errorf("room code must be 4 digits, got %q", c.Code)
	}

	return runClient(c.ClientFlags, func(ctx context.Context, sess *session.Session, cfg *session.Config) error {
		_, err := sess.Join(ctx, c.Code, cfg.PlayerName)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("no room with code %s, check the code with your host", c.Code)
		case errors.Is(err, game.ErrRoomFull):
			return fmt.Errorf("room %s is full, try joining another game", c.Code)
		}
		return err
	})
}
