package main

import (
	"context"

	"github.com/fruitbowl/fruitbowl/internal/session"
)

// CreateCmd hosts a new room
type CreateCmd struct {
	ClientFlags
}

func (c *CreateCmd) Run() error {
	return runClient(c.ClientFlags, func(ctx context.Context, sess *session.Session, cfg *session.Config) error {
		_, err := sess.Create(ctx, cfg.PlayerName)
		return err
	})
}
