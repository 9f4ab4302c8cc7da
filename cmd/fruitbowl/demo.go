package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/fruitbowl/fruitbowl/cmd/fruitbowl/shared"
	"github.com/fruitbowl/fruitbowl/internal/randutil"
	"github.com/fruitbowl/fruitbowl/internal/session"
	"github.com/fruitbowl/fruitbowl/internal/store"
)

// DemoCmd plays a complete game between four automated players sharing an
// in-memory store, exercising the whole create/join/start/pass/win flow
type DemoCmd struct {
	Debug        bool   `kong:"help='Enable debug logging'"`
	Seed         *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	PollInterval int    `kong:"default='50',help='Sync poll interval in milliseconds'"`
	Timeout      int    `kong:"default='60',help='Abort the demo after this many seconds'"`
}

func (c *DemoCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("using deterministic seed", "seed", seed)
	}

	mem := store.NewMemory()
	clock := quartz.NewReal()
	interval := time.Duration(c.PollInterval) * time.Millisecond

	baseCtx := shared.SetupSignalHandler(logger)
	ctx, cancel := context.WithTimeout(baseCtx, time.Duration(c.Timeout)*time.Second)
	defer cancel()

	// Seat the table: one host, three joiners, each with its own rng so
	// player ids stay distinct even under a fixed seed
	newSession := func(i int) *session.Session {
		return session.New(mem, logger,
			session.WithRNG(randutil.New(seed+int64(i))),
			session.WithClock(clock),
			session.WithPollInterval(interval),
		)
	}

	host := newSession(0)
	created, err := host.Create(ctx, "Host")
	if err != nil {
		return err
	}
	logger.Info("demo room created", "room", created.RoomCode)

	sessions := []*session.Session{host}
	for i := 1; i < 4; i++ {
		sess := newSession(i)
		if _, err := sess.Join(ctx, created.RoomCode, fmt.Sprintf("Player %d", i+1)); err != nil {
			return err
		}
		sessions = append(sessions, sess)
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, sess := range sessions {
		g.Go(func() error {
			err := sess.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	// Bots drive the game; once every bot has seen the game end, stop the
	// sync loops too
	g.Go(func() error {
		defer cancel()

		var bots errgroup.Group
		for _, sess := range sessions {
			bot := session.NewBot(sess, logger, clock, interval/2)
			bots.Go(func() error {
				err := bot.Run(gctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		}
		if err := bots.Wait(); err != nil {
			return err
		}

		final := host.State()
		if winner, ok := final.Winner(); ok {
			logger.Info("demo finished", "winner", winner.Name, "room", final.RoomCode)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("demo timed out after %ds", c.Timeout)
	}
	return nil
}
