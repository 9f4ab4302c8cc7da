package main

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/fruitbowl/fruitbowl/cmd/fruitbowl/shared"
	"github.com/fruitbowl/fruitbowl/internal/randutil"
	"github.com/fruitbowl/fruitbowl/internal/session"
	"github.com/fruitbowl/fruitbowl/internal/store"
	"github.com/fruitbowl/fruitbowl/internal/tui"
)

// ClientFlags are shared by the create and join subcommands
type ClientFlags struct {
	Name         string `kong:"help='Your display name (overrides config)'"`
	Config       string `kong:"default='fruitbowl.hcl',help='Path to HCL config file'"`
	Store        string `kong:"help='Path to the shared room database (overrides config)'"`
	PollInterval int    `kong:"help='Sync poll interval in milliseconds (overrides config)'"`
	Debug        bool   `kong:"help='Enable debug logging'"`
	Seed         *int64 `kong:"help='Deterministic RNG seed (optional)'"`
}

// resolveConfig loads the HCL config and layers flag overrides on top
func (f *ClientFlags) resolveConfig() (*session.Config, error) {
	cfg, err := session.LoadConfig(f.Config)
	if err != nil {
		return nil, err
	}
	if f.Name != "" {
		cfg.PlayerName = f.Name
	}
	if f.Store != "" {
		cfg.StorePath = f.Store
	}
	if f.PollInterval > 0 {
		cfg.PollIntervalMs = f.PollInterval
	}
	if f.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// runClient wires config, store, session and TUI together, applies the
// initial intent (create or join) and runs the sync loop beside the UI
func runClient(flags ClientFlags, intent func(context.Context, *session.Session, *session.Config) error) error {
	cfg, err := flags.resolveConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file
	logger, closeLog, err := shared.SetupFileLogger(cfg.LogFile, cfg.LogLevel == "debug")
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	storePath := cfg.StorePath
	if storePath == "" {
		storePath, err = store.DefaultPath()
		if err != nil {
			return err
		}
	}
	st, err := store.OpenSQLite(storePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	seed := time.Now().UnixNano()
	if flags.Seed != nil {
		seed = *flags.Seed
		logger.Info("using deterministic seed", "seed", seed)
	}

	sess := session.New(st, logger,
		session.WithRNG(randutil.New(seed)),
		session.WithPollInterval(cfg.PollInterval()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := tui.New(ctx, sess, logger)

	if err := intent(ctx, sess, cfg); err != nil {
		return err
	}

	return runUI(ctx, cancel, sess, model, logger)
}

// runUI runs the Bubble Tea program and the synchronization loop until
// either exits
func runUI(ctx context.Context, cancel context.CancelFunc, sess *session.Session, model *tui.Model, logger *log.Logger) error {
	prog := tea.NewProgram(model, tea.WithAltScreen())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := sess.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		logger.Error("sync loop failed", "error", err)
		return err
	})

	g.Go(func() error {
		// Quitting the UI tears down the sync loop as well
		defer cancel()
		_, err := prog.Run()
		return err
	})

	return g.Wait()
}
