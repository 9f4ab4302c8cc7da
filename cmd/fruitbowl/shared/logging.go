package shared

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a console logger writing to stderr
func SetupLogger(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// SetupFileLogger configures a logger writing to path. Used while the TUI
// owns the terminal. The returned closer must be called on shutdown.
func SetupFileLogger(path string, debug bool) (*log.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return logger, f.Close, nil
}
