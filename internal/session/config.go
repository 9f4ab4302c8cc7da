package session

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config holds client configuration, loadable from an HCL file
type Config struct {
	PlayerName     string `hcl:"player_name,optional"`
	StorePath      string `hcl:"store_path,optional"`
	PollIntervalMs int    `hcl:"poll_interval_ms,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	LogFile        string `hcl:"log_file,optional"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		PlayerName:     "Player",
		PollIntervalMs: int(DefaultPollInterval / time.Millisecond),
		LogLevel:       "info",
		LogFile:        "fruitbowl.log",
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults; a present file is decoded and any omitted values are filled
// from the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.PlayerName == "" {
		config.PlayerName = defaults.PlayerName
	}
	if config.PollIntervalMs <= 0 {
		config.PollIntervalMs = defaults.PollIntervalMs
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.LogFile == "" {
		config.LogFile = defaults.LogFile
	}

	return &config, nil
}

// PollInterval returns the configured poll cadence as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}
