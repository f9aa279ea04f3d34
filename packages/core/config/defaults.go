package config

import (
	"os"
	"path/filepath"
)

// DefaultTimeout is the request timeout in milliseconds
const DefaultTimeout = 10000

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:      DefaultTimeout,
		Mock:         BoolPtr(true),
		ForceFailure: BoolPtr(false),
		ForceReplay:  BoolPtr(false),
		LogLevel:     "info",
		LogFormat:    "console",
		NoColor:      BoolPtr(false),
	}
}

// DefaultDataDir is where fixtures live when no dataDir is configured:
// <user config dir>/urlmock, or .urlmock in the working directory when the
// user config dir cannot be determined.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".urlmock"
	}
	return filepath.Join(dir, "urlmock")
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.BaseURL == defaults.BaseURL &&
		c.Timeout == defaults.Timeout &&
		c.Token == defaults.Token &&
		len(c.Headers) == 0 &&
		c.GetMock() == defaults.GetMock() &&
		c.GetForceFailure() == defaults.GetForceFailure() &&
		c.GetForceReplay() == defaults.GetForceReplay() &&
		c.DataDir == defaults.DataDir &&
		c.SettingsPath == defaults.SettingsPath &&
		c.RateLimit == defaults.RateLimit &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects
}
