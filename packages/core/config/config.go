package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Header is a single extra request header. Headers are applied in order, so
// a later entry with the same name replaces an earlier one.
type Header struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Config represents the urlmock configuration file
type Config struct {
	BaseURL         string   `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	Timeout         int      `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	Token           string   `json:"token,omitempty" yaml:"token,omitempty"`
	Headers         []Header `json:"headers,omitempty" yaml:"headers,omitempty"`
	Mock            *bool    `json:"mock,omitempty" yaml:"mock,omitempty"`
	ForceFailure    *bool    `json:"forceFailure,omitempty" yaml:"forceFailure,omitempty"`
	ForceReplay     *bool    `json:"forceReplay,omitempty" yaml:"forceReplay,omitempty"`
	DataDir         string   `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`
	SettingsPath    string   `json:"settingsPath,omitempty" yaml:"settingsPath,omitempty"`
	RateLimit       float64  `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"` // requests per second
	FollowRedirects *bool    `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	MaxRedirects    int      `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	LogLevel        string   `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFormat       string   `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
	NoColor         *bool    `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// RuntimeConfig is the per-call snapshot the dispatcher works from.
// It is passed by value and never mutated after Runtime returns it.
type RuntimeConfig struct {
	BaseURL      string
	Timeout      time.Duration
	Token        string
	MockEnabled  bool
	ForceFailure bool
	ForceReplay  bool
	Headers      []Header
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetMock returns whether live responses are captured, defaulting to true
func (c *Config) GetMock() bool {
	return getBool(c.Mock, true)
}

// GetForceFailure returns the synthetic failure flag, defaulting to false
func (c *Config) GetForceFailure() bool {
	return getBool(c.ForceFailure, false)
}

// GetForceReplay returns the replay flag, defaulting to false
func (c *Config) GetForceReplay() bool {
	return getBool(c.ForceReplay, false)
}

// GetFollowRedirects returns whether redirects are followed, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetDataDir returns the fixture root, falling back to DefaultDataDir.
func (c *Config) GetDataDir() string {
	if c.DataDir != "" {
		return os.ExpandEnv(c.DataDir)
	}
	return DefaultDataDir()
}

// GetSettingsPath returns the SQLite settings file, defaulting to
// settings.db inside the data directory.
func (c *Config) GetSettingsPath() string {
	if c.SettingsPath != "" {
		return os.ExpandEnv(c.SettingsPath)
	}
	return filepath.Join(c.GetDataDir(), "settings.db")
}

// Runtime resolves environment references and returns the snapshot used by
// request dispatch.
func (c *Config) Runtime() RuntimeConfig {
	headers := make([]Header, 0, len(c.Headers))
	for _, h := range c.Headers {
		headers = append(headers, Header{Name: h.Name, Value: os.ExpandEnv(h.Value)})
	}

	return RuntimeConfig{
		BaseURL:      strings.TrimSpace(c.BaseURL),
		Timeout:      time.Duration(c.Timeout) * time.Millisecond,
		Token:        os.ExpandEnv(c.Token),
		MockEnabled:  c.GetMock(),
		ForceFailure: c.GetForceFailure(),
		ForceReplay:  c.GetForceReplay(),
		Headers:      headers,
	}
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".urlmock.yaml",
	".urlmock.yml",
	"urlmock.yaml",
	".urlmock.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if isJSON(path) {
		err = json.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Token != "" {
		result.Token = other.Token
	}
	if other.DataDir != "" {
		result.DataDir = other.DataDir
	}
	if other.SettingsPath != "" {
		result.SettingsPath = other.SettingsPath
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		result.LogFormat = other.LogFormat
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Mock != nil {
		result.Mock = other.Mock
	}
	if other.ForceFailure != nil {
		result.ForceFailure = other.ForceFailure
	}
	if other.ForceReplay != nil {
		result.ForceReplay = other.ForceReplay
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}

	// Headers are appended so the other config's entries are applied last
	if len(other.Headers) > 0 {
		result.Headers = append(append([]Header{}, c.Headers...), other.Headers...)
	}

	return &result
}

// SaveConfig saves the configuration to a file, as JSON when the path ends
// in .json and as YAML otherwise.
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
