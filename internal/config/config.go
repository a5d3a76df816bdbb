// Package config provides centralized configuration for the gitgraph backend.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application-wide configuration.
type Config struct {
	// RepoPath is the repository opened at startup.
	RepoPath string `yaml:"repo"`
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"addr"`

	// DefaultLimit is the window size used when a request asks for none.
	DefaultLimit int `yaml:"defaultLimit"`
	// MaxLimit caps the window size of a single request.
	MaxLimit int `yaml:"maxLimit"`
	// MaxWalk bounds the commits collected per traversal.
	MaxWalk int `yaml:"maxWalk"`
	// CacheSize is the number of commit metadata entries cached per repository.
	CacheSize int `yaml:"cacheSize"`

	LogFormat string `yaml:"logFormat"`
	LogLevel  string `yaml:"logLevel"`

	// WatchDebounce is how long the watcher waits for a burst of file
	// events to settle before pushing a refresh.
	WatchDebounce time.Duration `yaml:"watchDebounce"`
}

func defaults() *Config {
	return &Config{
		RepoPath:      ".",
		ListenAddr:    ":8080",
		DefaultLimit:  200,
		MaxLimit:      5000,
		MaxWalk:       20000,
		CacheSize:     4096,
		LogFormat:     "text",
		LogLevel:      "info",
		WatchDebounce: 250 * time.Millisecond,
	}
}

// DefaultConfig returns the default configuration, reading from environment variables.
func DefaultConfig() *Config {
	c := defaults()
	c.applyEnv()
	return c
}

// Load reads a YAML config file over the defaults. Environment variables
// still win over the file. A missing file is not an error.
func Load(path string) (*Config, error) {
	c := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GITGRAPH_REPO"); v != "" {
		c.RepoPath = v
	}
	if v := os.Getenv("GITGRAPH_ADDR"); v != "" {
		c.ListenAddr = v
	}
	envInt("GITGRAPH_DEFAULT_LIMIT", &c.DefaultLimit)
	envInt("GITGRAPH_MAX_LIMIT", &c.MaxLimit)
	envInt("GITGRAPH_MAX_WALK", &c.MaxWalk)
	envInt("GITGRAPH_CACHE_SIZE", &c.CacheSize)
	if v := os.Getenv("GITGRAPH_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("GITGRAPH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("GITGRAPH_WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.WatchDebounce = d
		}
	}
}

// envInt overwrites dst when the variable holds an integer.
func envInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// Validate checks that limits are consistent.
func (c *Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("defaultLimit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("maxLimit %d is below defaultLimit %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watchDebounce must not be negative")
	}
	return nil
}

// ClampLimit maps a requested window size onto the configured bounds.
// Zero or negative means the default.
func (c *Config) ClampLimit(n int) int {
	if n <= 0 {
		return c.DefaultLimit
	}
	return min(n, c.MaxLimit)
}

// Global is the application-wide configuration instance.
var Global = DefaultConfig()
