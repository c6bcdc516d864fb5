// ABOUTME: YAML configuration for marginalia with XDG paths and env overrides.
// ABOUTME: Selects the note backend, context window, styles, and logging.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harper/marginalia/internal/anchor"
	"github.com/harper/marginalia/internal/highlight"
)

const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

var ErrUnknownBackend = errors.New("unknown backend")

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type Charm struct {
	// Host is the charm server to sync with. Empty keeps the charm default.
	Host     string `yaml:"host,omitempty"`
	AutoSync bool   `yaml:"auto_sync"`
}

type Config struct {
	Backend       string           `yaml:"backend"`
	DBPath        string           `yaml:"db_path"`
	ContextWindow int              `yaml:"context_window"`
	Styles        highlight.Styles `yaml:"styles"`
	Log           Log              `yaml:"log"`
	Charm         Charm            `yaml:"charm"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backend:       BackendSQLite,
		DBPath:        DefaultDBPath(),
		ContextWindow: anchor.DefaultContextWindow,
		Styles:        highlight.DefaultStyles(),
		Log:           Log{Level: "warn", Pretty: true},
		Charm:         Charm{AutoSync: true},
	}
}

// Dir returns the configuration directory path.
func Dir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "marginalia")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

func DefaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "marginalia", "marginalia.db")
}

// Load reads path (or the default path when empty), falls back to defaults
// for a missing file, and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MARGINALIA_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("MARGINALIA_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("MARGINALIA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("MARGINALIA_CONTEXT_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MARGINALIA_CONTEXT_WINDOW: %w", err)
		}
		c.ContextWindow = n
	}
	return nil
}

// Validate checks values that would otherwise fail deep in the engine.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendSQLite, BackendCharm:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.ContextWindow < 0 {
		return fmt.Errorf("context_window must not be negative, got %d", c.ContextWindow)
	}
	defaults := highlight.DefaultStyles()
	if c.Styles.Open == "" {
		c.Styles.Open = defaults.Open
	}
	if c.Styles.Resolved == "" {
		c.Styles.Resolved = defaults.Resolved
	}
	if c.Styles.Pending == "" {
		c.Styles.Pending = defaults.Pending
	}
	return nil
}

// Save writes the configuration as YAML.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
