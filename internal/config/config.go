// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultSortField = "duedate"
	DefaultSortOrder = "asc"
)

// Config represents the tasknest configuration, shared by the daemon and
// the CLI.
type Config struct {
	Bus    BusConfig    `toml:"bus"`
	Filter FilterConfig `toml:"filter"`
	Sort   SortConfig   `toml:"sort"`
	TUI    TUIConfig    `toml:"tui"`
}

// BusConfig holds D-Bus settings.
type BusConfig struct {
	// Name overrides the well-known bus name claimed by the daemon.
	// Empty means the built-in default.
	Name string `toml:"name"`
}

// FilterConfig holds default filtering options.
type FilterConfig struct {
	// Default is the filter chain applied when none is given.
	Default []string `toml:"default"`
}

// SortConfig holds default sorting options.
type SortConfig struct {
	Field string `toml:"field"` // title, status, duedate, added
	Order string `toml:"order"` // asc, desc
}

// TUIConfig holds task browser settings.
type TUIConfig struct {
	ShowClosed bool `toml:"show_closed"`
	ShowHelp   bool `toml:"show_help"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Filter: FilterConfig{
			Default: []string{"active"},
		},
		Sort: SortConfig{
			Field: DefaultSortField,
			Order: DefaultSortOrder,
		},
		TUI: TUIConfig{
			ShowClosed: false,
			ShowHelp:   true,
		},
	}
}

// ConfigHome returns the tasknest configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigHome() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tasknest")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigHome(), "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tasknest")
}

// TasksPath returns the path to the tasks JSONL file.
func TasksPath() string {
	return filepath.Join(DataPath(), "tasks.jsonl")
}

// LoadConfig loads configuration from the specified path. If path is
// empty, the default config path is used. A missing file yields the
// default config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified path, creating parent
// directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}
