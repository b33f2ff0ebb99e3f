// Package config handles favs configuration and machine-local state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/favs/internal/paths"
)

const (
	// DefaultClient is the ordering client id result positions are stored under.
	DefaultClient = "org.kde.plasma.favorites"

	// DefaultMaxFavorites is the query limit used when none is configured.
	DefaultMaxFavorites = 15

	// DefaultDropTimeout bounds how long a pending drop waits for its row.
	DefaultDropTimeout = 30 * time.Second
)

// Config represents the global favs configuration.
type Config struct {
	// Store is the path of the SQLite activity store.
	Store string `toml:"store"`

	// StateFile overrides the location of state.toml.
	StateFile string `toml:"state_file"`

	// Client names the result ordering in the store.
	Client string `toml:"client"`

	// MaxFavorites limits how many favorites the model queries.
	MaxFavorites int `toml:"max_favorites"`

	// PageSize is how many rows one fetch loads (defaults to MaxFavorites).
	PageSize int `toml:"page_size"`

	// DropTimeout is how long a drop waits for its row before it is discarded.
	DropTimeout Duration `toml:"drop_timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// ApplicationDirs are searched for desktop files before the XDG dirs.
	ApplicationDirs []string `toml:"application_dirs"`

	// Preferred maps preferred://<name> to a desktop id.
	Preferred map[string]string `toml:"preferred"`

	// Contacts maps contact ids (ktp://...) to display names.
	Contacts map[string]string `toml:"contacts"`
}

// Duration is a time.Duration that reads and writes as a TOML string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// GetStorePath returns the configured store path or the XDG data default.
func (c *Config) GetStorePath() string {
	if strings.TrimSpace(c.Store) != "" {
		return paths.ExpandHome(c.Store)
	}
	return DefaultStorePath()
}

// GetClient returns the ordering client id.
func (c *Config) GetClient() string {
	if strings.TrimSpace(c.Client) != "" {
		return c.Client
	}
	return DefaultClient
}

// GetMaxFavorites returns the query limit.
func (c *Config) GetMaxFavorites() int {
	if c.MaxFavorites > 0 {
		return c.MaxFavorites
	}
	return DefaultMaxFavorites
}

// GetPageSize returns the number of rows loaded per fetch.
func (c *Config) GetPageSize() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return c.GetMaxFavorites()
}

// GetDropTimeout returns the pending drop expiry.
func (c *Config) GetDropTimeout() time.Duration {
	if c.DropTimeout.Duration > 0 {
		return c.DropTimeout.Duration
	}
	return DefaultDropTimeout
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom loads the configuration from a specific path.
// A missing file yields the zero config.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/favs/config.toml first (XDG style),
// then falls back to the OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "favs", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "favs", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// DefaultStorePath returns $XDG_DATA_HOME/favs/activities.db.
func DefaultStorePath() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "favs", "activities.db")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "favs", "activities.db")
	}
	return filepath.Join(".", "activities.db")
}

// CreateDefault writes a commented default config if none exists.
func CreateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# favs configuration

# SQLite activity store (defaults to $XDG_DATA_HOME/favs/activities.db)
# store = "~/.local/share/favs/activities.db"

# Ordering client id and query limit
# client = "org.kde.plasma.favorites"
# max_favorites = 15

# How long a drop waits for its row to appear
# drop_timeout = "30s"

# log_level = "info"

# Extra directories searched for .desktop files
# application_dirs = ["~/apps"]

# [preferred]
# browser = "org.mozilla.firefox.desktop"

# [contacts]
# "ktp://gabble/jabber/me?bob" = "Bob"
`
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}


// ExpandedApplicationDirs returns ApplicationDirs with ~ expanded.
func (c *Config) ExpandedApplicationDirs() []string {
	dirs := make([]string, 0, len(c.ApplicationDirs))
	for _, d := range c.ApplicationDirs {
		if strings.TrimSpace(d) == "" {
			continue
		}
		dirs = append(dirs, paths.ExpandHome(d))
	}
	return dirs
}
