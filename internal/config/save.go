package config

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/favs/internal/atomicfile"
)

type persistedConfig struct {
	Store           *string           `toml:"store,omitempty"`
	StateFile       *string           `toml:"state_file,omitempty"`
	Client          *string           `toml:"client,omitempty"`
	MaxFavorites    int               `toml:"max_favorites,omitempty"`
	PageSize        int               `toml:"page_size,omitempty"`
	DropTimeout     *Duration         `toml:"drop_timeout,omitempty"`
	LogLevel        *string           `toml:"log_level,omitempty"`
	ApplicationDirs []string          `toml:"application_dirs,omitempty"`
	Preferred       map[string]string `toml:"preferred,omitempty"`
	Contacts        map[string]string `toml:"contacts,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SaveTo writes the config to path atomically, omitting unset keys.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		Store:           nonEmptyPtr(cfg.Store),
		StateFile:       nonEmptyPtr(cfg.StateFile),
		Client:          nonEmptyPtr(cfg.Client),
		MaxFavorites:    cfg.MaxFavorites,
		PageSize:        cfg.PageSize,
		LogLevel:        nonEmptyPtr(cfg.LogLevel),
		ApplicationDirs: cfg.ApplicationDirs,
	}
	if cfg.DropTimeout.Duration > 0 {
		d := cfg.DropTimeout
		out.DropTimeout = &d
	}
	if len(cfg.Preferred) > 0 {
		out.Preferred = cfg.Preferred
	}
	if len(cfg.Contacts) > 0 {
		out.Contacts = cfg.Contacts
	}

	if err := atomicfile.WriteTOML(path, out); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
