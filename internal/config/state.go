package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/favs/internal/atomicfile"
	"github.com/aidanlsb/favs/internal/paths"
)

const (
	// StateVersion is the current state file schema version.
	StateVersion = 1
)

// State represents mutable machine-local runtime state.
type State struct {
	Version int `toml:"version"`

	// LegacyImported records that the pre-activity favorites list has
	// been imported once.
	LegacyImported bool `toml:"legacy_favorites_imported,omitempty"`

	// Disabled hides the favorites model.
	Disabled bool `toml:"disabled,omitempty"`
}

// ResolveConfigPath resolves the effective config path from an optional override.
func ResolveConfigPath(explicitConfigPath string) string {
	if strings.TrimSpace(explicitConfigPath) != "" {
		return explicitConfigPath
	}
	return DefaultPath()
}

// ResolveStatePath resolves the state.toml path with precedence:
//  1. explicitStatePath flag
//  2. cfg.StateFile from config.toml (relative to config file dir when not absolute)
//  3. sibling state.toml next to config.toml
func ResolveStatePath(explicitStatePath, configPath string, cfg *Config) string {
	if strings.TrimSpace(explicitStatePath) != "" {
		return explicitStatePath
	}

	configDir := filepath.Dir(ResolveConfigPath(configPath))

	if cfg != nil {
		if fromConfig := strings.TrimSpace(cfg.StateFile); fromConfig != "" {
			fromConfig = paths.ExpandHome(fromConfig)
			if filepath.IsAbs(fromConfig) {
				return filepath.Clean(fromConfig)
			}
			return filepath.Join(configDir, filepath.FromSlash(fromConfig))
		}
	}

	return filepath.Join(configDir, "state.toml")
}

// LoadState loads state.toml from a specific path.
// Returns a default state when the file does not exist.
func LoadState(path string) (*State, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("state path is required")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &State{Version: StateVersion}, nil
	}

	var state State
	if _, err := toml.DecodeFile(path, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	if state.Version == 0 {
		state.Version = StateVersion
	}
	return &state, nil
}

// SaveState writes state.toml atomically.
func SaveState(path string, state *State) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("state path is required")
	}
	if state == nil {
		state = &State{}
	}

	normalized := *state
	if normalized.Version == 0 {
		normalized.Version = StateVersion
	}

	if err := atomicfile.WriteTOML(path, normalized); err != nil {
		return fmt.Errorf("failed to write state %s: %w", path, err)
	}
	return nil
}

// MigrationFlag persists the one-time legacy import marker in state.toml.
// Every call re-reads the file so separate processes agree on the flag.
type MigrationFlag struct {
	path string
}

// NewMigrationFlag returns a flag stored in the state file at path.
func NewMigrationFlag(path string) *MigrationFlag {
	return &MigrationFlag{path: path}
}

// Done reports whether the legacy import already ran.
func (f *MigrationFlag) Done() (bool, error) {
	state, err := LoadState(f.path)
	if err != nil {
		return false, err
	}
	return state.LegacyImported, nil
}

// MarkDone records that the legacy import ran.
func (f *MigrationFlag) MarkDone() error {
	state, err := LoadState(f.path)
	if err != nil {
		return err
	}
	if state.LegacyImported {
		return nil
	}
	state.LegacyImported = true
	return SaveState(f.path, state)
}

// Reset clears the marker so the next import runs again.
func (f *MigrationFlag) Reset() error {
	state, err := LoadState(f.path)
	if err != nil {
		return err
	}
	state.LegacyImported = false
	return SaveState(f.path, state)
}
