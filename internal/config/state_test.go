package config

import (
	"path/filepath"
	"testing"
)

func TestResolveStatePath(t *testing.T) {
	configPath := "/tmp/favs/config.toml"

	t.Run("explicit state path wins", func(t *testing.T) {
		got := ResolveStatePath("/tmp/custom/state.toml", configPath, &Config{
			StateFile: "state-from-config.toml",
		})
		if got != "/tmp/custom/state.toml" {
			t.Fatalf("expected explicit state path, got %q", got)
		}
	})

	t.Run("config state_file absolute", func(t *testing.T) {
		got := ResolveStatePath("", configPath, &Config{
			StateFile: "/var/tmp/favs-state.toml",
		})
		if got != "/var/tmp/favs-state.toml" {
			t.Fatalf("expected absolute state path, got %q", got)
		}
	})

	t.Run("config state_file relative to config dir", func(t *testing.T) {
		got := ResolveStatePath("", configPath, &Config{
			StateFile: "runtime/state.toml",
		})
		want := "/tmp/favs/runtime/state.toml"
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})

	t.Run("fallback sibling state.toml", func(t *testing.T) {
		got := ResolveStatePath("", configPath, &Config{})
		want := "/tmp/favs/state.toml"
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})
}

func TestLoadStateMissingReturnsDefault(t *testing.T) {
	state, err := LoadState(filepath.Join(t.TempDir(), "state.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Version != StateVersion {
		t.Fatalf("expected version %d, got %d", StateVersion, state.Version)
	}
	if state.LegacyImported || state.Disabled {
		t.Fatalf("expected zero flags, got %+v", state)
	}
}

func TestSaveStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")

	if err := SaveState(path, &State{LegacyImported: true, Disabled: true}); err != nil {
		t.Fatalf("save state: %v", err)
	}

	loaded, err := LoadState(path)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if loaded.Version != StateVersion || !loaded.LegacyImported || !loaded.Disabled {
		t.Fatalf("unexpected state after round trip: %+v", loaded)
	}
}

func TestStateRequiresPath(t *testing.T) {
	if _, err := LoadState("  "); err == nil {
		t.Error("LoadState: expected error for empty path")
	}
	if err := SaveState("", &State{}); err == nil {
		t.Error("SaveState: expected error for empty path")
	}
}

func TestMigrationFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	flag := NewMigrationFlag(path)

	done, err := flag.Done()
	if err != nil || done {
		t.Fatalf("fresh flag: done=%v err=%v", done, err)
	}

	if err := flag.MarkDone(); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}

	// A second flag on the same file sees the marker.
	done, err = NewMigrationFlag(path).Done()
	if err != nil || !done {
		t.Fatalf("after MarkDone: done=%v err=%v", done, err)
	}

	if err := flag.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if done, _ := flag.Done(); done {
		t.Fatal("expected flag cleared after Reset")
	}
}
