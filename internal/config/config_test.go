package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}

	if got := cfg.GetClient(); got != DefaultClient {
		t.Errorf("GetClient() = %q, want %q", got, DefaultClient)
	}
	if got := cfg.GetMaxFavorites(); got != DefaultMaxFavorites {
		t.Errorf("GetMaxFavorites() = %d, want %d", got, DefaultMaxFavorites)
	}
	if got := cfg.GetPageSize(); got != DefaultMaxFavorites {
		t.Errorf("GetPageSize() = %d, want max favorites", got)
	}
	if got := cfg.GetDropTimeout(); got != DefaultDropTimeout {
		t.Errorf("GetDropTimeout() = %v, want %v", got, DefaultDropTimeout)
	}
}

func TestDefaultStorePathUsesXDGDataHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	want := filepath.Join("/tmp/xdg-data", "favs", "activities.db")
	if got := (&Config{}).GetStorePath(); got != want {
		t.Fatalf("GetStorePath() = %q, want %q", got, want)
	}
}

func TestLoadFrom(t *testing.T) {
	t.Run("missing file yields zero config", func(t *testing.T) {
		cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Store != "" || cfg.MaxFavorites != 0 {
			t.Fatalf("expected zero config, got %+v", cfg)
		}
	})

	t.Run("parses all keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
store = "/var/lib/favs/activities.db"
client = "org.example.menu"
max_favorites = 20
page_size = 5
drop_timeout = "2m"
log_level = "debug"
application_dirs = ["/opt/apps"]

[preferred]
browser = "org.mozilla.firefox.desktop"

[contacts]
"ktp://gabble/me?bob" = "Bob"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("LoadFrom: %v", err)
		}
		if cfg.GetStorePath() != "/var/lib/favs/activities.db" {
			t.Errorf("store = %q", cfg.GetStorePath())
		}
		if cfg.GetClient() != "org.example.menu" {
			t.Errorf("client = %q", cfg.GetClient())
		}
		if cfg.GetMaxFavorites() != 20 || cfg.GetPageSize() != 5 {
			t.Errorf("limits = %d/%d", cfg.GetMaxFavorites(), cfg.GetPageSize())
		}
		if cfg.GetDropTimeout() != 2*time.Minute {
			t.Errorf("drop timeout = %v", cfg.GetDropTimeout())
		}
		if cfg.Preferred["browser"] != "org.mozilla.firefox.desktop" {
			t.Errorf("preferred = %v", cfg.Preferred)
		}
		if cfg.Contacts["ktp://gabble/me?bob"] != "Bob" {
			t.Errorf("contacts = %v", cfg.Contacts)
		}
		if len(cfg.ExpandedApplicationDirs()) != 1 {
			t.Errorf("application dirs = %v", cfg.ApplicationDirs)
		}
	})

	t.Run("bad duration is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(`drop_timeout = "soon"`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFrom(path); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestCreateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favs", "config.toml")

	if err := CreateDefault(path); err != nil {
		t.Fatalf("CreateDefault: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("default config must parse: %v", err)
	}
	if cfg.Store != "" {
		t.Errorf("expected all keys commented out, got store %q", cfg.Store)
	}

	// Second call leaves an edited file alone.
	if err := os.WriteFile(path, []byte(`client = "mine"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CreateDefault(path); err != nil {
		t.Fatal(err)
	}
	cfg, _ = LoadFrom(path)
	if cfg.Client != "mine" {
		t.Errorf("CreateDefault overwrote existing config")
	}
}
