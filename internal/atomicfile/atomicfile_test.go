package atomicfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.toml")

	if err := WriteFile(path, []byte("version = 1\n"), 0); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "version = 1\n" {
		t.Fatalf("unexpected content %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be renamed away, found %d entries", len(entries))
	}
}

func TestWriteFileKeepsExistingMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(path, []byte("new"), 0); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %v", st.Mode().Perm())
	}
}

func TestWriteTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	in := struct {
		Version int `toml:"version"`
	}{Version: 3}

	if err := WriteTOML(path, in); err != nil {
		t.Fatalf("WriteTOML: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "version = 3\n" {
		t.Fatalf("unexpected content %q", got)
	}
}
