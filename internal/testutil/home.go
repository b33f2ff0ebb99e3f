// Package testutil provides reusable fixtures for favs tests: a temporary
// home with desktop files and documents, and a launcher that records calls.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// TestHome is a temporary directory tree holding an applications directory
// and arbitrary files.
type TestHome struct {
	Path    string
	AppsDir string

	t     *testing.T
	files map[string]string
	links map[string]string
}

// NewTestHome creates a new home builder.
// Call Build() to create the directory tree.
func NewTestHome(t *testing.T) *TestHome {
	t.Helper()
	return &TestHome{
		t:     t,
		files: make(map[string]string),
		links: make(map[string]string),
	}
}

// WithApp adds applications/<rel> containing a minimal application entry.
// extra lines ("Icon=foo") are appended to the [Desktop Entry] group.
func (h *TestHome) WithApp(rel, name string, extra ...string) *TestHome {
	return h.WithDesktopFile(rel, DesktopEntry(name, extra...))
}

// WithDesktopFile adds applications/<rel> with verbatim content.
func (h *TestHome) WithDesktopFile(rel, content string) *TestHome {
	h.files[filepath.Join("applications", rel)] = content
	return h
}

// WithFile adds a file relative to the home root.
func (h *TestHome) WithFile(rel, content string) *TestHome {
	h.files[rel] = content
	return h
}

// WithSymlink adds a symbolic link at rel pointing to target (relative to the root).
func (h *TestHome) WithSymlink(rel, target string) *TestHome {
	h.links[rel] = target
	return h
}

// Build creates the directory tree and returns the home for chaining.
func (h *TestHome) Build() *TestHome {
	h.t.Helper()

	root, err := filepath.EvalSymlinks(h.t.TempDir())
	if err != nil {
		h.t.Fatalf("resolve temp dir: %v", err)
	}
	h.Path = root
	h.AppsDir = filepath.Join(root, "applications")
	if err := os.MkdirAll(h.AppsDir, 0o755); err != nil {
		h.t.Fatalf("failed to create applications dir: %v", err)
	}

	for rel, content := range h.files {
		h.writeFile(rel, content)
	}
	for rel, target := range h.links {
		full := h.Abs(rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			h.t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		if err := os.Symlink(h.Abs(target), full); err != nil {
			h.t.Skipf("symlinks unsupported: %v", err)
		}
	}
	return h
}

// Abs returns the absolute path of rel inside the home.
func (h *TestHome) Abs(rel string) string {
	return filepath.Join(h.Path, rel)
}

// Remove deletes rel from the home.
func (h *TestHome) Remove(rel string) {
	h.t.Helper()
	if err := os.RemoveAll(h.Abs(rel)); err != nil {
		h.t.Fatalf("failed to remove %s: %v", rel, err)
	}
}

func (h *TestHome) writeFile(rel, content string) {
	h.t.Helper()
	full := h.Abs(rel)

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		h.t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		h.t.Fatalf("failed to write file %s: %v", full, err)
	}
}

// DesktopEntry renders a minimal application desktop file.
func DesktopEntry(name string, extra ...string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", name)
	fmt.Fprintf(&b, "Exec=%s %%U\n", strings.ToLower(strings.ReplaceAll(name, " ", "-")))
	for _, line := range extra {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// RecordingLauncher records launches instead of starting processes.
type RecordingLauncher struct {
	mu    sync.Mutex
	Execs [][]string
	Opens []string
	Err   error
}

// Exec records argv.
func (l *RecordingLauncher) Exec(argv []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Execs = append(l.Execs, append([]string(nil), argv...))
	return l.Err
}

// Open records target.
func (l *RecordingLauncher) Open(target string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Opens = append(l.Opens, target)
	return l.Err
}
