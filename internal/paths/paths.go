// Package paths provides canonical helpers for converting between the forms a
// favorite can be named by:
// - local paths (e.g. "~/notes/todo.txt", "/usr/share/applications/org.kde.dolphin.desktop")
// - file URLs (e.g. "file:///home/u/notes/todo.txt")
// - desktop ids (e.g. "org.kde.dolphin.desktop", "kde-konsole.desktop")
//
// Resolution, the alias index and the mutation calls all canonicalize through
// here so a path and its URL always agree.
package paths

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Scheme returns the URL scheme of id, or "" for plain paths and desktop ids.
// A scheme is a letter followed by letters, digits, '+', '-' or '.', ending in ':'.
func Scheme(id string) string {
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		case i > 0 && c == ':':
			return strings.ToLower(id[:i])
		default:
			return ""
		}
	}
	return ""
}

// FromFileURL returns the local path of a file:// URL. ok is false for any
// other input.
func FromFileURL(raw string) (path string, ok bool) {
	if Scheme(raw) != "file" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}

// FileURL returns the file:// URL of a local path.
func FileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// Canonical makes p absolute, cleans it and resolves symbolic links.
// Paths that do not exist are returned absolute and cleaned only.
func Canonical(p string) string {
	p = ExpandHome(p)
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return filepath.Clean(p)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// LooksLocal reports whether id names a local path rather than a URL or a
// desktop id.
func LooksLocal(id string) bool {
	if Scheme(id) == "file" {
		return true
	}
	if Scheme(id) != "" {
		return false
	}
	return strings.HasPrefix(id, "/") || strings.HasPrefix(id, "~") || strings.HasPrefix(id, "./") || strings.HasPrefix(id, "../")
}

// Exists reports whether a local path exists.
func Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// DesktopIDFromRel converts a path relative to an applications directory into
// a desktop id: "kde/konsole.desktop" -> "kde-konsole.desktop".
func DesktopIDFromRel(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimPrefix(rel, "./")
	rel = strings.Trim(rel, "/")
	return strings.ReplaceAll(rel, "/", "-")
}

// IsDesktopID reports whether id is a bare desktop id (no scheme, no path).
func IsDesktopID(id string) bool {
	return Scheme(id) == "" && !strings.ContainsRune(id, '/') && strings.HasSuffix(id, ".desktop")
}
