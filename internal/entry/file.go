package entry

import (
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/favs/internal/paths"
)

// File is a local file, directory or remote URL entry.
type File struct {
	url      string
	local    string // canonical path; "" for remote URLs
	isDir    bool
	valid    bool
	launcher Launcher
}

// NewFile builds the entry for a path, file:// URL or remote URL.
func NewFile(id string, l Launcher) *File {
	f := &File{launcher: launcherOrDefault(l)}

	local, isLocal := paths.FromFileURL(id)
	if !isLocal && paths.Scheme(id) == "" {
		local, isLocal = id, true
	}

	if isLocal {
		if local == "" {
			return f
		}
		f.local = paths.Canonical(local)
		f.url = paths.FileURL(f.local)
		if st, err := os.Stat(f.local); err == nil {
			f.valid = true
			f.isDir = st.IsDir()
		}
		return f
	}

	u, err := url.Parse(id)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "" && u.Path == "") {
		f.url = id
		return f
	}
	f.url = u.String()
	f.valid = true
	return f
}

func (f *File) Kind() Kind { return KindFile }

// ID is the file's URL, as for every file entry.
func (f *File) ID() string { return f.url }
func (f *File) URL() string { return f.url }
func (f *File) LocalPath() string { return f.local }
func (f *File) IsValid() bool { return f.valid }
func (f *File) HasActions() bool { return f.valid }

func (f *File) Name() string {
	if f.local != "" {
		return filepath.Base(f.local)
	}
	u, err := url.Parse(f.url)
	if err != nil {
		return f.url
	}
	if base := path.Base(u.Path); base != "/" && base != "." {
		return base
	}
	if u.Host != "" {
		return u.Host
	}
	return f.url
}

// Description is the containing folder for local files and the URL otherwise.
func (f *File) Description() string {
	if f.local != "" {
		return filepath.Dir(f.local)
	}
	return f.url
}

// Icon derives a freedesktop icon name from the MIME type.
func (f *File) Icon() string {
	if f.isDir {
		return "folder"
	}
	if f.local == "" {
		switch paths.Scheme(f.url) {
		case "http", "https":
			return "text-html"
		}
		return "unknown"
	}
	mt := mime.TypeByExtension(filepath.Ext(f.local))
	if mt == "" {
		return "unknown"
	}
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ReplaceAll(strings.TrimSpace(mt), "/", "-")
}

func (f *File) Actions() []Action {
	if !f.valid {
		return nil
	}
	actions := []Action{{ID: "open", Label: "Open", Icon: "document-open"}}
	if f.local != "" {
		actions = append(actions, Action{ID: "openContainingFolder", Label: "Open Containing Folder", Icon: "folder-open"})
	}
	return actions
}

// Run opens the file ("" or "open") or its folder ("openContainingFolder").
func (f *File) Run(actionID string, _ any) bool {
	if !f.valid {
		return false
	}
	target := f.url
	if f.local != "" {
		target = f.local
	}
	switch actionID {
	case "", "open":
	case "openContainingFolder":
		if f.local == "" {
			return false
		}
		target = filepath.Dir(f.local)
	default:
		return false
	}
	return f.launcher.Open(target) == nil
}
