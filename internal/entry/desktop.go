package entry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/ini.v1"

	"github.com/aidanlsb/favs/internal/paths"
	"github.com/aidanlsb/favs/internal/shellquote"
)

const desktopEntrySection = "Desktop Entry"

// desktopFile holds the keys of a .desktop file that entries use.
type desktopFile struct {
	Path        string
	Type        string
	Name        string
	GenericName string
	Comment     string
	Icon        string
	Exec        string
	NoDisplay   bool
	Hidden      bool
	Actions     []desktopAction
}

type desktopAction struct {
	ID   string
	Name string
	Icon string
	Exec string
}

func parseDesktopFile(path string) (*desktopFile, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
		AllowShadows:            false,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	sec, err := cfg.GetSection(desktopEntrySection)
	if err != nil {
		return nil, fmt.Errorf("%s: missing [%s] group", path, desktopEntrySection)
	}

	df := &desktopFile{
		Path:        path,
		Type:        sec.Key("Type").String(),
		Name:        sec.Key("Name").String(),
		GenericName: sec.Key("GenericName").String(),
		Comment:     sec.Key("Comment").String(),
		Icon:        sec.Key("Icon").String(),
		Exec:        sec.Key("Exec").String(),
		NoDisplay:   sec.Key("NoDisplay").MustBool(false),
		Hidden:      sec.Key("Hidden").MustBool(false),
	}

	for _, id := range splitList(sec.Key("Actions").String()) {
		actSec, err := cfg.GetSection("Desktop Action " + id)
		if err != nil {
			continue
		}
		df.Actions = append(df.Actions, desktopAction{
			ID:   id,
			Name: actSec.Key("Name").String(),
			Icon: actSec.Key("Icon").String(),
			Exec: actSec.Key("Exec").String(),
		})
	}
	return df, nil
}

// splitList splits a desktop-entry string list ("a;b;c;").
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// expandExec turns an Exec value into argv, substituting field codes.
// %f %F %u %U take argument (dropped when empty), %i the icon, %c the name
// and %k the desktop file path. Deprecated codes are removed.
func (df *desktopFile) expandExec(exec, argument string) ([]string, error) {
	fields, err := shellquote.Split(exec)
	if err != nil {
		return nil, err
	}

	argv := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f {
		case "%f", "%F", "%u", "%U":
			if argument != "" {
				argv = append(argv, argument)
			}
			continue
		case "%i":
			if df.Icon != "" {
				argv = append(argv, "--icon", df.Icon)
			}
			continue
		case "%d", "%D", "%n", "%N", "%v", "%m":
			continue
		}
		f = strings.ReplaceAll(f, "%c", df.Name)
		f = strings.ReplaceAll(f, "%k", df.Path)
		f = strings.ReplaceAll(f, "%%", "%")
		argv = append(argv, f)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("%s: empty Exec", df.Path)
	}
	return argv, nil
}

// ApplicationDirs returns the directories searched for desktop files: extra
// first, then $XDG_DATA_HOME/applications, then each $XDG_DATA_DIRS entry.
func ApplicationDirs(extra []string) []string {
	dirs := append([]string(nil), extra...)

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}

	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, d := range filepath.SplitList(dataDirs) {
		if d != "" {
			dirs = append(dirs, filepath.Join(d, "applications"))
		}
	}
	return dirs
}

// findDesktopFile locates the file for a desktop id. A direct hit in a
// directory wins; otherwise subdirectories are searched, where "kde/foo.desktop"
// carries the id "kde-foo.desktop".
func findDesktopFile(dirs []string, desktopID string) (string, bool) {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, desktopID)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, true
		}
	}

	for _, dir := range dirs {
		fsys := os.DirFS(dir)
		matches, err := doublestar.Glob(fsys, "**/*.desktop", doublestar.WithFilesOnly())
		if err != nil {
			continue
		}
		for _, rel := range matches {
			if paths.DesktopIDFromRel(rel) == desktopID {
				return filepath.Join(dir, filepath.FromSlash(rel)), true
			}
		}
	}
	return "", false
}

// desktopIDForPath derives the desktop id of a file, relative to the
// applications directory containing it when there is one.
func desktopIDForPath(dirs []string, path string) string {
	for _, dir := range dirs {
		rel, err := filepath.Rel(dir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if fs.ValidPath(filepath.ToSlash(rel)) {
			return paths.DesktopIDFromRel(rel)
		}
	}
	return filepath.Base(path)
}
