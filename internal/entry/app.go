package entry

import (
	"strings"

	"github.com/aidanlsb/favs/internal/paths"
)

const (
	// ApplicationsScheme prefixes desktop ids in canonical URLs.
	ApplicationsScheme = "applications"
	// PreferredScheme names a preferred application (preferred://browser).
	PreferredScheme = "preferred"
)

// AppOptions configures how application entries find desktop files.
type AppOptions struct {
	// Dirs are the applications directories, searched in order.
	// Nil means ApplicationDirs(nil).
	Dirs []string

	// Preferred maps preferred://<name> to a desktop id.
	Preferred map[string]string

	Launcher Launcher
}

// App is an application launcher entry backed by a .desktop file.
type App struct {
	desktopID string
	file      *desktopFile
	launcher  Launcher
}

// NewApp resolves id to a desktop file. Accepted forms are a bare desktop id,
// applications:<id>, applications://<id>, preferred://<name>, a file:// URL
// and an absolute path to a .desktop file. Unresolvable ids yield an App
// whose IsValid is false.
func NewApp(id string, opts AppOptions) *App {
	dirs := opts.Dirs
	if dirs == nil {
		dirs = ApplicationDirs(nil)
	}
	a := &App{launcher: launcherOrDefault(opts.Launcher)}

	var path string
	switch paths.Scheme(id) {
	case PreferredScheme:
		name := strings.TrimPrefix(strings.TrimPrefix(id, PreferredScheme+":"), "//")
		a.desktopID = opts.Preferred[name]
		if a.desktopID == "" {
			a.desktopID = id
			return a
		}
	case ApplicationsScheme:
		rest := strings.TrimPrefix(strings.TrimPrefix(id, ApplicationsScheme+":"), "//")
		if strings.HasPrefix(rest, "/") {
			path = rest
		} else {
			a.desktopID = rest
		}
	case "file":
		p, ok := paths.FromFileURL(id)
		if !ok {
			a.desktopID = id
			return a
		}
		path = p
	case "":
		if paths.LooksLocal(id) {
			path = id
		} else {
			a.desktopID = id
		}
	default:
		a.desktopID = id
		return a
	}

	if path != "" {
		path = paths.Canonical(path)
		a.desktopID = desktopIDForPath(dirs, path)
	} else {
		found, ok := findDesktopFile(dirs, a.desktopID)
		if !ok {
			return a
		}
		path = paths.Canonical(found)
	}

	df, err := parseDesktopFile(path)
	if err != nil {
		return a
	}
	a.file = df
	return a
}

func (a *App) Kind() Kind { return KindApplication }

// ID returns the desktop id, e.g. "org.kde.dolphin.desktop".
func (a *App) ID() string { return a.desktopID }

// URL returns "applications:<desktop id>".
func (a *App) URL() string { return ApplicationsScheme + ":" + a.desktopID }

func (a *App) LocalPath() string {
	if a.file == nil {
		return ""
	}
	return a.file.Path
}

func (a *App) Name() string {
	if a.file == nil {
		return ""
	}
	return a.file.Name
}

func (a *App) Icon() string {
	if a.file == nil || a.file.Icon == "" {
		return "unknown"
	}
	return a.file.Icon
}

// Description prefers the generic name ("Web Browser") over the comment.
func (a *App) Description() string {
	if a.file == nil {
		return ""
	}
	if a.file.GenericName != "" {
		return a.file.GenericName
	}
	return a.file.Comment
}

func (a *App) IsValid() bool {
	return a.file != nil && a.file.Type == "Application" && !a.file.Hidden
}

func (a *App) HasActions() bool { return a.IsValid() && len(a.file.Actions) > 0 }

func (a *App) Actions() []Action {
	if !a.IsValid() {
		return nil
	}
	actions := make([]Action, 0, len(a.file.Actions))
	for _, act := range a.file.Actions {
		actions = append(actions, Action{ID: act.ID, Label: act.Name, Icon: act.Icon})
	}
	return actions
}

// Run launches the application ("") or one of its desktop actions.
// A string argument is passed to the %f/%u field codes.
func (a *App) Run(actionID string, argument any) bool {
	if !a.IsValid() {
		return false
	}

	exec := a.file.Exec
	if actionID != "" {
		exec = ""
		for _, act := range a.file.Actions {
			if act.ID == actionID {
				exec = act.Exec
				break
			}
		}
		if exec == "" {
			return false
		}
	}

	argv, err := a.file.expandExec(exec, argString(argument))
	if err != nil {
		return false
	}
	return a.launcher.Exec(argv) == nil
}
