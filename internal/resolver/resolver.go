// Package resolver classifies favorite identifiers and builds their entries.
package resolver

import (
	"strings"

	"github.com/aidanlsb/favs/internal/entry"
	"github.com/aidanlsb/favs/internal/paths"
)

// Agents that favorites are linked under in the activity store.
const (
	AgentApplications = "org.kde.plasma.favorites.applications"
	AgentContacts     = "org.kde.plasma.favorites.contacts"
)

// Agents lists every agent the favorites model queries.
var Agents = []string{AgentApplications, AgentContacts}

// Config contains configuration for the resolver.
type Config struct {
	ApplicationDirs []string          // Searched for desktop files; nil means the XDG dirs
	Preferred       map[string]string // preferred://<name> -> desktop id
	Contacts        entry.ContactBook
	Launcher        entry.Launcher
}

// Resolver builds entries for identifiers.
type Resolver struct {
	apps     entry.AppOptions
	contacts entry.ContactBook
	launcher entry.Launcher
}

// New creates a new Resolver.
func New(cfg Config) *Resolver {
	dirs := cfg.ApplicationDirs
	if dirs == nil {
		dirs = entry.ApplicationDirs(nil)
	}
	return &Resolver{
		apps: entry.AppOptions{
			Dirs:      dirs,
			Preferred: cfg.Preferred,
			Launcher:  cfg.Launcher,
		},
		contacts: cfg.Contacts,
		launcher: cfg.Launcher,
	}
}

// Resolve builds the entry for id. It never returns nil: identifiers that
// name nothing yield an entry whose IsValid is false.
//
// Classification, in order:
//   - ktp:// ids are contacts
//   - applications: and preferred: ids, and scheme-less ids mentioning
//     ".desktop", are applications
//   - anything else is a file or URL
func (r *Resolver) Resolve(id string) entry.Entry {
	id = strings.TrimSpace(id)
	if id == "" {
		return entry.Invalid(id)
	}

	scheme := paths.Scheme(id)
	switch {
	case scheme == entry.ContactScheme:
		return entry.NewContact(id, r.contacts, r.launcher)
	case isApplication(id, scheme):
		return entry.NewApp(id, r.apps)
	default:
		return entry.NewFile(id, r.launcher)
	}
}

func isApplication(id, scheme string) bool {
	switch scheme {
	case entry.ApplicationsScheme, entry.PreferredScheme:
		return true
	case "", "file":
		return strings.Contains(id, ".desktop")
	}
	return false
}

// Normalize returns the canonical form of id under which it is linked in
// the activity store, plus its effective scheme:
//   - file:// URLs become local paths (scheme "")
//   - local paths are made absolute and symlink-resolved
//   - bare desktop ids and applications://<id> become applications:<id>
//   - everything else is returned unchanged
func Normalize(id string) (canonical, scheme string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ""
	}

	scheme = paths.Scheme(id)
	switch scheme {
	case "file":
		if p, ok := paths.FromFileURL(id); ok {
			return paths.Canonical(p), ""
		}
		return id, scheme
	case entry.ApplicationsScheme:
		rest := strings.TrimPrefix(strings.TrimPrefix(id, entry.ApplicationsScheme+":"), "//")
		if strings.HasPrefix(rest, "/") {
			return paths.Canonical(rest), ""
		}
		return entry.ApplicationsScheme + ":" + rest, scheme
	case "":
		if paths.IsDesktopID(id) {
			return entry.ApplicationsScheme + ":" + id, entry.ApplicationsScheme
		}
		return paths.Canonical(id), ""
	}
	return id, scheme
}

// AgentForScheme returns the agent favorites with the given scheme are
// linked under: contacts for ktp, applications for everything else.
func AgentForScheme(scheme string) string {
	if strings.EqualFold(scheme, entry.ContactScheme) {
		return AgentContacts
	}
	return AgentApplications
}

// AgentFor returns the agent for an identifier.
func AgentFor(id string) string {
	return AgentForScheme(paths.Scheme(strings.TrimSpace(id)))
}
