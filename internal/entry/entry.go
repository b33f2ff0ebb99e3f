// Package entry implements the favoritable resource records: applications
// (desktop files), instant-messaging contacts and generic files or URLs.
//
// Entries are built once per identifier and never change afterwards; a
// resource that could not be resolved yields an entry whose IsValid is false.
package entry

// Kind identifies which backend built an entry.
type Kind int

const (
	KindInvalid Kind = iota
	KindApplication
	KindContact
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindContact:
		return "contact"
	case KindFile:
		return "file"
	}
	return "invalid"
}

// Action is one entry in an entry's action list.
type Action struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// Argument describes what Run expects for this action: "" for nothing,
	// "url" for a URL or path to hand to the program.
	Argument string `json:"argument,omitempty" yaml:"argument,omitempty"`
}

// Entry is a favoritable resource.
type Entry interface {
	Kind() Kind

	// ID is the entry's own identifier (desktop id, contact id, file URL).
	ID() string
	// URL is the canonical URL string of the resource.
	URL() string
	// LocalPath is the symlink-resolved path of the resource on disk,
	// or "" when it has none.
	LocalPath() string

	Name() string
	Icon() string
	Description() string

	IsValid() bool
	HasActions() bool
	Actions() []Action

	// Run performs actionID ("" is the default action) and reports
	// whether it was started.
	Run(actionID string, argument any) bool
}

type invalid struct {
	id string
}

// Invalid returns the entry used for identifiers that resolve to nothing.
func Invalid(id string) Entry {
	return invalid{id: id}
}

func (e invalid) Kind() Kind { return KindInvalid }
func (e invalid) ID() string { return e.id }
func (e invalid) URL() string { return "" }
func (e invalid) LocalPath() string { return "" }
func (e invalid) Name() string { return "" }
func (e invalid) Icon() string { return "unknown" }
func (e invalid) Description() string { return "" }
func (e invalid) IsValid() bool { return false }
func (e invalid) HasActions() bool { return false }
func (e invalid) Actions() []Action { return nil }
func (e invalid) Run(string, any) bool { return false }

func argString(argument any) string {
	switch v := argument.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}
