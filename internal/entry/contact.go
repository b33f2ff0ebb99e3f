package entry

import (
	"strings"
)

// ContactScheme marks instant-messaging contact ids (ktp://account?contact).
const ContactScheme = "ktp"

// ContactBook looks up display names for contact ids.
type ContactBook interface {
	Lookup(id string) (name string, ok bool)
}

// StaticContacts is a ContactBook backed by a fixed map, as read from config.
type StaticContacts map[string]string

// Lookup implements ContactBook.
func (c StaticContacts) Lookup(id string) (string, bool) {
	name, ok := c[id]
	return name, ok
}

// Contact is a chat contact entry.
type Contact struct {
	id       string
	name     string
	known    bool
	launcher Launcher
}

// NewContact builds the entry for a ktp:// id. Contacts the book does not
// know are invalid.
func NewContact(id string, book ContactBook, l Launcher) *Contact {
	c := &Contact{id: id, launcher: launcherOrDefault(l)}
	if book != nil {
		c.name, c.known = book.Lookup(id)
	}
	return c
}

func (c *Contact) Kind() Kind { return KindContact }
func (c *Contact) ID() string { return c.id }
func (c *Contact) URL() string { return c.id }
func (c *Contact) LocalPath() string { return "" }
func (c *Contact) Icon() string { return "im-user" }
func (c *Contact) IsValid() bool { return c.known }
func (c *Contact) HasActions() bool { return c.known }

func (c *Contact) Name() string {
	if c.name != "" {
		return c.name
	}
	return c.contactPart()
}

// Description is the account the contact belongs to.
func (c *Contact) Description() string {
	rest := strings.TrimPrefix(c.id, ContactScheme+"://")
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		return rest[:i]
	}
	return rest
}

func (c *Contact) contactPart() string {
	if i := strings.IndexByte(c.id, '?'); i >= 0 {
		return c.id[i+1:]
	}
	return c.id
}

func (c *Contact) Actions() []Action {
	if !c.known {
		return nil
	}
	return []Action{{ID: "open", Label: "Start Conversation", Icon: "text-x-generic"}}
}

// Run opens a conversation for "" and "open".
func (c *Contact) Run(actionID string, _ any) bool {
	if !c.known || (actionID != "" && actionID != "open") {
		return false
	}
	return c.launcher.Open(c.id) == nil
}
