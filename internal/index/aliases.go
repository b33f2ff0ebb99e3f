// Package index caches resolved favorite entries under every name they are
// known by.
//
// An entry is registered under up to four aliases: the identifier it was
// first looked up by, its own id, its canonical URL and its canonical local
// path. All aliases of an entry share one slot, so the entry is dropped
// exactly once, when reconciliation finds none of its aliases in the current
// rows.
package index

import (
	"io"
	"sort"
	"sync"

	"github.com/aidanlsb/favs/internal/entry"
)

// Resolver builds entries for identifiers the index has not seen.
type Resolver interface {
	Resolve(id string) entry.Entry
}

type slot struct {
	entry   entry.Entry
	aliases []string
}

func (s *slot) has(alias string) bool {
	for _, a := range s.aliases {
		if a == alias {
			return true
		}
	}
	return false
}

func (s *slot) detach(alias string) {
	for i, a := range s.aliases {
		if a == alias {
			s.aliases = append(s.aliases[:i], s.aliases[i+1:]...)
			return
		}
	}
}

// Index is the alias cache. It is safe for concurrent use; lookups that
// resolve a new entry do so while holding the lock.
type Index struct {
	mu       sync.Mutex
	resolver Resolver
	byAlias  map[string]*slot
}

// New creates an empty index resolving misses through r.
func New(r Resolver) *Index {
	return &Index{
		resolver: r,
		byAlias:  make(map[string]*slot),
	}
}

// Lookup returns the entry for alias, resolving and registering it on a miss.
// The result may be invalid; it is never nil.
func (x *Index) Lookup(alias string) entry.Entry {
	x.mu.Lock()
	defer x.mu.Unlock()

	if s, ok := x.byAlias[alias]; ok {
		return s.entry
	}

	e := x.resolver.Resolve(alias)
	if e == nil {
		e = entry.Invalid(alias)
	}

	if !e.IsValid() {
		// Invalid entries are only known by the name they were asked for;
		// their derived names could belong to a valid entry later.
		x.attach(&slot{entry: e}, alias)
		return e
	}

	derived := derivedAliases(e)

	// Another name of the same resource is already cached: converge on
	// that entry instead of keeping a second instance.
	for _, a := range derived {
		if existing, ok := x.byAlias[a]; ok && existing.entry.IsValid() {
			closeEntry(e)
			x.attach(existing, alias)
			return existing.entry
		}
	}

	s := &slot{entry: e}
	x.attach(s, alias)
	for _, a := range derived {
		x.attach(s, a)
	}
	return e
}

// Peek returns the cached entry for alias without resolving.
func (x *Index) Peek(alias string) (entry.Entry, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	s, ok := x.byAlias[alias]
	if !ok {
		return nil, false
	}
	return s.entry, true
}

// Reconcile drops every cached entry none of whose aliases is reachable from
// rows. A row reaches its own string and, when cached, all aliases of its
// entry. rows must be the complete current row set. Returns the number of
// entries dropped; a second call with the same rows drops nothing.
func (x *Index) Reconcile(rows []string) int {
	x.mu.Lock()
	defer x.mu.Unlock()

	reachable := make(map[string]struct{}, len(rows)*4)
	for _, row := range rows {
		reachable[row] = struct{}{}
		if s, ok := x.byAlias[row]; ok {
			for _, a := range s.aliases {
				reachable[a] = struct{}{}
			}
		}
	}

	dropped := 0
	for _, s := range x.slots() {
		live := false
		for _, a := range s.aliases {
			if _, ok := reachable[a]; ok {
				live = true
				break
			}
		}
		if live {
			continue
		}
		for _, a := range s.aliases {
			delete(x.byAlias, a)
		}
		closeEntry(s.entry)
		dropped++
	}
	return dropped
}

// Len returns the number of cached entries.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.slots())
}

// Aliases returns every registered alias, sorted.
func (x *Index) Aliases() []string {
	x.mu.Lock()
	defer x.mu.Unlock()

	out := make([]string, 0, len(x.byAlias))
	for a := range x.byAlias {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// AliasesOf returns the aliases sharing alias's entry, or nil when alias is
// not cached.
func (x *Index) AliasesOf(alias string) []string {
	x.mu.Lock()
	defer x.mu.Unlock()

	s, ok := x.byAlias[alias]
	if !ok {
		return nil
	}
	return append([]string(nil), s.aliases...)
}

func (x *Index) attach(s *slot, alias string) {
	if alias == "" || s.has(alias) {
		return
	}
	if prev, ok := x.byAlias[alias]; ok {
		// Only an invalid entry can be displaced here.
		prev.detach(alias)
		if len(prev.aliases) == 0 {
			closeEntry(prev.entry)
		}
	}
	s.aliases = append(s.aliases, alias)
	x.byAlias[alias] = s
}

func (x *Index) slots() []*slot {
	seen := make(map[*slot]struct{}, len(x.byAlias))
	out := make([]*slot, 0, len(x.byAlias))
	for _, s := range x.byAlias {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func derivedAliases(e entry.Entry) []string {
	out := make([]string, 0, 3)
	for _, a := range []string{e.ID(), e.URL(), e.LocalPath()} {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

func closeEntry(e entry.Entry) {
	if c, ok := e.(io.Closer); ok {
		_ = c.Close()
	}
}
