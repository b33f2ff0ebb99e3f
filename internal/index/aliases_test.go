package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanlsb/favs/internal/entry"
	"github.com/aidanlsb/favs/internal/resolver"
	"github.com/aidanlsb/favs/internal/testutil"
)

type fakeEntry struct {
	entry.Entry
	id, url, path string
	valid         bool
	closed        *int
}

func (e *fakeEntry) ID() string        { return e.id }
func (e *fakeEntry) URL() string       { return e.url }
func (e *fakeEntry) LocalPath() string { return e.path }
func (e *fakeEntry) IsValid() bool     { return e.valid }
func (e *fakeEntry) Close() error {
	*e.closed++
	return nil
}

// fakeResolver hands out a fresh entry per call so instance identity shows
// whether the index reused a cached entry.
type fakeResolver struct {
	known  map[string]fakeEntry
	calls  int
	closed int
}

func (r *fakeResolver) Resolve(id string) entry.Entry {
	r.calls++
	tmpl, ok := r.known[id]
	if !ok {
		for _, e := range r.known {
			if id == e.id || id == e.url || id == e.path {
				tmpl, ok = e, true
				break
			}
		}
	}
	if !ok {
		return &fakeEntry{id: id, closed: &r.closed}
	}
	tmpl.closed = &r.closed
	return &tmpl
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{known: map[string]fakeEntry{
		"dolphin": {
			id:    "org.kde.dolphin.desktop",
			url:   "applications:org.kde.dolphin.desktop",
			path:  "/usr/share/applications/org.kde.dolphin.desktop",
			valid: true,
		},
		"notes": {
			id:    "file:///home/u/notes.txt",
			url:   "file:///home/u/notes.txt",
			path:  "/home/u/notes.txt",
			valid: true,
		},
	}}
}

func TestLookupAliasConvergence(t *testing.T) {
	r := newFakeResolver()
	x := New(r)

	first := x.Lookup("org.kde.dolphin.desktop")
	require.True(t, first.IsValid())

	for _, alias := range []string{
		"org.kde.dolphin.desktop",
		"applications:org.kde.dolphin.desktop",
		"/usr/share/applications/org.kde.dolphin.desktop",
	} {
		assert.Same(t, first, x.Lookup(alias), alias)
	}
	assert.Equal(t, 1, r.calls, "cached aliases must not re-resolve")
}

func TestLookupConvergesOnExistingEntry(t *testing.T) {
	r := newFakeResolver()
	x := New(r)

	byPath := x.Lookup("/home/u/notes.txt")
	before := r.closed

	// "notes" resolves to a fresh instance of the same resource; the index
	// must discard it and hand back the cached one.
	byName := x.Lookup("notes")
	assert.Same(t, byPath, byName)
	assert.Equal(t, before+1, r.closed, "duplicate instance should be closed")
	assert.Equal(t, 1, x.Len())
	assert.Contains(t, x.AliasesOf("notes"), "/home/u/notes.txt")
}

func TestInvalidEntriesOnlyCachedUnderOriginalAlias(t *testing.T) {
	x := New(newFakeResolver())

	e := x.Lookup("ghost")
	assert.False(t, e.IsValid())
	assert.Equal(t, []string{"ghost"}, x.Aliases())

	got, ok := x.Peek("ghost")
	require.True(t, ok)
	assert.Same(t, e, got)

	_, ok = x.Peek("never-looked-up")
	assert.False(t, ok)
}

func TestReconcile(t *testing.T) {
	r := newFakeResolver()
	x := New(r)

	x.Lookup("org.kde.dolphin.desktop")
	x.Lookup("/home/u/notes.txt")
	x.Lookup("ghost")
	require.Equal(t, 3, x.Len())

	// Rows name dolphin by its URL and nothing else.
	rows := []string{"applications:org.kde.dolphin.desktop"}

	dropped := x.Reconcile(rows)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 1, x.Len())
	assert.Equal(t, 2, r.closed)

	// No orphan aliases survive.
	assert.Equal(t, []string{
		"/usr/share/applications/org.kde.dolphin.desktop",
		"applications:org.kde.dolphin.desktop",
		"org.kde.dolphin.desktop",
	}, x.Aliases())

	t.Run("idempotent", func(t *testing.T) {
		assert.Zero(t, x.Reconcile(rows))
		assert.Equal(t, 1, x.Len())
	})

	t.Run("empty rows drop everything", func(t *testing.T) {
		assert.Equal(t, 1, x.Reconcile(nil))
		assert.Zero(t, x.Len())
		assert.Empty(t, x.Aliases())
	})
}

func TestValidEntryDisplacesStaleInvalidAlias(t *testing.T) {
	r := newFakeResolver()
	x := New(r)

	// A path looked up before it became known stays invalid under that name.
	stale := x.Lookup("/home/u/todo.txt")
	require.False(t, stale.IsValid())

	r.known["todo"] = fakeEntry{
		id:    "file:///home/u/todo.txt",
		url:   "file:///home/u/todo.txt",
		path:  "/home/u/todo.txt",
		valid: true,
	}
	fresh := x.Lookup("file:///home/u/todo.txt")
	require.True(t, fresh.IsValid())

	got, ok := x.Peek("/home/u/todo.txt")
	require.True(t, ok)
	assert.Same(t, fresh, got)
	assert.Equal(t, 1, x.Len())

	// Reconciling against the path keeps the valid entry.
	assert.Zero(t, x.Reconcile([]string{"/home/u/todo.txt"}))
	assert.Equal(t, 1, x.Len())
}

func TestIndexWithRealResolver(t *testing.T) {
	home := testutil.NewTestHome(t).
		WithApp("org.kde.konsole.desktop", "Konsole").
		WithFile("notes.txt", "x").
		WithSymlink("notes-link.txt", "notes.txt").
		Build()

	x := New(resolver.New(resolver.Config{ApplicationDirs: []string{home.AppsDir}}))

	app := x.Lookup("applications://org.kde.konsole.desktop")
	require.True(t, app.IsValid())
	for _, alias := range []string{
		"org.kde.konsole.desktop",
		"applications:org.kde.konsole.desktop",
		home.Abs("applications/org.kde.konsole.desktop"),
	} {
		assert.Same(t, app, x.Lookup(alias), alias)
	}

	file := x.Lookup(home.Abs("notes-link.txt"))
	require.True(t, file.IsValid())
	assert.Same(t, file, x.Lookup(home.Abs("notes.txt")))
	assert.Same(t, file, x.Lookup(file.URL()))
}
