// Package favorites presents the activity-linked favorites as a row model.
//
// Rows come from a Source, an ordered query over the activity store. Each
// row's resource is resolved to an entry through the alias index; reads
// that hit an invalid entry unlink it from the store. During a drag the
// model can show one placeholder row, and an add at an explicit position
// is completed once the store reports the new row.
//
// A Model is driven from a single goroutine. Listener callbacks run
// synchronously before the call that caused them returns.
package favorites

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aidanlsb/favs/internal/entry"
	"github.com/aidanlsb/favs/internal/index"
	"github.com/aidanlsb/favs/internal/resolver"
	"github.com/aidanlsb/favs/internal/stats"
)

// DefaultMaxFavorites is the query limit of a new model.
const DefaultMaxFavorites = 15

// Source is the ordered result provider behind a Model.
// *stats.ResultModel implements it.
type Source interface {
	RowCount() int
	Resource(row int) string
	Rows() []string
	CanFetchMore() bool
	FetchMore(ctx context.Context) error
	Refresh(ctx context.Context) error
	SetQuery(ctx context.Context, q stats.Query) error
	LinkToActivity(ctx context.Context, resource, activity, agent string) error
	UnlinkFromActivity(ctx context.Context, resource, activity, agent string) error
	SetResultPosition(ctx context.Context, resource string, index int) error
	LinkedActivities(ctx context.Context, resource string, agents []string) ([]string, error)
	ActivityName(ctx context.Context, id string) (string, error)
	Subscribe(o stats.Observer) func()
}

// Listener receives row changes in presented row numbers. RowsMoved uses a
// destination that counts the moved row's old slot, so moving row 1 to
// the end of three rows reports dest 3.
type Listener interface {
	RowsInserted(first, last int)
	RowsRemoved(first, last int)
	RowsMoved(first, last, dest int)
	ModelReset()
}

// Model is the favorites row model.
type Model struct {
	source Source
	index  *index.Index
	logger *zap.Logger

	now         func() time.Time
	dropTimeout time.Duration
	migration   MigrationFlag

	enabled      bool
	maxFavorites int

	placeholder int
	drop        *dropRequest
	unlinked    map[string]struct{}

	listeners   []*listener
	unsubscribe func()
}

type listener struct {
	l      Listener
	active bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source used for drop expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithDropTimeout sets how long a pending drop waits for its row. Zero
// waits until the drop is superseded.
func WithDropTimeout(d time.Duration) Option {
	return func(m *Model) {
		m.dropTimeout = d
	}
}

// WithMigrationFlag sets the persisted flag that gates ImportLegacy.
func WithMigrationFlag(f MigrationFlag) Option {
	return func(m *Model) {
		m.migration = f
	}
}

// WithMaxFavorites sets the query limit.
func WithMaxFavorites(n int) Option {
	return func(m *Model) {
		m.maxFavorites = n
	}
}

// New creates a model over source, resolving rows through idx, and loads
// the favorites query.
func New(source Source, idx *index.Index, opts ...Option) *Model {
	m := &Model{
		source:       source,
		index:        idx,
		logger:       zap.NewNop(),
		now:          time.Now,
		enabled:      true,
		maxFavorites: DefaultMaxFavorites,
		placeholder:  -1,
		unlinked:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.unsubscribe = source.Subscribe(sourceEvents{m})
	m.Refresh()
	return m
}

// Close detaches the model from its source.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Description names the model for display.
func (m *Model) Description() string {
	return "Favorites"
}

// Enabled reports whether favorites are enabled.
func (m *Model) Enabled() bool { return m.enabled }

// SetEnabled toggles favorites.
func (m *Model) SetEnabled(enabled bool) {
	if m.enabled != enabled {
		m.enabled = enabled
		m.logger.Debug("favorites enabled changed", zap.Bool("enabled", enabled))
	}
}

// MaxFavorites returns the query limit.
func (m *Model) MaxFavorites() int { return m.maxFavorites }

// SetMaxFavorites changes the query limit and reloads.
func (m *Model) SetMaxFavorites(n int) {
	if n == m.maxFavorites {
		return
	}
	m.maxFavorites = n
	m.Refresh()
}

// Query returns the query the model loads.
func (m *Model) Query() stats.Query {
	return QueryFor(m.maxFavorites)
}

// QueryFor returns the favorites query with the given limit: every
// favorites agent, linked to the current or the global activity.
func QueryFor(limit int) stats.Query {
	return stats.LinkedResources().
		WithAgents(resolver.Agents...).
		WithActivities(stats.CurrentActivity, stats.GlobalActivity).
		WithLimit(limit)
}

// Refresh rebuilds the query and resets the model. The placeholder and any
// pending drop are discarded.
func (m *Model) Refresh() {
	ctx := context.Background()
	m.placeholder = -1
	m.drop = nil

	m.logger.Debug("refreshing favorites", zap.Int("limit", m.maxFavorites))
	if err := m.source.SetQuery(ctx, m.Query()); err != nil {
		m.logger.Warn("failed to load favorites", zap.Error(err))
	}
	if m.source.CanFetchMore() {
		if err := m.source.FetchMore(ctx); err != nil {
			m.logger.Warn("failed to fetch favorites", zap.Error(err))
		}
	}
	m.reconcile(m.source.Rows())
}

// Reload picks up changes made to the store by other processes.
func (m *Model) Reload() error {
	return m.source.Refresh(context.Background())
}

// AddListener registers l and returns a function that removes it.
func (m *Model) AddListener(l Listener) func() {
	reg := &listener{l: l, active: true}
	m.listeners = append(m.listeners, reg)
	return func() {
		reg.active = false
		for i, cur := range m.listeners {
			if cur == reg {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

func (m *Model) emit(fn func(Listener)) {
	for _, l := range append([]*listener(nil), m.listeners...) {
		if l.active {
			fn(l.l)
		}
	}
}

// Data returns the value of role for row, or nil when row is out of range
// or the role has no value.
func (m *Model) Data(row int, role Role) any {
	if row < 0 || row >= m.RowCount() {
		return nil
	}
	if row == m.placeholder {
		if role == IsDropPlaceholderRole {
			return true
		}
		return nil
	}

	resource := m.source.Resource(m.toSource(row))
	e := m.entryFor(resource)

	if !e.IsValid() {
		switch role {
		case DisplayRole, DecorationRole:
			return "unknown"
		case FavoriteIDRole, URLRole:
			return resource
		case HasActionListRole, IsDropPlaceholderRole:
			return false
		}
		return nil
	}

	switch role {
	case DisplayRole:
		return e.Name()
	case DecorationRole:
		return e.Icon()
	case DescriptionRole:
		return e.Description()
	case FavoriteIDRole:
		return e.ID()
	case URLRole:
		return e.URL()
	case HasActionListRole:
		return e.HasActions()
	case ActionListRole:
		return e.Actions()
	case IsDropPlaceholderRole:
		return false
	}
	return nil
}

// Entry returns the resolved entry behind row.
func (m *Model) Entry(row int) (entry.Entry, bool) {
	if row < 0 || row >= m.RowCount() || row == m.placeholder {
		return nil, false
	}
	return m.entryFor(m.source.Resource(m.toSource(row))), true
}

// Trigger runs actionID of the entry at row.
func (m *Model) Trigger(row int, actionID string, argument any) bool {
	if row < 0 || row >= m.RowCount() || row == m.placeholder {
		return false
	}
	e := m.index.Lookup(m.source.Resource(m.toSource(row)))
	if !e.IsValid() {
		return false
	}
	ok := e.Run(actionID, argument)
	m.logger.Debug("triggered", zap.String("id", e.ID()), zap.String("action", actionID), zap.Bool("ok", ok))
	return ok
}

// entryFor resolves the resource of a row being read. Reading a row is
// where a pending drop is completed and where invalid favorites are
// unlinked.
func (m *Model) entryFor(resource string) entry.Entry {
	m.checkDrop(resource)
	e := m.index.Lookup(resource)
	if !e.IsValid() {
		m.unlinkInvalid(resource)
	}
	return e
}

// reconcile prunes the alias index and the invalid-unlink record against
// rows, the complete current row set.
func (m *Model) reconcile(rows []string) {
	if n := m.index.Reconcile(rows); n > 0 {
		m.logger.Debug("pruned cached entries", zap.Int("count", n))
	}
	if len(m.unlinked) == 0 {
		return
	}
	live := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		canonical, _ := resolver.Normalize(r)
		live[canonical] = struct{}{}
	}
	for k := range m.unlinked {
		if _, ok := live[k]; !ok {
			delete(m.unlinked, k)
		}
	}
}
