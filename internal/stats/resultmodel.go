package stats

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultPageSize is the number of rows made visible per fetch.
const DefaultPageSize = 15

// Observer receives row changes of a ResultModel. Each call is made after
// the model already reflects the change it describes.
type Observer interface {
	ResultsInserted(first, last int)
	ResultsRemoved(first, last int)
	// ResultMoved reports that the row at from now sits at to.
	ResultMoved(from, to int)
	ResultsReset()
}

// ResultModel is an ordered, query-bound view of a Store for one client.
//
// Rows are revealed a page at a time. Every mutation reloads the query and
// reports the difference as removals, then moves and insertions. A change
// caused from inside an observer callback is not reported re-entrantly; it
// is picked up by a reload that runs once the current delivery finishes.
//
// A ResultModel is not safe for concurrent use.
type ResultModel struct {
	store    *Store
	client   string
	query    Query
	pageSize int
	logger   *zap.Logger

	all     []string
	rows    []string
	visible int

	subs        []*subscription
	dispatching bool
	stale       bool
	resetQueued bool
}

type subscription struct {
	obs    Observer
	active bool
}

// ResultOption configures a ResultModel.
type ResultOption func(*ResultModel)

// WithPageSize sets how many rows each fetch reveals. Zero or less reveals
// every row at once.
func WithPageSize(n int) ResultOption {
	return func(m *ResultModel) {
		m.pageSize = n
	}
}

// WithLogger sets the logger used by the model.
func WithLogger(l *zap.Logger) ResultOption {
	return func(m *ResultModel) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewResultModel creates a model over store for client and loads the first
// page of q.
func NewResultModel(ctx context.Context, store *Store, client string, q Query, opts ...ResultOption) (*ResultModel, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if client == "" {
		return nil, fmt.Errorf("client is required")
	}
	m := &ResultModel{
		store:    store,
		client:   client,
		query:    q,
		pageSize: DefaultPageSize,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	all, err := store.Linked(ctx, client, q)
	if err != nil {
		return nil, err
	}
	m.all = all
	m.visible = m.firstPage()
	m.rows = m.visibleRows()
	return m, nil
}

// Client returns the client id the ordering is stored under.
func (m *ResultModel) Client() string { return m.client }

// Query returns the current query.
func (m *ResultModel) Query() Query { return m.query }

// RowCount returns the number of visible rows.
func (m *ResultModel) RowCount() int { return len(m.rows) }

// Resource returns the resource at row, or "" when row is out of range.
func (m *ResultModel) Resource(row int) string {
	if row < 0 || row >= len(m.rows) {
		return ""
	}
	return m.rows[row]
}

// Rows returns a copy of the visible rows.
func (m *ResultModel) Rows() []string {
	return append([]string(nil), m.rows...)
}

// CanFetchMore reports whether the query has rows that are not visible yet.
func (m *ResultModel) CanFetchMore() bool {
	return len(m.rows) < len(m.all)
}

// FetchMore reveals the next page of rows.
func (m *ResultModel) FetchMore(ctx context.Context) error {
	if !m.CanFetchMore() {
		return nil
	}
	m.visible += m.pageSize
	return m.reload(ctx)
}

// Refresh reloads the query, reporting any difference.
func (m *ResultModel) Refresh(ctx context.Context) error {
	return m.reload(ctx)
}

// SetQuery replaces the query and resets the model to its first page.
func (m *ResultModel) SetQuery(ctx context.Context, q Query) error {
	m.query = q
	m.resetQueued = true
	return m.reload(ctx)
}

// LinkToActivity links resource and reloads.
func (m *ResultModel) LinkToActivity(ctx context.Context, resource, activity, agent string) error {
	if err := m.store.Link(ctx, resource, activity, agent); err != nil {
		return err
	}
	return m.reload(ctx)
}

// UnlinkFromActivity unlinks resource and reloads.
func (m *ResultModel) UnlinkFromActivity(ctx context.Context, resource, activity, agent string) error {
	if err := m.store.Unlink(ctx, resource, activity, agent); err != nil {
		return err
	}
	return m.reload(ctx)
}

// SetResultPosition stores index as the position of resource in this
// client's ordering and reloads.
func (m *ResultModel) SetResultPosition(ctx context.Context, resource string, index int) error {
	current, err := m.store.Linked(ctx, m.client, m.query)
	if err != nil {
		return err
	}
	if err := m.store.SetPosition(ctx, m.client, resource, index, current); err != nil {
		return err
	}
	return m.reload(ctx)
}

// LinkedActivities returns the activities resource is linked to under agents.
func (m *ResultModel) LinkedActivities(ctx context.Context, resource string, agents []string) ([]string, error) {
	return m.store.LinkedActivities(ctx, resource, agents)
}

// ActivityName returns the display name of an activity.
func (m *ResultModel) ActivityName(ctx context.Context, id string) (string, error) {
	return m.store.ActivityName(ctx, id)
}

// Subscribe registers o for row changes and returns a function that
// unregisters it.
func (m *ResultModel) Subscribe(o Observer) func() {
	s := &subscription{obs: o, active: true}
	m.subs = append(m.subs, s)
	return func() {
		if !s.active {
			return
		}
		s.active = false
		for i, cur := range m.subs {
			if cur == s {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				break
			}
		}
	}
}

func (m *ResultModel) reload(ctx context.Context) error {
	if m.dispatching {
		m.stale = true
		return nil
	}
	m.dispatching = true
	defer func() { m.dispatching = false }()

	for {
		m.stale = false
		all, err := m.store.Linked(ctx, m.client, m.query)
		if err != nil {
			return err
		}
		m.all = all

		if m.resetQueued {
			m.resetQueued = false
			m.visible = m.firstPage()
			m.rows = m.visibleRows()
			m.logger.Debug("results reset", zap.String("client", m.client), zap.Int("rows", len(m.rows)))
			m.notify(func(o Observer) { o.ResultsReset() })
		} else {
			m.apply(m.visibleRows())
		}

		if !m.stale && !m.resetQueued {
			return nil
		}
	}
}

// apply turns the visible rows into target, one reported step at a time.
func (m *ResultModel) apply(target []string) {
	want := make(map[string]struct{}, len(target))
	for _, r := range target {
		want[r] = struct{}{}
	}
	gone := func(r string) bool {
		_, ok := want[r]
		return !ok
	}

	for last := len(m.rows) - 1; last >= 0; last-- {
		if !gone(m.rows[last]) {
			continue
		}
		first := last
		for first > 0 && gone(m.rows[first-1]) {
			first--
		}
		m.rows = append(m.rows[:first], m.rows[last+1:]...)
		f, l := first, last
		m.notify(func(o Observer) { o.ResultsRemoved(f, l) })
		last = first
	}

	present := make(map[string]struct{}, len(m.rows))
	for _, r := range m.rows {
		present[r] = struct{}{}
	}

	for i := 0; i < len(target); {
		r := target[i]
		if i < len(m.rows) && m.rows[i] == r {
			i++
			continue
		}
		if _, ok := present[r]; ok {
			from := indexOf(m.rows, r)
			m.rows = moveRow(m.rows, from, i)
			to := i
			m.notify(func(o Observer) { o.ResultMoved(from, to) })
			i++
			continue
		}

		end := i
		for end < len(target) {
			if _, ok := present[target[end]]; ok {
				break
			}
			present[target[end]] = struct{}{}
			end++
		}
		added := append([]string(nil), target[i:end]...)
		m.rows = append(m.rows[:i], append(added, m.rows[i:]...)...)
		first, last := i, end-1
		m.notify(func(o Observer) { o.ResultsInserted(first, last) })
		i = end
	}
}

func (m *ResultModel) notify(fn func(Observer)) {
	subs := append([]*subscription(nil), m.subs...)
	for _, s := range subs {
		if s.active {
			fn(s.obs)
		}
	}
}

func (m *ResultModel) firstPage() int {
	if m.pageSize <= 0 {
		return len(m.all)
	}
	return m.pageSize
}

func (m *ResultModel) visibleRows() []string {
	n := len(m.all)
	if m.pageSize > 0 && m.visible < n {
		n = m.visible
	}
	return append([]string(nil), m.all[:n]...)
}

func indexOf(rows []string, r string) int {
	for i, cur := range rows {
		if cur == r {
			return i
		}
	}
	return -1
}

// moveRow moves rows[from] so that it ends up at index to.
func moveRow(rows []string, from, to int) []string {
	r := rows[from]
	rows = append(rows[:from], rows[from+1:]...)
	rows = append(rows[:to], append([]string{r}, rows[to:]...)...)
	return rows
}
