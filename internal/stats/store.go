// Package stats is the activity-scoped resource store that backs favorites.
//
// Resources are linked to an activity under an agent. A client can persist
// its own ordering of the resources it sees; resources without a stored
// position sort after positioned ones, oldest link first.
package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Activity terms understood wherever an activity id is accepted.
const (
	CurrentActivity = ":current"
	GlobalActivity  = ":global"
	AnyActivity     = ":any"
)

// AnyAgent matches resources linked under every agent.
const AnyAgent = ":any"

var (
	// ErrNotLinked indicates the resource is not part of the result set.
	ErrNotLinked = errors.New("resource is not linked")
	// ErrUnknownActivity indicates the activity id does not exist.
	ErrUnknownActivity = errors.New("unknown activity")
)

// CurrentSchemaVersion is the store schema version.
const CurrentSchemaVersion = 1

const defaultActivityName = "Default"

// Activity is a named scope resources can be linked to.
type Activity struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Store is the SQLite-backed activity store.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used by the store.
func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for link timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens or creates the store at path.
func Open(path string, opts ...StoreOption) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return newStore(db, path, opts)
}

// OpenInMemory opens a private in-memory store (for testing).
func OpenInMemory(opts ...StoreOption) (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every connection would otherwise see its own empty database.
	db.SetMaxOpenConns(1)
	return newStore(db, "", opts)
}

func newStore(db *sql.DB, path string, opts []StoreOption) (*Store, error) {
	s := &Store{db: db, path: path, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS resource_links (
			activity TEXT NOT NULL,
			agent TEXT NOT NULL,
			resource TEXT NOT NULL,
			linked_at INTEGER NOT NULL,
			PRIMARY KEY (activity, agent, resource)
		);

		-- Per-client ordering of resources
		CREATE TABLE IF NOT EXISTS result_positions (
			client TEXT NOT NULL,
			resource TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (client, resource)
		);

		CREATE INDEX IF NOT EXISTS idx_links_resource ON resource_links(resource);
		CREATE INDEX IF NOT EXISTS idx_links_agent ON resource_links(agent, activity);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize store schema: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		strconv.Itoa(CurrentSchemaVersion)); err != nil {
		return fmt.Errorf("failed to set store version: %w", err)
	}

	// A fresh store starts with one activity that is also current.
	if _, err := s.currentActivityID(ctx); errors.Is(err, ErrUnknownActivity) {
		id, err := s.CreateActivity(ctx, defaultActivityName)
		if err != nil {
			return err
		}
		return s.SetCurrentActivity(ctx, id)
	} else if err != nil {
		return err
	}
	return nil
}

// Link links resource to activity under agent. Linking an already linked
// resource keeps its original link time.
func (s *Store) Link(ctx context.Context, resource, activity, agent string) error {
	if resource == "" {
		return fmt.Errorf("resource is required")
	}
	if agent == "" || agent == AnyAgent {
		return fmt.Errorf("a concrete agent is required to link %q", resource)
	}
	act, err := s.resolveActivity(ctx, activity)
	if err != nil {
		return err
	}
	if act == AnyActivity {
		return fmt.Errorf("cannot link %q to %s: %w", resource, AnyActivity, ErrUnknownActivity)
	}

	// Link times are strictly increasing so that insertion order is kept
	// even when the clock does not advance between links.
	var last int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(linked_at), 0) FROM resource_links`).Scan(&last); err != nil {
		return fmt.Errorf("failed to read link clock: %w", err)
	}
	at := s.now().UnixNano()
	if at <= last {
		at = last + 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO resource_links (activity, agent, resource, linked_at) VALUES (?, ?, ?, ?)`,
		act, agent, resource, at)
	if err != nil {
		return fmt.Errorf("failed to link %q: %w", resource, err)
	}
	s.logger.Debug("linked", zap.String("resource", resource), zap.String("activity", act), zap.String("agent", agent))
	return nil
}

// Unlink removes the link of resource to activity under agent. AnyActivity
// and AnyAgent widen the match. Unlinking something that is not linked is
// not an error.
func (s *Store) Unlink(ctx context.Context, resource, activity, agent string) error {
	act, err := s.resolveActivity(ctx, activity)
	if err != nil {
		return err
	}

	query := `DELETE FROM resource_links WHERE resource = ?`
	args := []any{resource}
	if act != AnyActivity {
		query += ` AND activity = ?`
		args = append(args, act)
	}
	if agent != "" && agent != AnyAgent {
		query += ` AND agent = ?`
		args = append(args, agent)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to unlink %q: %w", resource, err)
	}
	n, _ := res.RowsAffected()
	s.logger.Debug("unlinked", zap.String("resource", resource), zap.String("activity", act), zap.Int64("links", n))
	return nil
}

// Linked returns the resources matching q in client order.
func (s *Store) Linked(ctx context.Context, client string, q Query) ([]string, error) {
	var where []string
	args := []any{client}

	if agents := q.concreteAgents(); agents != nil {
		ph, a := inClause(agents)
		where = append(where, "l.agent IN ("+ph+")")
		args = append(args, a...)
	}

	activities, err := s.queryActivities(ctx, q.Activities)
	if err != nil {
		return nil, err
	}
	if activities != nil {
		ph, a := inClause(activities)
		where = append(where, "l.activity IN ("+ph+")")
		args = append(args, a...)
	}

	query := `
		SELECT l.resource, MIN(l.linked_at) AS first_linked, MAX(p.position) AS pos
		FROM resource_links l
		LEFT JOIN result_positions p ON p.client = ? AND p.resource = l.resource`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += `
		GROUP BY l.resource
		ORDER BY pos IS NULL, pos, first_linked, l.resource
		LIMIT ?`
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked resources: %w", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (string, error) {
		var resource string
		var firstLinked int64
		var pos sql.NullInt64
		err := rows.Scan(&resource, &firstLinked, &pos)
		return resource, err
	})
}

// SetPosition moves resource to index within current, the ordering the
// client presently sees. Stored positions of resources outside current,
// such as those of other activities, keep their relative order; the
// resources in current are written back into the slots they held.
func (s *Store) SetPosition(ctx context.Context, client, resource string, index int, current []string) error {
	order := make([]string, 0, len(current))
	found := false
	for _, r := range current {
		if r == resource {
			found = true
			continue
		}
		order = append(order, r)
	}
	if !found {
		return fmt.Errorf("cannot position %q: %w", resource, ErrNotLinked)
	}
	if index < 0 {
		index = 0
	}
	if index > len(order) {
		index = len(order)
	}
	order = append(order, "")
	copy(order[index+1:], order[index:])
	order[index] = resource

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stored, err := storedOrder(ctx, tx, client)
	if err != nil {
		return err
	}
	order = mergeOrder(stored, order)

	if _, err := tx.ExecContext(ctx, `DELETE FROM result_positions WHERE client = ?`, client); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO result_positions (client, resource, position) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range order {
		if _, err := stmt.ExecContext(ctx, client, r, i); err != nil {
			return fmt.Errorf("failed to store position of %q: %w", r, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("positioned", zap.String("client", client), zap.String("resource", resource), zap.Int("index", index))
	return nil
}

func storedOrder(ctx context.Context, tx *sql.Tx, client string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT resource FROM result_positions WHERE client = ? ORDER BY position, resource`, client)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (string, error) {
		var resource string
		err := rows.Scan(&resource)
		return resource, err
	})
}

// mergeOrder places order into stored. Each stored slot held by a resource
// of order takes the next resource of order; resources of order that had
// no slot follow at the end.
func mergeOrder(stored, order []string) []string {
	inOrder := make(map[string]bool, len(order))
	for _, r := range order {
		inOrder[r] = true
	}
	merged := make([]string, 0, len(stored)+len(order))
	next := 0
	for _, r := range stored {
		if inOrder[r] {
			r = order[next]
			next++
		}
		merged = append(merged, r)
	}
	return append(merged, order[next:]...)
}

// LinkedActivities returns the activities resource is linked to under any
// of agents, sorted. A nil agents slice matches every agent.
func (s *Store) LinkedActivities(ctx context.Context, resource string, agents []string) ([]string, error) {
	query := `SELECT DISTINCT activity FROM resource_links WHERE resource = ?`
	args := []any{resource}
	if agents := concrete(agents); agents != nil {
		ph, a := inClause(agents)
		query += ` AND agent IN (` + ph + `)`
		args = append(args, a...)
	}
	query += ` ORDER BY activity`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities of %q: %w", resource, err)
	}
	return scanRows(rows, func(rows *sql.Rows) (string, error) {
		var a string
		err := rows.Scan(&a)
		return a, err
	})
}

// CurrentActivity returns the id of the current activity.
func (s *Store) CurrentActivity(ctx context.Context) (string, error) {
	return s.currentActivityID(ctx)
}

// SetCurrentActivity makes id the current activity.
func (s *Store) SetCurrentActivity(ctx context.Context, id string) error {
	if _, err := s.ActivityName(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO meta (key, value) VALUES ('current_activity', ?)`, id)
	if err != nil {
		return fmt.Errorf("failed to set current activity: %w", err)
	}
	return nil
}

// CreateActivity creates a new activity and returns its id.
func (s *Store) CreateActivity(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("activity name is required")
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO activities (id, name, created_at) VALUES (?, ?, ?)`,
		id, name, s.now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to create activity: %w", err)
	}
	return id, nil
}

// Activities lists all activities, oldest first.
func (s *Store) Activities(ctx context.Context) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM activities ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (Activity, error) {
		var a Activity
		var created int64
		if err := rows.Scan(&a.ID, &a.Name, &created); err != nil {
			return a, err
		}
		a.CreatedAt = time.Unix(created, 0)
		return a, nil
	})
}

// ActivityName returns the display name of an activity id or term.
func (s *Store) ActivityName(ctx context.Context, id string) (string, error) {
	switch id {
	case GlobalActivity:
		return "Global", nil
	case AnyActivity:
		return "Any", nil
	case CurrentActivity:
		cur, err := s.currentActivityID(ctx)
		if err != nil {
			return "", err
		}
		id = cur
	}

	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM activities WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%q: %w", id, ErrUnknownActivity)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (s *Store) currentActivityID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'current_activity'`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no current activity: %w", ErrUnknownActivity)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read current activity: %w", err)
	}
	return id, nil
}

// resolveActivity maps an activity term to the value stored in
// resource_links. Concrete ids must exist.
func (s *Store) resolveActivity(ctx context.Context, activity string) (string, error) {
	switch activity {
	case "", CurrentActivity:
		return s.currentActivityID(ctx)
	case GlobalActivity, AnyActivity:
		return activity, nil
	}
	if _, err := s.ActivityName(ctx, activity); err != nil {
		return "", err
	}
	return activity, nil
}

// queryActivities resolves the activity filter of a query; nil means no
// filter.
func (s *Store) queryActivities(ctx context.Context, terms []string) ([]string, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == AnyActivity {
			return nil, nil
		}
		act, err := s.resolveActivity(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, act)
	}
	return out, nil
}

// inClause returns "?" placeholders and args for an IN clause.
func inClause(items []string) (string, []any) {
	if len(items) == 0 {
		return "NULL", nil
	}
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(items)), ", ")
	args := make([]any, len(items))
	for i, item := range items {
		args[i] = item
	}
	return ph, args
}

func scanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
