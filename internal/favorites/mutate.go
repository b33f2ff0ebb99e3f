package favorites

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aidanlsb/favs/internal/paths"
	"github.com/aidanlsb/favs/internal/resolver"
	"github.com/aidanlsb/favs/internal/stats"
)

// AddFavorite links id to the current activity. A non-negative index asks
// for the favorite to end up at that row.
func (m *Model) AddFavorite(id string, index int) {
	m.AddFavoriteTo(id, stats.CurrentActivity, index)
}

// AddFavoriteTo links id to activity. Local files that do not exist are
// ignored. When id is already a favorite and index is given, it is moved
// there directly; otherwise the move happens once the new row appears.
func (m *Model) AddFavoriteTo(id, activity string, index int) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	if activity == "" {
		activity = stats.CurrentActivity
	}

	url, scheme := resolver.Normalize(id)
	m.logger.Debug("adding favorite", zap.String("id", id), zap.String("url", url), zap.String("scheme", scheme))

	if scheme == "" && !paths.Exists(url) {
		m.logger.Debug("not adding missing file", zap.String("path", url))
		return
	}

	ctx := context.Background()
	existing := ""
	if row := m.sourceRowOf(url); row >= 0 {
		existing = m.source.Resource(row)
	}
	if index >= 0 && existing == "" {
		m.requestInsertAt(url, index)
	}
	delete(m.unlinked, url)

	if err := m.source.LinkToActivity(ctx, url, activity, resolver.AgentForScheme(scheme)); err != nil {
		m.logger.Warn("failed to link favorite", zap.String("url", url), zap.String("activity", activity), zap.Error(err))
		return
	}

	if index >= 0 && existing != "" {
		if err := m.source.SetResultPosition(ctx, existing, index); err != nil {
			m.logger.Warn("failed to position favorite", zap.String("url", url), zap.Error(err))
		}
	}
}

// RemoveFavorite unlinks id from the current activity.
func (m *Model) RemoveFavorite(id string) {
	m.RemoveFavoriteFrom(id, stats.CurrentActivity)
}

// RemoveFavoriteFrom unlinks id from activity. Removing something that is
// not a favorite does nothing.
func (m *Model) RemoveFavoriteFrom(id, activity string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	if activity == "" {
		activity = stats.CurrentActivity
	}

	url, scheme := resolver.Normalize(id)
	m.logger.Debug("removing favorite", zap.String("id", id), zap.String("url", url))
	if err := m.source.UnlinkFromActivity(context.Background(), url, activity, resolver.AgentForScheme(scheme)); err != nil {
		m.logger.Warn("failed to unlink favorite", zap.String("url", url), zap.String("activity", activity), zap.Error(err))
	}
}

// MoveRow asks the store to put the favorite at row from at row to.
// It returns false for rows out of range or the placeholder.
func (m *Model) MoveRow(from, to int) bool {
	n := m.RowCount()
	if from < 0 || from >= n || to < 0 || to >= n || from == m.placeholder {
		return false
	}

	resource := m.source.Resource(m.toSource(from))
	target := to
	if m.placeholder >= 0 && to > m.placeholder {
		target--
	}

	m.logger.Debug("moving favorite", zap.String("resource", resource), zap.Int("from", from), zap.Int("to", target))
	if err := m.source.SetResultPosition(context.Background(), resource, target); err != nil {
		m.logger.Warn("failed to move favorite", zap.String("resource", resource), zap.Error(err))
		return false
	}
	return true
}

// IsFavorite reports whether id names one of the current favorites under
// any of its aliases.
func (m *Model) IsFavorite(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}

	rows := m.source.Rows()
	m.reconcile(rows)

	url, _ := resolver.Normalize(id)
	for _, r := range rows {
		if r == id || r == url {
			return true
		}
		// Resolving a row registers every alias of its entry.
		m.index.Lookup(r)
	}
	// Everything left in the index after reconciling is reachable from a row.
	for _, alias := range []string{id, url} {
		if _, ok := m.index.Peek(alias); ok {
			return true
		}
	}
	return false
}

// LinkedActivitiesFor returns the activities id is linked to.
func (m *Model) LinkedActivitiesFor(id string) []string {
	url, scheme := resolver.Normalize(id)
	if url == "" {
		return nil
	}
	acts, err := m.source.LinkedActivities(context.Background(), url, []string{resolver.AgentForScheme(scheme)})
	if err != nil {
		m.logger.Warn("failed to read linked activities", zap.String("url", url), zap.Error(err))
		return nil
	}
	return acts
}

// ActivityNameForID returns the display name of an activity, or "" when it
// is unknown.
func (m *Model) ActivityNameForID(id string) string {
	name, err := m.source.ActivityName(context.Background(), id)
	if err != nil {
		m.logger.Debug("unknown activity", zap.String("id", id), zap.Error(err))
		return ""
	}
	return name
}

// unlinkInvalid removes an unresolvable favorite from every activity, once
// per canonical id while it stays in the rows.
func (m *Model) unlinkInvalid(resource string) {
	url, scheme := resolver.Normalize(resource)
	if url == "" {
		url = resource
	}
	if _, done := m.unlinked[url]; done {
		return
	}
	m.unlinked[url] = struct{}{}

	m.logger.Info("unlinking invalid favorite", zap.String("resource", resource))
	if err := m.source.UnlinkFromActivity(context.Background(), resource, stats.AnyActivity, resolver.AgentForScheme(scheme)); err != nil {
		m.logger.Warn("failed to unlink invalid favorite", zap.String("resource", resource), zap.Error(err))
	}
}

// sourceRowOf returns the source row whose resource is url, comparing
// canonical forms, or -1.
func (m *Model) sourceRowOf(url string) int {
	for row, r := range m.source.Rows() {
		if r == url {
			return row
		}
		if canonical, _ := resolver.Normalize(r); canonical == url {
			return row
		}
	}
	return -1
}
