package favorites

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aidanlsb/favs/internal/resolver"
)

// dropRequest is an insert-at-position waiting for its row to appear.
type dropRequest struct {
	target  string
	index   int
	created time.Time
}

func (d *dropRequest) expired(now time.Time, timeout time.Duration) bool {
	return timeout > 0 && now.Sub(d.created) > timeout
}

func (d *dropRequest) matches(resource string) bool {
	if resource == "" {
		return false
	}
	if resource == d.target {
		return true
	}
	canonical, _ := resolver.Normalize(resource)
	return canonical == d.target
}

// requestInsertAt replaces any pending drop with one that moves target to
// index once its row shows up. A negative index means the end of the
// current rows.
func (m *Model) requestInsertAt(target string, index int) {
	if index < 0 {
		index = m.source.RowCount()
	}
	m.SetDropPlaceholderIndex(-1)

	if m.drop != nil {
		m.logger.Debug("drop superseded", zap.String("previous", m.drop.target), zap.String("target", target))
	}
	m.drop = &dropRequest{target: target, index: index, created: m.now()}
	m.logger.Debug("drop pending", zap.String("target", target), zap.Int("index", index))
}

// checkDrop fires the pending drop if resource is its target. The request
// is cleared before the reposition call, whatever its outcome.
func (m *Model) checkDrop(resource string) {
	d := m.drop
	if d == nil {
		return
	}
	if d.expired(m.now(), m.dropTimeout) {
		m.logger.Debug("drop expired", zap.String("target", d.target))
		m.drop = nil
		return
	}
	if !d.matches(resource) {
		return
	}

	m.drop = nil
	m.logger.Debug("drop resolved", zap.String("resource", resource), zap.Int("index", d.index))
	if err := m.source.SetResultPosition(context.Background(), resource, d.index); err != nil {
		m.logger.Warn("failed to position dropped favorite", zap.String("resource", resource), zap.Error(err))
	}
}

// PendingDrop reports the target and index of the outstanding drop, if any.
func (m *Model) PendingDrop() (target string, index int, ok bool) {
	if m.drop == nil || m.drop.expired(m.now(), m.dropTimeout) {
		return "", 0, false
	}
	return m.drop.target, m.drop.index, true
}
