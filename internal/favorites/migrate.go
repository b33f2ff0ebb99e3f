package favorites

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aidanlsb/favs/internal/stats"
)

// MigrationFlag is a persisted one-time marker. *config.MigrationFlag
// implements it.
type MigrationFlag interface {
	Done() (bool, error)
	MarkDone() error
}

// ErrNoMigrationFlag is returned by ImportLegacy when the model has no flag.
var ErrNoMigrationFlag = errors.New("no migration flag configured")

// ImportLegacy links a legacy favorites list to the global activity, in
// order, unless it was imported before. It reports whether the import ran.
func (m *Model) ImportLegacy(ids []string) (bool, error) {
	if m.migration == nil {
		return false, ErrNoMigrationFlag
	}
	done, err := m.migration.Done()
	if err != nil {
		return false, fmt.Errorf("failed to read migration state: %w", err)
	}
	if done {
		m.logger.Debug("legacy favorites already imported")
		return false, nil
	}

	for _, id := range ids {
		m.AddFavoriteTo(id, stats.GlobalActivity, -1)
	}
	if err := m.migration.MarkDone(); err != nil {
		return false, fmt.Errorf("failed to record migration: %w", err)
	}
	m.logger.Info("imported legacy favorites", zap.Int("count", len(ids)))
	return true, nil
}
