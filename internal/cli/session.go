package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidanlsb/favs/internal/config"
	"github.com/aidanlsb/favs/internal/entry"
	"github.com/aidanlsb/favs/internal/favorites"
	"github.com/aidanlsb/favs/internal/index"
	"github.com/aidanlsb/favs/internal/resolver"
	"github.com/aidanlsb/favs/internal/stats"
)

// launcher runs desktop actions and opens files. Tests replace it.
var launcher entry.Launcher = entry.SystemLauncher{}

// session is one command's view of the store: the store itself, the
// ordered result model over it and the favorites model on top.
type session struct {
	store   *stats.Store
	results *stats.ResultModel
	model   *favorites.Model
	index   *index.Index
	flag    *config.MigrationFlag
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func openSession(ctx context.Context) (*session, error) {
	store, err := stats.Open(resolvedStorePath, stats.WithStoreLogger(logger.Named("store")))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	results, err := stats.NewResultModel(ctx, store, cfg.GetClient(),
		favorites.QueryFor(cfg.GetMaxFavorites()),
		stats.WithPageSize(cfg.GetPageSize()),
		stats.WithLogger(logger.Named("results")))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	state, err := config.LoadState(resolvedStatePath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	idx := index.New(resolver.New(resolver.Config{
		ApplicationDirs: entry.ApplicationDirs(cfg.ExpandedApplicationDirs()),
		Preferred:       cfg.Preferred,
		Contacts:        entry.StaticContacts(cfg.Contacts),
		Launcher:        launcher,
	}))

	flag := config.NewMigrationFlag(resolvedStatePath)
	model := favorites.New(results, idx,
		favorites.WithLogger(logger.Named("favorites")),
		favorites.WithMaxFavorites(cfg.GetMaxFavorites()),
		favorites.WithDropTimeout(cfg.GetDropTimeout()),
		favorites.WithMigrationFlag(flag))
	model.SetEnabled(!state.Disabled)

	logger.Debug("session opened", zap.Int("rows", model.RowCount()))
	return &session{store: store, results: results, model: model, index: idx, flag: flag}, nil
}

func (s *session) Close() {
	s.model.Close()
	if err := s.store.Close(); err != nil {
		logger.Warn("failed to close store", zap.Error(err))
	}
}

// favoriteRow is the printed form of one row.
type favoriteRow struct {
	Row         int      `json:"row" yaml:"row"`
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	URL         string   `json:"url" yaml:"url"`
	Icon        string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Actions     []string `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// rows reads every row through the model's roles. Reading an invalid row
// unlinks it, which removes it from the model before the next read.
func (s *session) rows() []favoriteRow {
	m := s.model
	out := make([]favoriteRow, 0, m.RowCount())
	for row := 0; row < m.RowCount(); {
		before := m.RowCount()
		e, ok := m.Entry(row)
		if !ok {
			row++
			continue
		}
		if !e.IsValid() {
			if m.RowCount() == before {
				row++
			}
			continue
		}
		r := favoriteRow{
			Row:         row,
			ID:          stringRole(m, row, favorites.FavoriteIDRole),
			Name:        stringRole(m, row, favorites.DisplayRole),
			URL:         stringRole(m, row, favorites.URLRole),
			Icon:        stringRole(m, row, favorites.DecorationRole),
			Description: stringRole(m, row, favorites.DescriptionRole),
		}
		for _, a := range e.Actions() {
			r.Actions = append(r.Actions, a.ID)
		}
		out = append(out, r)
		row++
	}
	return out
}

func stringRole(m *favorites.Model, row int, role favorites.Role) string {
	v, _ := m.Data(row, role).(string)
	return v
}
