package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/favs/internal/entry"
	"github.com/aidanlsb/favs/internal/favorites"
	"github.com/aidanlsb/favs/internal/stats"
	"github.com/aidanlsb/favs/internal/ui"
)

var (
	listYAML     bool
	listActivity string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List favorites in order",
	Long: `List the favorites linked to the current activity or to the global
activity, in their arranged order.

With --activity, list the favorites another activity would show instead.
Listing unlinks favorites that no longer resolve to anything.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	ctx := commandContext(cmd)

	s, err := openSession(ctx)
	if err != nil {
		return handleError(w, ErrStoreError, err, "")
	}
	defer s.Close()

	if !s.model.Enabled() {
		if isJSONOutput() {
			outputSuccess(w, map[string]any{"enabled": false, "favorites": []favoriteRow{}}, nil)
			return nil
		}
		fmt.Fprintln(w, "Favorites are disabled. Run 'favs enable' to show them.")
		return nil
	}

	var rows []favoriteRow
	if listActivity != "" {
		id, err := resolveActivityArg(ctx, s.store, listActivity)
		if err != nil {
			return handleError(w, ErrActivityUnknown, err, "Run 'favs activity list' to see activities")
		}
		q := favorites.QueryFor(cfg.GetMaxFavorites()).WithActivities(id, stats.GlobalActivity)
		resources, err := s.store.Linked(ctx, cfg.GetClient(), q)
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		for i, r := range resources {
			if e := s.index.Lookup(r); e.IsValid() {
				rows = append(rows, rowFromEntry(i, e))
			}
		}
	} else {
		rows = s.rows()
	}
	logger.Debug("alias index", zap.Int("entries", s.index.Len()), zap.Strings("aliases", s.index.Aliases()))

	switch {
	case isJSONOutput():
		outputSuccess(w, map[string]any{"enabled": true, "favorites": rows}, &Meta{Count: len(rows)})
		return nil
	case listYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(rows)
	}

	printRows(w, s.model.Description(), rows)
	return nil
}

func rowFromEntry(row int, e entry.Entry) favoriteRow {
	r := favoriteRow{
		Row:         row,
		ID:          e.ID(),
		Name:        e.Name(),
		URL:         e.URL(),
		Icon:        e.Icon(),
		Description: e.Description(),
	}
	for _, a := range e.Actions() {
		r.Actions = append(r.Actions, a.ID)
	}
	return r
}

// printRows writes a styled table to a terminal and tab-separated
// "row\tname\tid" lines to anything else.
func printRows(w io.Writer, title string, rows []favoriteRow) {
	if !isTerminal(w) {
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.Row, r.Name, r.ID)
		}
		return
	}

	fmt.Fprintf(w, "%s\n\n", ui.Heading(title, len(rows)))
	if len(rows) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("  (none)"))
		return
	}
	tbl := ui.NewResultsTable(ui.NewDisplayContext(w), ui.FavoritesLayout)
	for _, r := range rows {
		tbl.AddRow(strconv.Itoa(r.Row), r.Name, r.ID)
	}
	fmt.Fprintln(w, tbl.Render())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	listCmd.Flags().BoolVar(&listYAML, "yaml", false, "Output as YAML")
	listCmd.Flags().StringVar(&listActivity, "activity", "", "List the favorites of this activity (id or name)")
	rootCmd.AddCommand(listCmd)
}
