package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidanlsb/favs/internal/paths"
	"github.com/aidanlsb/favs/internal/resolver"
	"github.com/aidanlsb/favs/internal/stats"
)

var (
	addIndex       int
	addActivity    string
	removeActivity string
)

var addCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a favorite",
	Long: `Add an application, file, URL or contact to the favorites.

Applications are given by desktop id (org.kde.dolphin.desktop),
applications:<id>, preferred://<name> or a path to a .desktop file.
Local files must exist. With --index the favorite is placed at that row;
adding an existing favorite with --index moves it there.`,
	Example: `  favs add org.kde.dolphin.desktop
  favs add ~/Documents/notes.txt --index 0
  favs add preferred://browser --activity :global`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		ctx := commandContext(cmd)
		id := strings.TrimSpace(args[0])
		if id == "" {
			return handleErrorMsg(w, ErrInvalidInput, "id is required", "")
		}

		url, scheme := resolver.Normalize(id)
		if scheme == "" && !paths.Exists(url) {
			return handleErrorMsg(w, ErrFileReadError, fmt.Sprintf("file not found: %s", url), "")
		}

		s, err := openSession(ctx)
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		defer s.Close()

		activity, err := resolveActivityArg(ctx, s.store, addActivity)
		if err != nil {
			return handleError(w, ErrActivityUnknown, err, "Run 'favs activity list' to see activities")
		}
		if activity == stats.AnyActivity {
			return handleErrorMsg(w, ErrInvalidInput, "cannot link to :any", "Use :global to link to every activity")
		}

		index := addIndex
		if index < 0 {
			index = -1
		}
		s.model.AddFavoriteTo(id, activity, index)
		if target, at, ok := s.model.PendingDrop(); ok {
			logger.Debug("drop still pending", zap.String("target", target), zap.Int("index", at))
		}

		linked := s.model.LinkedActivitiesFor(id)
		if len(linked) == 0 {
			return handleErrorMsg(w, ErrStoreError, fmt.Sprintf("failed to add %s", id), "Run with --debug for details")
		}

		if isJSONOutput() {
			outputSuccess(w, map[string]any{
				"id":         url,
				"activity":   activity,
				"activities": linked,
				"favorite":   s.model.IsFavorite(id),
			}, nil)
			return nil
		}
		fmt.Fprintf(w, "Added %s\n", url)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a favorite",
	Long: `Unlink a favorite from the current activity, or from --activity.
Use --activity :any to unlink it everywhere.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		ctx := commandContext(cmd)

		s, err := openSession(ctx)
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		defer s.Close()

		activity, err := resolveActivityArg(ctx, s.store, removeActivity)
		if err != nil {
			return handleError(w, ErrActivityUnknown, err, "Run 'favs activity list' to see activities")
		}
		if len(s.model.LinkedActivitiesFor(args[0])) == 0 {
			return handleErrorMsg(w, ErrNotFavorite, fmt.Sprintf("%s is not a favorite", args[0]), "")
		}
		s.model.RemoveFavoriteFrom(args[0], activity)

		remaining := s.model.LinkedActivitiesFor(args[0])
		if isJSONOutput() {
			outputSuccess(w, map[string]any{
				"id":         args[0],
				"activity":   activity,
				"activities": remaining,
				"favorite":   s.model.IsFavorite(args[0]),
			}, nil)
			return nil
		}
		fmt.Fprintf(w, "Removed %s\n", args[0])
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a favorite to another row",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		ctx := commandContext(cmd)

		from, err := strconv.Atoi(args[0])
		if err != nil {
			return handleErrorMsg(w, ErrInvalidInput, fmt.Sprintf("invalid row %q", args[0]), "")
		}
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return handleErrorMsg(w, ErrInvalidInput, fmt.Sprintf("invalid row %q", args[1]), "")
		}

		s, err := openSession(ctx)
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		defer s.Close()

		if !s.model.MoveRow(from, to) {
			return handleErrorMsg(w, ErrRowOutOfRange,
				fmt.Sprintf("cannot move row %d to %d (%d rows)", from, to, s.model.RowCount()),
				"Run 'favs list' to see row numbers")
		}

		if isJSONOutput() {
			outputSuccess(w, map[string]any{"from": from, "to": to, "favorites": s.results.Rows()}, nil)
			return nil
		}
		fmt.Fprintf(w, "Moved row %d to %d\n", from, to)
		return nil
	},
}

func init() {
	addCmd.Flags().IntVar(&addIndex, "index", -1, "Row to place the favorite at")
	addCmd.Flags().StringVar(&addActivity, "activity", "", "Activity to link to (id, name, :current or :global)")
	removeCmd.Flags().StringVar(&removeActivity, "activity", "", "Activity to unlink from (id, name, :current, :global or :any)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(moveCmd)
}
