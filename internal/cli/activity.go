package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/favs/internal/stats"
)

var activityUseAfterCreate bool

type activityInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Current bool   `json:"current,omitempty"`
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Manage activities",
	Long: `Activities scope favorites. Favorites linked to the current activity or
to the global activity are listed; 'favs add --activity' links elsewhere.`,
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List activities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		ctx := commandContext(cmd)
		store, err := stats.Open(resolvedStorePath, stats.WithStoreLogger(logger.Named("store")))
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		defer store.Close()

		acts, err := store.Activities(ctx)
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		current, err := store.CurrentActivity(ctx)
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}

		infos := make([]activityInfo, 0, len(acts))
		for _, a := range acts {
			infos = append(infos, activityInfo{ID: a.ID, Name: a.Name, Current: a.ID == current})
		}
		if isJSONOutput() {
			outputSuccess(w, map[string]any{"activities": infos}, &Meta{Count: len(infos)})
			return nil
		}
		for _, a := range infos {
			marker := " "
			if a.Current {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %s  %s\n", marker, a.ID, a.Name)
		}
		return nil
	},
}

var activityCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		ctx := commandContext(cmd)
		store, err := stats.Open(resolvedStorePath, stats.WithStoreLogger(logger.Named("store")))
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		defer store.Close()

		id, err := store.CreateActivity(ctx, args[0])
		if err != nil {
			return handleError(w, ErrInvalidInput, err, "")
		}
		if activityUseAfterCreate {
			if err := store.SetCurrentActivity(ctx, id); err != nil {
				return handleError(w, ErrStoreError, err, "")
			}
		}

		info := activityInfo{ID: id, Name: strings.TrimSpace(args[0]), Current: activityUseAfterCreate}
		if isJSONOutput() {
			outputSuccess(w, info, nil)
			return nil
		}
		fmt.Fprintf(w, "Created activity %s (%s)\n", info.Name, info.ID)
		return nil
	},
}

var activityUseCmd = &cobra.Command{
	Use:   "use <id-or-name>",
	Short: "Switch the current activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		ctx := commandContext(cmd)
		store, err := stats.Open(resolvedStorePath, stats.WithStoreLogger(logger.Named("store")))
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		defer store.Close()

		id, err := resolveActivityArg(ctx, store, args[0])
		if err != nil {
			return handleError(w, ErrActivityUnknown, err, "Run 'favs activity list' to see activities")
		}
		if id == stats.GlobalActivity || id == stats.AnyActivity {
			return handleErrorMsg(w, ErrInvalidInput, fmt.Sprintf("%s cannot be the current activity", id), "")
		}
		if id == stats.CurrentActivity {
			if id, err = store.CurrentActivity(ctx); err != nil {
				return handleError(w, ErrStoreError, err, "")
			}
		}
		if err := store.SetCurrentActivity(ctx, id); err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		name, _ := store.ActivityName(ctx, id)

		if isJSONOutput() {
			outputSuccess(w, activityInfo{ID: id, Name: name, Current: true}, nil)
			return nil
		}
		fmt.Fprintf(w, "Current activity: %s (%s)\n", name, id)
		return nil
	},
}

var activityCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		ctx := commandContext(cmd)
		store, err := stats.Open(resolvedStorePath, stats.WithStoreLogger(logger.Named("store")))
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		defer store.Close()

		id, err := store.CurrentActivity(ctx)
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		name, err := store.ActivityName(ctx, id)
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(w, activityInfo{ID: id, Name: name, Current: true}, nil)
			return nil
		}
		fmt.Fprintf(w, "%s (%s)\n", name, id)
		return nil
	},
}

// resolveActivityArg maps a command-line activity to an id or term the
// store accepts. Names match case-insensitively and must be unique.
func resolveActivityArg(ctx context.Context, store *stats.Store, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	switch arg {
	case "":
		return stats.CurrentActivity, nil
	case stats.CurrentActivity, stats.GlobalActivity, stats.AnyActivity:
		return arg, nil
	}

	acts, err := store.Activities(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, a := range acts {
		if a.ID == arg {
			return a.ID, nil
		}
		if strings.EqualFold(a.Name, arg) {
			matches = append(matches, a.ID)
		}
	}
	switch len(matches) {
	case 0:
		if name := closestActivityName(acts, arg); name != "" {
			return "", fmt.Errorf("activity %q (did you mean %q?): %w", arg, name, stats.ErrUnknownActivity)
		}
		return "", fmt.Errorf("activity %q: %w", arg, stats.ErrUnknownActivity)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("activity name %q is ambiguous (%s)", arg, strings.Join(matches, ", "))
}

// closestActivityName returns the activity name nearest to arg, or "" when
// none is within maxSuggestDistance edits.
func closestActivityName(acts []stats.Activity, arg string) string {
	best, bestDistance := "", maxSuggestDistance+1
	for _, a := range acts {
		d := edlib.LevenshteinDistance(strings.ToLower(arg), strings.ToLower(a.Name))
		if d < bestDistance {
			best, bestDistance = a.Name, d
		}
	}
	return best
}

const maxSuggestDistance = 2

func init() {
	activityCreateCmd.Flags().BoolVar(&activityUseAfterCreate, "use", false, "Make the new activity current")

	activityCmd.AddCommand(activityListCmd)
	activityCmd.AddCommand(activityCreateCmd)
	activityCmd.AddCommand(activityUseCmd)
	activityCmd.AddCommand(activityCurrentCmd)
	rootCmd.AddCommand(activityCmd)
}
