package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidanlsb/favs/internal/resolver"
)

var isCmd = &cobra.Command{
	Use:   "is <id>",
	Short: "Report whether id is a favorite",
	Long: `Report whether id names one of the listed favorites. Any alias works:
a desktop id, its applications: URL, or the path of its .desktop file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		s, err := openSession(commandContext(cmd))
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		defer s.Close()

		fav := s.model.IsFavorite(args[0])
		url, _ := resolver.Normalize(args[0])
		aliases := s.index.AliasesOf(url)
		logger.Debug("favorite lookup", zap.String("id", args[0]), zap.Bool("favorite", fav), zap.Strings("aliases", aliases))
		if isJSONOutput() {
			data := map[string]any{"id": args[0], "favorite": fav}
			if fav {
				data["aliases"] = aliases
			}
			outputSuccess(w, data, nil)
			return nil
		}
		fmt.Fprintln(w, fav)
		return nil
	},
}

var activitiesCmd = &cobra.Command{
	Use:   "activities <id>",
	Short: "List the activities a favorite is linked to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		s, err := openSession(commandContext(cmd))
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		defer s.Close()

		ids := s.model.LinkedActivitiesFor(args[0])
		infos := make([]activityInfo, 0, len(ids))
		for _, id := range ids {
			infos = append(infos, activityInfo{ID: id, Name: s.model.ActivityNameForID(id)})
		}

		if isJSONOutput() {
			outputSuccess(w, map[string]any{"id": args[0], "activities": infos}, &Meta{Count: len(infos)})
			return nil
		}
		if len(infos) == 0 {
			fmt.Fprintf(w, "%s is not linked to any activity\n", args[0])
			return nil
		}
		for _, a := range infos {
			fmt.Fprintf(w, "%s  %s\n", a.ID, a.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(isCmd)
	rootCmd.AddCommand(activitiesCmd)
}
