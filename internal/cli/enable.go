package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/favs/internal/config"
)

func setDisabled(cmd *cobra.Command, disabled bool) error {
	w := cmd.OutOrStdout()
	state, err := config.LoadState(resolvedStatePath)
	if err != nil {
		return handleError(w, ErrFileReadError, err, "")
	}
	state.Disabled = disabled
	if err := config.SaveState(resolvedStatePath, state); err != nil {
		return handleError(w, ErrFileWriteError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(w, map[string]any{"enabled": !disabled}, nil)
		return nil
	}
	if disabled {
		fmt.Fprintln(w, "Favorites disabled")
	} else {
		fmt.Fprintln(w, "Favorites enabled")
	}
	return nil
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Show favorites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDisabled(cmd, false)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Hide favorites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDisabled(cmd, true)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}
