package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <row> [action] [argument]",
	Short: "Launch a favorite or run one of its actions",
	Long: `Launch the favorite at row, or run one of its actions. 'favs list --json'
shows each favorite's action ids. The argument is passed to actions that
take a file or URL.`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		row, err := strconv.Atoi(args[0])
		if err != nil {
			return handleErrorMsg(w, ErrInvalidInput, fmt.Sprintf("invalid row %q", args[0]), "")
		}
		var action, argument string
		if len(args) > 1 {
			action = args[1]
		}
		if len(args) > 2 {
			argument = args[2]
		}

		s, err := openSession(commandContext(cmd))
		if err != nil {
			return handleError(w, ErrStoreError, err, "")
		}
		defer s.Close()

		if row < 0 || row >= s.model.RowCount() {
			return handleErrorMsg(w, ErrRowOutOfRange,
				fmt.Sprintf("row %d out of range (%d rows)", row, s.model.RowCount()),
				"Run 'favs list' to see row numbers")
		}
		var arg any
		if argument != "" {
			arg = argument
		}
		if !s.model.Trigger(row, action, arg) {
			return handleErrorMsg(w, ErrActionFailed, fmt.Sprintf("failed to run row %d", row), "Run with --debug for details")
		}

		if isJSONOutput() {
			outputSuccess(w, map[string]any{"row": row, "action": action}, nil)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
