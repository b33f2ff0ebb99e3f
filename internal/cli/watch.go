package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidanlsb/favs/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the favorites whenever the store changes",
	Long: `Print the favorites, then print them again each time another process
changes the activity store. Stops on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return handleError(w, ErrStoreError, err, "")
	}
	defer s.Close()

	changes := make(chan struct{}, 1)
	wt, err := watcher.New(watcher.Config{
		StorePath: resolvedStorePath,
		Logger:    logger.Named("watcher"),
		OnChange: func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		},
	})
	if err != nil {
		return handleError(w, ErrWatchFailed, err, "")
	}

	done := make(chan error, 1)
	go func() { done <- wt.Start(ctx) }()

	show := func() {
		rows := s.rows()
		if isJSONOutput() {
			outputSuccess(w, map[string]any{"favorites": rows}, &Meta{Count: len(rows)})
			return
		}
		printRows(w, s.model.Description(), rows)
		fmt.Fprintln(w)
	}
	show()

	// The model is only touched from this goroutine.
	for {
		select {
		case <-changes:
			if err := s.model.Reload(); err != nil {
				logger.Warn("failed to reload favorites", zap.Error(err))
				continue
			}
			show()
		case err := <-done:
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return handleError(w, ErrWatchFailed, err, "")
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
