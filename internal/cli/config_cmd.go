package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/favs/internal/config"
	"github.com/aidanlsb/favs/internal/logging"
)

var (
	configSetMaxFavorites int
	configSetPageSize     int
	configSetDropTimeout  string
	configSetStore        string
	configSetClient       string
	configSetLogLevel     string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the favs configuration",
}

func configData() map[string]any {
	_, statErr := os.Stat(resolvedConfigPath)
	return map[string]any{
		"config_path":      resolvedConfigPath,
		"state_path":       resolvedStatePath,
		"exists":           statErr == nil,
		"store":            resolvedStorePath,
		"client":           cfg.GetClient(),
		"max_favorites":    cfg.GetMaxFavorites(),
		"page_size":        cfg.GetPageSize(),
		"drop_timeout":     cfg.GetDropTimeout().String(),
		"log_level":        cfg.LogLevel,
		"application_dirs": cfg.ExpandedApplicationDirs(),
	}
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		data := configData()
		if isJSONOutput() {
			outputSuccess(w, data, nil)
			return nil
		}
		if exists, _ := data["exists"].(bool); !exists {
			fmt.Fprintf(w, "Config file does not exist: %s (using defaults)\n", resolvedConfigPath)
		} else {
			fmt.Fprintf(w, "config: %s\n", resolvedConfigPath)
		}
		fmt.Fprintf(w, "state:  %s\n", resolvedStatePath)
		fmt.Fprintf(w, "store:  %s\n", resolvedStorePath)
		fmt.Fprintf(w, "client: %s\n", cfg.GetClient())
		fmt.Fprintf(w, "max_favorites: %d\n", cfg.GetMaxFavorites())
		fmt.Fprintf(w, "page_size: %d\n", cfg.GetPageSize())
		fmt.Fprintf(w, "drop_timeout: %s\n", cfg.GetDropTimeout())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		_, statErr := os.Stat(resolvedConfigPath)
		created := os.IsNotExist(statErr)
		if err := config.CreateDefault(resolvedConfigPath); err != nil {
			return handleError(w, ErrFileWriteError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(w, map[string]any{"config_path": resolvedConfigPath, "created": created}, nil)
			return nil
		}
		if created {
			fmt.Fprintf(w, "Created %s\n", resolvedConfigPath)
		} else {
			fmt.Fprintf(w, "Config already exists: %s\n", resolvedConfigPath)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	Example: `  favs config set --max-favorites 20
  favs config set --drop-timeout 1m`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		flags := cmd.Flags()
		changed := 0

		if flags.Changed("max-favorites") {
			if configSetMaxFavorites <= 0 {
				return handleErrorMsg(w, ErrInvalidInput, "max-favorites must be positive", "")
			}
			cfg.MaxFavorites = configSetMaxFavorites
			changed++
		}
		if flags.Changed("page-size") {
			if configSetPageSize <= 0 {
				return handleErrorMsg(w, ErrInvalidInput, "page-size must be positive", "")
			}
			cfg.PageSize = configSetPageSize
			changed++
		}
		if flags.Changed("drop-timeout") {
			d, err := time.ParseDuration(configSetDropTimeout)
			if err != nil || d <= 0 {
				return handleErrorMsg(w, ErrInvalidInput, fmt.Sprintf("invalid drop-timeout %q", configSetDropTimeout), "Use a duration such as 30s")
			}
			cfg.DropTimeout = config.Duration{Duration: d}
			changed++
		}
		if flags.Changed("store-path") {
			cfg.Store = configSetStore
			changed++
		}
		if flags.Changed("client") {
			cfg.Client = configSetClient
			changed++
		}
		if flags.Changed("log-level") {
			if _, err := logging.ParseLevel(configSetLogLevel); err != nil {
				return handleError(w, ErrInvalidInput, err, "")
			}
			cfg.LogLevel = configSetLogLevel
			changed++
		}
		if changed == 0 {
			return handleErrorMsg(w, ErrInvalidInput, "no settings given", "Run 'favs config set --help' to see settings")
		}

		if err := config.SaveTo(resolvedConfigPath, cfg); err != nil {
			return handleError(w, ErrFileWriteError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(w, configData(), nil)
			return nil
		}
		fmt.Fprintf(w, "Updated %s\n", resolvedConfigPath)
		return nil
	},
}

func init() {
	configSetCmd.Flags().IntVar(&configSetMaxFavorites, "max-favorites", 0, "Number of favorites to list")
	configSetCmd.Flags().IntVar(&configSetPageSize, "page-size", 0, "Rows loaded per fetch")
	configSetCmd.Flags().StringVar(&configSetDropTimeout, "drop-timeout", "", "How long a positioned add waits for its row")
	configSetCmd.Flags().StringVar(&configSetStore, "store-path", "", "Path of the activity store")
	configSetCmd.Flags().StringVar(&configSetClient, "client", "", "Ordering client id")
	configSetCmd.Flags().StringVar(&configSetLogLevel, "log-level", "", "debug, info, warn or error")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
