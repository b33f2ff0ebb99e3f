// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/aidanlsb/favs/internal/config"
	"github.com/aidanlsb/favs/internal/logging"
)

var (
	// Global flags
	configPath    string
	statePathFlag string
	storePathFlag string
	debugLogging  bool

	// Resolved values
	resolvedConfigPath string
	resolvedStatePath  string
	resolvedStorePath  string
	cfg                *config.Config
	logger             = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "favs",
	Short: "favs - activity-scoped favorites",
	Long: `favs keeps an ordered list of favorite applications, files and contacts,
linked to activities in a local SQLite store.

Favorites linked to the current activity or to the global activity are listed
in the order last arranged with 'favs move' or 'favs add --index'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "version", "completion", "help":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}
		return loadEnvironment(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&statePathFlag, "state", "", "Path to state file (overrides state_file in config)")
	rootCmd.PersistentFlags().StringVar(&storePathFlag, "store", "", "Path to the activity store (overrides store in config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Log at debug level")

	// Accept config-style spellings such as --max_favorites.
	rootCmd.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

// loadEnvironment loads config, resolves the state and store paths and
// builds the logger.
func loadEnvironment(cmd *cobra.Command) error {
	var err error
	cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	resolvedStatePath = config.ResolveStatePath(statePathFlag, resolvedConfigPath, cfg)

	resolvedStorePath = cfg.GetStorePath()
	if strings.TrimSpace(storePathFlag) != "" {
		resolvedStorePath = storePathFlag
	}

	level := cfg.LogLevel
	if debugLogging {
		level = "debug"
	}
	logger, err = logging.New(level, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger.Debug("environment loaded",
		zap.String("config", resolvedConfigPath),
		zap.String("state", resolvedStatePath),
		zap.String("store", resolvedStorePath))
	return nil
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}

	return loadedCfg, resolvedPath, nil
}
