package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lakshaymaurya-felt/diskord/internal/config"
	"github.com/lakshaymaurya-felt/diskord/internal/logging"
)

var (
	// Global flags
	debug      bool
	configPath string

	// cfg is loaded before any subcommand runs.
	cfg = config.Default()

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "diskord",
	Short: "Find and reclaim disk space",
	Long: `diskord - find and reclaim disk space on Linux.

Browse disk usage interactively, move what you no longer need to a
session trash you can undo from, and clean well-known package and
developer caches. Without a subcommand the analyzer opens on your
home directory.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
	RunE: runAnalyze,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug-level logs")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/diskord/config.json)")

	registerAnalyzeFlags(rootCmd)

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the config and starts file logging. The TUI owns the
// terminal, so logs never go to stdout.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadDefault(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	if err := logging.Init(logging.Config{
		Level:      level,
		Format:     "json",
		OutputPath: cfg.LogFile,
	}); err != nil {
		return err
	}

	logging.L().Debug("starting",
		zap.String("command", cmd.CommandPath()),
		zap.String("version", appVersion))
	return nil
}
