package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		tasksFile  string
		configPath string
		busName    string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tasknest",
	Short: "Task manager with a D-Bus service and terminal browser",
	Long: `tasknest is a task manager for Linux desktops.

Tasks live in a tree with tags, fuzzy dates, and subtasks. A daemon
(tasknestd) exposes them on the session bus so external scripts and
applets can query and modify them; the CLI talks to the daemon when one
is running and falls back to the task file otherwise.

Running tasknest without a subcommand launches the interactive browser.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	// Default to the browser when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.tasksFile, "tasks-file", "",
		"Path to tasks file (default: ~/.local/share/tasknest/tasks.jsonl)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/tasknest/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.busName, "bus-name", "",
		"D-Bus name of the daemon (default: org.tasknest.Tasknest)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// busName returns the daemon bus name to use, flag over config.
func busName() string {
	if globalOpts.busName != "" {
		return globalOpts.busName
	}
	return cfg.Bus.Name
}
