package main

import (
	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest/internal/config"
	"github.com/tasknest/tasknest/internal/store"
	"github.com/tasknest/tasknest/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive task browser",
	Long: `Launch the interactive terminal task browser.

The browser works directly on the tasks file and picks up changes made
by a running daemon while it is open.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := openLocalStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	tasksPath := globalOpts.tasksFile
	if tasksPath == "" {
		tasksPath = config.TasksPath()
	}

	// Follow external edits while the browser is open.
	watcher, err := store.NewFileWatcher(s, tasksPath)
	if err == nil {
		if err := watcher.Start(); err == nil {
			defer func() { _ = watcher.Stop() }()
		}
	}

	return tui.Run(cfg, s)
}
