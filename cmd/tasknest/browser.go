package main

import (
	"github.com/spf13/cobra"
)

var browserCmd = &cobra.Command{
	Use:   "browser <show|hide>",
	Short: "Show or hide the daemon's task browser",
	Long: `Show or hide the task browser of a running daemon.

Attached frontends receive the BrowserStateChanged signal.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"show", "hide"},
	RunE:      runBrowser,
}

func init() {
	rootCmd.AddCommand(browserCmd)
}

func runBrowser(cmd *cobra.Command, args []string) error {
	client, err := daemonClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if args[0] == "hide" {
		return client.HideTaskBrowser()
	}
	return client.ShowTaskBrowser()
}
