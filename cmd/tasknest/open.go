package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest/internal/dbus"
)

var openOpts struct {
	text string
}

var openCmd = &cobra.Command{
	Use:   "open [id|index|title]",
	Short: "Open a task in the editor",
	Long: `Ask the daemon to open the task editor.

With an argument, opens the editor on an existing task. Without one,
creates a new task and opens it. Requires a running daemon; attached
frontends receive the TaskOpened signal.

Examples:
  tasknest open 3
  tasknest open --text "details to start from"`,
	Args: cobra.ArbitraryArgs,
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)

	openCmd.Flags().StringVar(&openOpts.text, "text", "",
		"Initial text when creating a new task")
}

func runOpen(cmd *cobra.Command, args []string) error {
	client, err := daemonClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if len(args) == 0 {
		return client.OpenNewTask("", openOpts.text)
	}

	arg := strings.Join(args, " ")

	// Resolve indexes and titles to an id before asking the daemon.
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.close()

	t, err := b.resolve(arg, []string{"all"})
	if err != nil {
		return err
	}
	return client.OpenTaskEditor(t.ID)
}

// daemonClient connects to a running daemon, failing when none is
// reachable.
func daemonClient() (*dbus.Client, error) {
	client, err := dbus.NewClientWithName(busName())
	if err != nil {
		return nil, err
	}
	ok, err := client.Available()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no daemon owns %s; start tasknestd first", busName())
	}
	return client, nil
}
