package main

import (
	"fmt"

	"github.com/spf13/cobra"

	godbus "github.com/godbus/dbus/v5"

	"github.com/tasknest/tasknest/internal/dbus"
	"github.com/tasknest/tasknest/internal/model"
)

var setOpts struct {
	title string
	due   string
	start string
	text  string
	tags  []string
}

var setCmd = &cobra.Command{
	Use:   "set <id|index|title>",
	Short: "Modify task fields",
	Long: `Modify fields of an existing task.

Only the given flags are changed; everything else is left alone.

Examples:
  tasknest set 3 --due soon
  tasknest set "file taxes" --title "file taxes 2026" --tag paperwork`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

var doneCmd = &cobra.Command{
	Use:   "done <id|index|title>",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(args[0], model.StatusDone)
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss <id|index|title>",
	Short: "Dismiss a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(args[0], model.StatusDismiss)
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen <id|index|title>",
	Short: "Reactivate a closed task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(args[0], model.StatusActive)
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(reopenCmd)

	setCmd.Flags().StringVar(&setOpts.title, "title", "", "New title")
	setCmd.Flags().StringVar(&setOpts.due, "due", "", "New due date")
	setCmd.Flags().StringVar(&setOpts.start, "start", "", "New start date")
	setCmd.Flags().StringVar(&setOpts.text, "text", "", "New task text")
	setCmd.Flags().StringSliceVarP(&setOpts.tags, "tag", "t", nil, "Tag to add (repeatable)")
}

func runSet(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.close()

	t, err := b.resolve(args[0], []string{"all"})
	if err != nil {
		return err
	}

	fields := map[string]godbus.Variant{}
	if cmd.Flags().Changed("title") {
		fields[dbus.KeyTitle] = godbus.MakeVariant(setOpts.title)
	}
	if cmd.Flags().Changed("due") {
		fields[dbus.KeyDueDate] = godbus.MakeVariant(setOpts.due)
	}
	if cmd.Flags().Changed("start") {
		fields[dbus.KeyStartDate] = godbus.MakeVariant(setOpts.start)
	}
	if cmd.Flags().Changed("text") {
		fields[dbus.KeyText] = godbus.MakeVariant(setOpts.text)
	}
	if len(setOpts.tags) > 0 {
		fields[dbus.KeyTags] = godbus.MakeVariant(setOpts.tags)
	}
	if len(fields) == 0 {
		return fmt.Errorf("nothing to change")
	}

	updated, err := b.modify(t.ID, fields)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", updated.ID, updated.Title)
	return nil
}

// setStatus changes the status of a single task.
func setStatus(arg, status string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.close()

	t, err := b.resolve(arg, []string{"all"})
	if err != nil {
		return err
	}

	updated, err := b.modify(t.ID, map[string]godbus.Variant{
		dbus.KeyStatus: godbus.MakeVariant(status),
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s %s (%s)\n", updated.ID, updated.Title, updated.Status)
	return nil
}

// subtaskFields builds a modify payload attaching a subtask.
func subtaskFields(childID string) map[string]godbus.Variant {
	return map[string]godbus.Variant{
		dbus.KeySubtask: godbus.MakeVariant([]string{childID}),
	}
}
