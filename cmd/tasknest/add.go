package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addOpts struct {
	due    string
	start  string
	text   string
	tags   []string
	parent string
}

var addCmd = &cobra.Command{
	Use:   "add <title>...",
	Short: "Add a new task",
	Long: `Add a new task.

@tags in the title are picked up automatically. Dates accept
YYYY-MM-DD or the fuzzy keywords now, soon, and someday.

Examples:
  # Quick add with an inline tag
  tasknest add water the plants @home

  # Task with dates and text
  tasknest add file taxes --due 2027-04-01 --start soon --text "forms are in the drawer"

  # Add as a subtask of an existing task
  tasknest add buy paint --parent 01HVX...`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addOpts.due, "due", "", "Due date")
	addCmd.Flags().StringVar(&addOpts.start, "start", "", "Start date")
	addCmd.Flags().StringVar(&addOpts.text, "text", "", "Task text")
	addCmd.Flags().StringSliceVarP(&addOpts.tags, "tag", "t", nil, "Tag (repeatable)")
	addCmd.Flags().StringVar(&addOpts.parent, "parent", "", "Parent task id")
}

func runAdd(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.close()

	title := strings.Join(args, " ")

	t, err := b.newTask(title, addOpts.due, addOpts.start, addOpts.text, addOpts.tags, nil)
	if err != nil {
		return err
	}

	if addOpts.parent != "" {
		parent, err := b.resolve(addOpts.parent, []string{"all"})
		if err != nil {
			return err
		}
		fields := subtaskFields(t.ID)
		if _, err := b.modify(parent.ID, fields); err != nil {
			return err
		}
	}

	fmt.Println(t.ID)
	return nil
}
