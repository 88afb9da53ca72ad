package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest/internal/model"
	"github.com/tasknest/tasknest/internal/output"
)

var showOpts struct {
	format string
	field  string
}

var showCmd = &cobra.Command{
	Use:   "show <id|index|title>",
	Short: "Show a single task",
	Long: `Show a single task.

The argument is a task id, a 1-based index into the full task list, or
a title to match fuzzily.

Examples:
  # Show the third task
  tasknest show 3

  # Print only the text of a task
  tasknest show "buy groceries" --field text`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showOpts.format, "format", "plain",
		"Output format (plain, json, html)")
	showCmd.Flags().StringVar(&showOpts.field, "field", "",
		"Output single field (id, status, title, text, tags, due, start, done)")
}

func runShow(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.close()

	t, err := b.resolve(args[0], []string{"all"})
	if err != nil {
		return err
	}

	if showOpts.field != "" {
		fmt.Println(output.FormatField(t, showOpts.field))
		return nil
	}

	opts := output.DefaultFormatterOptions()
	opts.ShowIndex = false
	opts.TextMaxLen = 0
	opts.Title = t.Title

	formatter := output.NewFormatter(output.FormatType(strings.ToLower(showOpts.format)), opts)
	return formatter.Format(os.Stdout, []model.Task{*t})
}
