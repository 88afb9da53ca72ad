package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest/internal/core"
	"github.com/tasknest/tasknest/internal/output"
)

var listOpts struct {
	filters  []string
	search   string
	sortBy   string
	order    string
	format   string
	template string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks matching a filter chain.

Filters combine with AND semantics. Known filters: ` + strings.Join(core.FilterNames(), ", ") + `.
A leading ! negates a filter, and @tag matches tag membership.

Examples:
  # Active tasks (default filter from config)
  tasknest list

  # Workable tasks tagged @home
  tasknest list -f workable -f @home

  # Everything except dismissed, as JSON
  tasknest list -f all -f '!dismissed' --format json

  # Overdue tasks sorted by title
  tasknest list -f late --sort title`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringSliceVarP(&listOpts.filters, "filter", "f", nil,
		"Filter chain (repeatable; default from config)")
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Search in title, text, and tags")
	listCmd.Flags().StringVar(&listOpts.sortBy, "sort", "",
		"Sort by field (title, status, duedate, added; default from config)")
	listCmd.Flags().StringVar(&listOpts.order, "order", "",
		"Sort order (asc, desc)")
	listCmd.Flags().StringVar(&listOpts.format, "format", "plain",
		"Output format (plain, json, html)")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Custom Go template for plain output")
}

func runList(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.close()

	filters := listOpts.filters
	if len(filters) == 0 {
		filters = cfg.Filter.Default
	}

	tasks, err := b.tasksFiltered(filters)
	if err != nil {
		return err
	}

	if listOpts.search != "" {
		tasks = core.Search(tasks, listOpts.search)
	}

	sortBy := listOpts.sortBy
	if sortBy == "" {
		sortBy = cfg.Sort.Field
	}
	order := listOpts.order
	if order == "" {
		order = cfg.Sort.Order
	}
	core.Sort(tasks, core.SortOptions{
		Field: core.ParseSortField(sortBy),
		Order: core.ParseSortOrder(order),
	})

	if len(tasks) == 0 {
		logger.Debug("no tasks to output")
		return nil
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = listOpts.template
	opts.Title = fmt.Sprintf("Tasks (%s)", strings.Join(filters, ", "))

	formatter := output.NewFormatter(output.FormatType(strings.ToLower(listOpts.format)), opts)
	return formatter.Format(os.Stdout, tasks)
}
