package core

import (
	"sort"
	"strings"

	"github.com/tasknest/tasknest/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByTitle  SortField = "title"
	SortByStatus SortField = "status"
	SortByDue    SortField = "duedate"
	SortByAdded  SortField = "added"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns the default sort: soonest due date first.
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByDue,
		Order: SortAsc,
	}
}

// statusRank orders Active before Done before Dismiss.
func statusRank(status string) int {
	switch status {
	case model.StatusActive:
		return 0
	case model.StatusDone:
		return 1
	case model.StatusDismiss:
		return 2
	default:
		return 3
	}
}

// Sort sorts tasks in place based on the provided options.
func Sort(tasks []model.Task, opts SortOptions) {
	if len(tasks) == 0 {
		return
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		var less bool

		switch opts.Field {
		case SortByTitle:
			less = strings.ToLower(tasks[i].Title) < strings.ToLower(tasks[j].Title)
		case SortByStatus:
			less = statusRank(tasks[i].Status) < statusRank(tasks[j].Status)
		case SortByAdded:
			less = tasks[i].AddedAt < tasks[j].AddedAt
		default: // duedate; unset dates sink regardless of order
			less = tasks[i].DueDate.Before(tasks[j].DueDate)
		}

		if opts.Order == SortDesc {
			return !less
		}
		return less
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title", "name":
		return SortByTitle
	case "status":
		return SortByStatus
	case "added", "created":
		return SortByAdded
	default:
		return SortByDue
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending", "d":
		return SortDesc
	default:
		return SortAsc
	}
}
