// Package core provides filtering, sorting, and lookup logic over tasks.
package core

import (
	"fmt"
	"strings"

	"github.com/tasknest/tasknest/internal/model"
)

// Index maps task ids to tasks within one filter pass. Filters that need
// to inspect related tasks (workable) resolve subtasks through it.
type Index map[string]*model.Task

// FilterFunc reports whether a task passes a filter.
type FilterFunc func(t *model.Task, idx Index) bool

// Named filters, applied as a chain with AND semantics. A leading "!"
// negates any filter, and "@tag" filters on tag membership.
const (
	FilterAll       = "all"
	FilterActive    = "active"
	FilterClosed    = "closed"
	FilterDone      = "done"
	FilterDismissed = "dismissed"
	FilterWorkable  = "workable"
	FilterNoTag     = "notag"
	FilterLate      = "late"
	FilterSoon      = "soon"
	FilterSomeday   = "someday"
)

var namedFilters = map[string]FilterFunc{
	FilterAll: func(t *model.Task, idx Index) bool {
		return true
	},
	FilterActive: func(t *model.Task, idx Index) bool {
		return t.Status == model.StatusActive
	},
	FilterClosed: func(t *model.Task, idx Index) bool {
		return t.IsClosed()
	},
	FilterDone: func(t *model.Task, idx Index) bool {
		return t.Status == model.StatusDone
	},
	FilterDismissed: func(t *model.Task, idx Index) bool {
		return t.Status == model.StatusDismiss
	},
	FilterWorkable: isWorkable,
	FilterNoTag: func(t *model.Task, idx Index) bool {
		return len(t.Tags) == 0
	},
	FilterLate: func(t *model.Task, idx Index) bool {
		return t.DueDate.Overdue()
	},
	FilterSoon: func(t *model.Task, idx Index) bool {
		return t.DueDate.String() == model.DateSoon
	},
	FilterSomeday: func(t *model.Task, idx Index) bool {
		return t.DueDate.String() == model.DateSomeday
	},
}

// isWorkable reports whether a task can be worked on right now: it is
// active, its start date is not in the future, and it has no open
// subtasks.
func isWorkable(t *model.Task, idx Index) bool {
	if t.Status != model.StatusActive {
		return false
	}
	if t.StartDate.IsSet() && model.Today().Before(t.StartDate) {
		return false
	}
	for _, sub := range t.Subtasks {
		if child, ok := idx[sub]; ok && child.Status == model.StatusActive {
			return false
		}
	}
	return true
}

// LookupFilter resolves a filter name to a FilterFunc. Names are
// case-insensitive; "!" negates; "@tag" matches tag membership.
func LookupFilter(name string) (FilterFunc, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty filter name")
	}

	if rest, found := strings.CutPrefix(name, "!"); found {
		inner, err := LookupFilter(rest)
		if err != nil {
			return nil, err
		}
		return func(t *model.Task, idx Index) bool {
			return !inner(t, idx)
		}, nil
	}

	if strings.HasPrefix(name, "@") {
		tag := name
		return func(t *model.Task, idx Index) bool {
			return t.HasTag(tag)
		}, nil
	}

	f, ok := namedFilters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown filter: %s", name)
	}
	return f, nil
}

// Apply applies a chain of named filters to the tasks, returning those
// that pass every filter.
func Apply(tasks []model.Task, names ...string) ([]model.Task, error) {
	filters := make([]FilterFunc, 0, len(names))
	for _, name := range names {
		f, err := LookupFilter(name)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	idx := make(Index, len(tasks))
	for i := range tasks {
		idx[tasks[i].ID] = &tasks[i]
	}

	result := make([]model.Task, 0, len(tasks))
	for i := range tasks {
		pass := true
		for _, f := range filters {
			if !f(&tasks[i], idx) {
				pass = false
				break
			}
		}
		if pass {
			result = append(result, tasks[i])
		}
	}
	return result, nil
}

// FilterNames returns the known named filters, for help output.
func FilterNames() []string {
	return []string{
		FilterAll, FilterActive, FilterClosed, FilterDone, FilterDismissed,
		FilterWorkable, FilterNoTag, FilterLate, FilterSoon, FilterSomeday,
	}
}
