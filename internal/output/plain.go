package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/tasknest/tasknest/internal/model"
)

// PlainFormatter formats tasks as plain text, one per line plus an
// indented text excerpt.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes tasks as plain text.
func (f *PlainFormatter) Format(w io.Writer, tasks []model.Task) error {
	for i := range tasks {
		if err := f.formatTask(w, i+1, &tasks[i]); err != nil {
			return err
		}
	}
	return nil
}

// formatTask formats a single task.
func (f *PlainFormatter) formatTask(w io.Writer, index int, t *model.Task) error {
	// Use custom template if available
	if f.template != nil {
		data := templateData{
			Index: index,
			Task:  t,
			Due:   t.DueDate.Humanize(),
		}
		return f.template.Execute(w, data)
	}

	// Default format
	var sb strings.Builder

	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("[%d] ", index))
	}

	sb.WriteString(statusMarker(t.Status))
	sb.WriteString(" ")
	sb.WriteString(t.Title)

	if f.opts.ShowTags && len(t.Tags) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(t.Tags, ", "))
		sb.WriteString("]")
	}

	if f.opts.ShowDates && t.DueDate.IsSet() {
		sb.WriteString(fmt.Sprintf(" (due %s)", t.DueDate.Humanize()))
	}

	sb.WriteString("\n")

	if excerpt := t.Excerpt(f.opts.TextMaxLen); excerpt != "" {
		sb.WriteString("    " + excerpt + "\n")
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}

// statusMarker returns the one-character marker for a status.
func statusMarker(status string) string {
	switch status {
	case model.StatusDone:
		return "[x]"
	case model.StatusDismiss:
		return "[-]"
	default:
		return "[ ]"
	}
}

// templateData provides data for custom templates.
type templateData struct {
	Index int
	Task  *model.Task
	Due   string
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			if maxLen <= 0 || len(s) <= maxLen {
				return s
			}
			if maxLen <= 3 {
				return s[:maxLen]
			}
			return s[:maxLen-3] + "..."
		},
		"join": strings.Join,
		"marker": func(status string) string {
			return statusMarker(status)
		},
	}
}

// FormatField outputs a specific field from a task.
func FormatField(t *model.Task, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return t.ID
	case "status":
		return t.Status
	case "title":
		return t.Title
	case "text", "body":
		return t.Text
	case "tags":
		return strings.Join(t.Tags, ", ")
	case "due", "duedate":
		return t.DueDate.String()
	case "start", "startdate":
		return t.StartDate.String()
	case "done", "donedate":
		return t.ClosedDate.String()
	case "all", "full":
		return fmt.Sprintf("%s\n%s", t.Title, t.Text)
	default:
		return t.Title
	}
}
