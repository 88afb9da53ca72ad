// Package output provides output formatters for tasks.
package output

import (
	"io"

	"github.com/tasknest/tasknest/internal/model"
)

// Formatter formats tasks for output.
type Formatter interface {
	// Format writes formatted tasks to the writer.
	Format(w io.Writer, tasks []model.Task) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatHTML  FormatType = "html"
)

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatHTML:
		return NewHTMLFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string // Custom template for plain format
	ShowIndex  bool   // Show 1-based index prefix
	ShowDates  bool   // Show humanized due date
	ShowTags   bool   // Show tag list
	TextMaxLen int    // Maximum task text length (0 = unlimited)
	Title      string // Page title for HTML output
}

// DefaultFormatterOptions returns sensible defaults for list output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:  true,
		ShowDates:  true,
		ShowTags:   true,
		TextMaxLen: 80,
		Title:      "Tasks",
	}
}
