package output

import (
	"encoding/json"
	"io"

	"github.com/tasknest/tasknest/internal/model"
)

// JSONFormatter formats tasks as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes tasks as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, tasks []model.Task) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tasks)
}

// FormatSingle writes a single task as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, t *model.Task) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(t)
}
