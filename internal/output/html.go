package output

import (
	"fmt"
	stdhtml "html"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/tasknest/tasknest/internal/model"
)

// HTMLFormatter renders tasks as a standalone HTML page. Task text is
// treated as markdown.
type HTMLFormatter struct {
	opts FormatterOptions
}

// NewHTMLFormatter creates a new HTML formatter.
func NewHTMLFormatter(opts FormatterOptions) *HTMLFormatter {
	return &HTMLFormatter{opts: opts}
}

// Format writes tasks as an HTML page.
func (f *HTMLFormatter) Format(w io.Writer, tasks []model.Task) error {
	title := f.opts.Title
	if title == "" {
		title = "Tasks"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString(fmt.Sprintf("<meta charset=\"utf-8\">\n<title>%s</title>\n", stdhtml.EscapeString(title)))
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", stdhtml.EscapeString(title)))

	for i := range tasks {
		f.writeTask(&sb, &tasks[i])
	}

	sb.WriteString("</body>\n</html>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func (f *HTMLFormatter) writeTask(sb *strings.Builder, t *model.Task) {
	sb.WriteString("<section class=\"task\">\n")
	sb.WriteString(fmt.Sprintf("<h2>%s %s</h2>\n",
		statusMarker(t.Status), stdhtml.EscapeString(t.Title)))

	var meta []string
	if t.DueDate.IsSet() {
		meta = append(meta, "due "+t.DueDate.String())
	}
	if t.StartDate.IsSet() {
		meta = append(meta, "starts "+t.StartDate.String())
	}
	if t.ClosedDate.IsSet() {
		meta = append(meta, "closed "+t.ClosedDate.String())
	}
	if f.opts.ShowTags && len(t.Tags) > 0 {
		meta = append(meta, "tags: "+strings.Join(t.Tags, ", "))
	}
	if len(meta) > 0 {
		sb.WriteString(fmt.Sprintf("<p class=\"meta\">%s</p>\n",
			stdhtml.EscapeString(strings.Join(meta, " · "))))
	}

	if t.Text != "" {
		sb.Write(renderMarkdown(t.Text))
	}
	sb.WriteString("</section>\n")
}

// renderMarkdown converts markdown task text to HTML.
func renderMarkdown(text string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(text))
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return markdown.Render(doc, renderer)
}
