package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"text/template"
)

const reportTemplate = `{{.Title}}
Period: {{.DateRange}}
Total investment: {{.Total}}
{{range .Sections}}
=== {{.Title}} ===
{{- if .Columns}}
{{join .Columns}}
{{- range .Rows}}
{{join .}}
{{- end}}
{{- end}}
{{- range .Lines}}
- {{.}}
{{- end}}
{{end}}`

var tmpl = template.Must(template.New("report").
	Funcs(template.FuncMap{"join": func(cells []string) string { return strings.Join(cells, "\t") }}).
	Parse(reportTemplate))

// Reporter outputs reports to the console in a formatted text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

// Handle renders report with table columns aligned.
func (r *Reporter) Handle(report *Report) error {
	tw := tabwriter.NewWriter(r.writer, 0, 4, 2, ' ', 0)
	if err := tmpl.Execute(tw, report); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return tw.Flush()
}
