// Package report renders run reports as JSON, Markdown and HTML.
package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"paxclean/domain/quality"
	"paxclean/domain/run"
	"paxclean/internal/errors"
	"paxclean/internal/imputation"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Report formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

// Formats lists every supported report format.
var Formats = []string{FormatJSON, FormatMarkdown, FormatHTML}

//go:embed templates/*.tmpl
var templateFS embed.FS

var markdownTmpl = template.Must(template.New("report.md.tmpl").Funcs(template.FuncMap{
	"pct":      func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
	"num":      func(f float64) string { return fmt.Sprintf("%.4g", f) },
	"pval":     func(f float64) string { return fmt.Sprintf("%.3g", f) },
	"describe": imputation.Describe,
}).ParseFS(templateFS, "templates/report.md.tmpl"))

// outlierRow joins detected bounds with the remediation of the same field.
type outlierRow struct {
	Field        string
	Policy       quality.Policy
	Lower        float64
	Upper        float64
	PreCount     int
	PostCount    int
	ClippedCount int
	Remediated   bool
}

type view struct {
	Report   *run.Report
	Outliers []outlierRow
}

func newView(r *run.Report) view {
	v := view{Report: r}
	for _, set := range r.OutliersPre {
		row := outlierRow{
			Field:    set.Field,
			Lower:    set.Bounds.Lower,
			Upper:    set.Bounds.Upper,
			PreCount: set.Count(),
		}
		if s, ok := r.Remediated(set.Field); ok {
			row.Policy = s.Policy
			row.PostCount = s.PostCount
			row.ClippedCount = s.ClippedCount
			row.Remediated = true
		}
		v.Outliers = append(v.Outliers, row)
	}
	return v
}

// JSON encodes the report with indentation.
func JSON(r *run.Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode report")
	}
	return data, nil
}

// Markdown renders the report as a Markdown document.
func Markdown(r *run.Report) ([]byte, error) {
	if r == nil || r.Manifest == nil {
		return nil, errors.InvalidInput("report without manifest")
	}
	var buf bytes.Buffer
	if err := markdownTmpl.Execute(&buf, newView(r)); err != nil {
		return nil, errors.Wrap(err, "failed to render markdown report")
	}
	return buf.Bytes(), nil
}

// HTML renders the Markdown report into a complete HTML page.
func HTML(r *run.Report) ([]byte, error) {
	md, err := Markdown(r)
	if err != nil {
		return nil, err
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Passenger data cleaning report " + r.ID().String(),
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(p.Parse(md), renderer), nil
}

// Render produces the report in format.
func Render(r *run.Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return JSON(r)
	case FormatMarkdown, "markdown":
		return Markdown(r)
	case FormatHTML:
		return HTML(r)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown report format %q", format))
	}
}

// ContentType is the MIME type of a report format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatMarkdown, "markdown":
		return "text/markdown; charset=utf-8"
	default:
		return "text/html; charset=utf-8"
	}
}
