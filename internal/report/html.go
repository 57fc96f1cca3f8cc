// Package report provides HTML report generation.
package report

import (
	"html/template"
	"io"
)

// HTMLGenerator renders a Report as a small standalone HTML page: one
// table of bucket summaries and one of phase timings.
type HTMLGenerator struct {
	template *template.Template
}

// NewHTMLGenerator creates an HTMLGenerator with its template parsed
// once.
func NewHTMLGenerator() *HTMLGenerator {
	tmpl := template.Must(template.New("report").Parse(htmlTemplate))
	return &HTMLGenerator{template: tmpl}
}

// Generate executes the HTML template against report.
func (g *HTMLGenerator) Generate(report *Report, w io.Writer) error {
	return g.template.Execute(w, report)
}

// Extension returns the file extension.
func (g *HTMLGenerator) Extension() string {
	return "html"
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>cohesort report {{.RunID}}</title>
<style>
body { font-family: -apple-system, sans-serif; margin: 2rem; color: #1a1a1a; }
h1 { font-size: 1.25rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.meta { color: #555; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>cohesort run {{.RunID}}</h1>
<p class="meta">
  input: {{.InputPath}} &middot;
  algorithm: {{.Algorithm}} &middot;
  generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}
</p>

<h2>Buckets</h2>
<table>
<tr><th>distribution</th><th>count</th><th>sub-batches</th><th>tour before</th><th>tour after</th></tr>
{{range .Buckets}}<tr>
  <td>{{.Distribution}}</td>
  <td>{{.Count}}</td>
  <td>{{.SubBatches}}</td>
  <td>{{.TourLengthBefore}}</td>
  <td>{{.TourLengthAfter}}</td>
</tr>
{{end}}
</table>

<p>total targets: {{.TotalTargets}} &middot; unhashed: {{.Unhashed}}</p>

<h2>Timings</h2>
<table>
<tr><th>phase</th><th>duration</th></tr>
<tr><td>sketch</td><td>{{.Timings.Sketch}}</td></tr>
<tr><td>distance</td><td>{{.Timings.Distance}}</td></tr>
<tr><td>optimize</td><td>{{.Timings.Optimize}}</td></tr>
</table>
{{if .Adjacency}}
<h2>Adjacent pairs</h2>
<table>
<tr><th>left</th><th>right</th><th>tlsh distance</th><th>level</th><th>simhash %</th></tr>
{{range .Adjacency}}<tr>
  <td>{{.Left}}</td>
  <td>{{.Right}}</td>
  <td>{{.TLSHDistance}}</td>
  <td>{{.FuzzyLevel}}</td>
  <td>{{printf "%.1f" .SimHashSimilarity}}</td>
</tr>
{{end}}
</table>
{{end}}
</body>
</html>
`
