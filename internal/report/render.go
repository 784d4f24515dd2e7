package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"github.com/yukikurage/learnflow-api/internal/analytics"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat accepts json, csv or html. An empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

// FileName builds the download name of a rendered report.
func FileName(t Type, p Period, f Format, now time.Time) string {
	return fmt.Sprintf("learnflow-%s-report-%s-%s.%s", t, p, now.Format("2006-01-02"), f)
}

// Render writes r to w in format f.
func Render(w io.Writer, r *Report, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatHTML:
		return WriteHTML(w, r)
	default:
		return WriteJSON(w, r)
	}
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteCSV flattens the summary and the goal-category and resource-type
// counts into titled blocks separated by blank lines.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	s := r.Summary
	rows := [][]string{
		{"Summary"},
		{"Metric", "Value"},
		{"Total Goals", strconv.Itoa(s.TotalGoals)},
		{"Completed Goals", strconv.Itoa(s.CompletedGoals)},
		{"Completion Rate", strconv.Itoa(s.CompletionRate) + "%"},
		{"Total Resources", strconv.Itoa(s.TotalResources)},
		{"Study Time (hours)", strconv.FormatFloat(s.StudyHours, 'f', -1, 64)},
		{"Learning Streak", strconv.Itoa(s.Streak)},
		{},
	}
	if len(r.Goals.ByCategory) > 0 {
		rows = append(rows, []string{"Goals by Category"}, []string{"Category", "Count"})
		rows = appendCounts(rows, r.Goals.ByCategory)
		rows = append(rows, []string{})
	}
	if len(r.Resources.ByType) > 0 {
		rows = append(rows, []string{"Resources by Type"}, []string{"Type", "Count"})
		rows = appendCounts(rows, r.Resources.ByType)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func appendCounts(rows [][]string, counts map[string]int) [][]string {
	for _, c := range analytics.Sorted(counts) {
		rows = append(rows, []string{c.Key, strconv.Itoa(c.Count)})
	}
	return rows
}

var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"markdown": renderMarkdown,
	"sorted":   analytics.Sorted,
	"date":     func(t time.Time) string { return t.Format("January 2, 2006") },
	"includes": func(r *Report, section string) bool { return r.Type.Includes(Type(section)) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>LearnFlow Learning Report</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; color: #1f2937; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #d1d5db; padding: 0.35rem 0.75rem; text-align: left; }
.note { border-left: 3px solid #6366f1; padding-left: 1rem; margin-bottom: 1rem; }
</style>
</head>
<body>
<h1>LearnFlow Learning Report</h1>
<p>{{.User.Name}} &lt;{{.User.Email}}&gt; &middot; {{.Period.Type}}: {{date .Period.StartDate}} to {{date .Period.EndDate}}</p>

<h2>Summary</h2>
<table>
<tr><th>Total Goals</th><td>{{.Summary.TotalGoals}}</td></tr>
<tr><th>Completed Goals</th><td>{{.Summary.CompletedGoals}}</td></tr>
<tr><th>Completion Rate</th><td>{{.Summary.CompletionRate}}%</td></tr>
<tr><th>Total Resources</th><td>{{.Summary.TotalResources}}</td></tr>
<tr><th>Study Time (hours)</th><td>{{.Summary.StudyHours}}</td></tr>
<tr><th>Learning Streak</th><td>{{.Summary.Streak}} days</td></tr>
</table>
{{if includes . "goals"}}
<h2>Goals</h2>
<p>Average progress: {{.Goals.AverageProgress}}%</p>
<table>
<tr><th>Category</th><th>Count</th></tr>
{{range sorted .Goals.ByCategory}}<tr><td>{{.Key}}</td><td>{{.Count}}</td></tr>
{{end}}</table>
{{if .Goals.RecentlyCompleted}}<h3>Recently completed</h3>
<ul>{{range .Goals.RecentlyCompleted}}<li>{{.Title}}</li>{{end}}</ul>{{end}}
{{end}}{{if includes . "resources"}}
<h2>Resources</h2>
<table>
<tr><th>Type</th><th>Count</th></tr>
{{range sorted .Resources.ByType}}<tr><td>{{.Key}}</td><td>{{.Count}}</td></tr>
{{end}}</table>
{{range .Notes}}<div class="note"><h3>{{.Title}}</h3>{{markdown .Markdown}}</div>
{{end}}{{end}}{{if includes . "progress"}}
<h2>Activity</h2>
<p>{{.Activities.Total}} activities{{with .Activities.MostActiveDay}}, most active on {{.}}{{end}}.</p>
<table>
<tr><th>Date</th><th>Minutes</th><th>Sessions</th></tr>
{{range .Activities.DailyStudy}}<tr><td>{{.Date}}</td><td>{{.Minutes}}</td><td>{{.Sessions}}</td></tr>
{{end}}</table>
{{end}}{{if includes . "analytics"}}
<h2>Insights</h2>
<ul>{{range .Analytics.Insights}}<li>{{.}}</li>{{end}}</ul>
<h2>Recommendations</h2>
<ul>{{range .Analytics.Recommendations}}<li>{{.}}</li>{{end}}</ul>
{{end}}
<footer>Generated {{date .Period.GeneratedAt}}</footer>
</body>
</html>
`))

// WriteHTML renders the report as a standalone HTML document.
func WriteHTML(w io.Writer, r *Report) error {
	if err := htmlTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
