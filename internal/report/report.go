// Package report summarizes a lead search run: where the leads came
// from, how they scored, and how many can actually be contacted.
package report

import (
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"text/template"

	"github.com/FranksOps/prospector/internal/leads"
)

// Summary contains aggregated metrics about one search run.
type Summary struct {
	Keywords     string
	TotalLeads   int
	ExampleLeads int
	People       int
	Businesses   int
	WithEmail    int
	WithPhone    int
	BySource     map[string]int
	AverageScore int
	HighestScore int
	LowestScore  int
	QualityBands map[string]int // "80-100", "50-79", "0-49"
}

// GenerateSummary aggregates a result set into run metrics.
func GenerateSummary(keywords string, results []leads.Lead) Summary {
	s := Summary{
		Keywords:     keywords,
		BySource:     make(map[string]int),
		QualityBands: make(map[string]int),
	}
	if len(results) == 0 {
		return s
	}

	s.LowestScore = results[0].QualityScore
	total := 0
	for _, l := range results {
		s.TotalLeads++
		if l.IsExample {
			s.ExampleLeads++
		}
		if l.IsPerson {
			s.People++
		} else {
			s.Businesses++
		}
		if l.Contact != nil {
			if len(l.Contact.Emails) > 0 {
				s.WithEmail++
			}
			if len(l.Contact.Phones) > 0 {
				s.WithPhone++
			}
		}
		s.BySource[l.Source]++

		total += l.QualityScore
		if l.QualityScore > s.HighestScore {
			s.HighestScore = l.QualityScore
		}
		if l.QualityScore < s.LowestScore {
			s.LowestScore = l.QualityScore
		}
		switch {
		case l.QualityScore >= 80:
			s.QualityBands["80-100"]++
		case l.QualityScore >= 50:
			s.QualityBands["50-79"]++
		default:
			s.QualityBands["0-49"]++
		}
	}
	s.AverageScore = total / s.TotalLeads
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Lead Search Summary
-------------------
Keywords:      {{.Keywords}}
Total Leads:   {{.TotalLeads}}{{if .ExampleLeads}} ({{.ExampleLeads}} example placeholders){{end}}
People:        {{.People}}
Businesses:    {{.Businesses}}
With Email:    {{.WithEmail}}
With Phone:    {{.WithPhone}}

Scores:        avg {{.AverageScore}}, high {{.HighestScore}}, low {{.LowestScore}}
{{- range $band, $count := .QualityBands}}
  {{$band}}: {{$count}}
{{- end}}

By Source:
{{- range $src, $count := .BySource}}
  {{$src}}: {{$count}}
{{- else}}
  None
{{- end}}
`
	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("report: parse text template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render text: %w", err)
	}
	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Lead Search Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  table { border-collapse: collapse; margin-top: 12px; }
  td, th { border: 1px solid #ccc; padding: 6px 12px; text-align: left; }
  h1 { font-size: 1.4em; }
</style>
</head>
<body>
<h1>Lead Search Report</h1>
<p>Keywords: <strong>{{.Keywords}}</strong></p>
<table>
  <tr><th>Total Leads</th><td>{{.TotalLeads}}</td></tr>
  <tr><th>Example Placeholders</th><td>{{.ExampleLeads}}</td></tr>
  <tr><th>People</th><td>{{.People}}</td></tr>
  <tr><th>Businesses</th><td>{{.Businesses}}</td></tr>
  <tr><th>With Email</th><td>{{.WithEmail}}</td></tr>
  <tr><th>With Phone</th><td>{{.WithPhone}}</td></tr>
  <tr><th>Average Score</th><td>{{.AverageScore}}</td></tr>
</table>
<h2>By Source</h2>
<table>
{{- range $src, $count := .BySource}}
  <tr><th>{{$src}}</th><td>{{$count}}</td></tr>
{{- end}}
</table>
</body>
</html>
`
	t, err := htmltemplate.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("report: parse html template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render html: %w", err)
	}
	return nil
}
