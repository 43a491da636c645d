package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/FranksOps/prospector/internal/leads"
)

func testResults() []leads.Lead {
	return []leads.Lead{
		{
			ID: "p-1", Source: "linkedin", IsPerson: true, QualityScore: 90,
			Contact: &leads.ContactInfo{Emails: []leads.Email{{Address: "jane@acme.com", Confidence: leads.ConfidenceExtracted}}},
		},
		{
			ID: "b-1", Source: "direct", QualityScore: 60,
			Contact: &leads.ContactInfo{Phones: []string{"5551234567"}},
		},
		{ID: "b-2", Source: "direct", QualityScore: 40},
		{ID: "x-1", Source: "fallback_data", QualityScore: 50, IsExample: true},
	}
}

func TestGenerateSummary(t *testing.T) {
	s := GenerateSummary("dentist Chicago", testResults())

	if s.Keywords != "dentist Chicago" {
		t.Errorf("Keywords = %q", s.Keywords)
	}
	if s.TotalLeads != 4 || s.ExampleLeads != 1 {
		t.Errorf("TotalLeads = %d, ExampleLeads = %d", s.TotalLeads, s.ExampleLeads)
	}
	if s.People != 1 || s.Businesses != 3 {
		t.Errorf("People = %d, Businesses = %d", s.People, s.Businesses)
	}
	if s.WithEmail != 1 || s.WithPhone != 1 {
		t.Errorf("WithEmail = %d, WithPhone = %d", s.WithEmail, s.WithPhone)
	}
	if s.BySource["direct"] != 2 || s.BySource["linkedin"] != 1 {
		t.Errorf("BySource = %v", s.BySource)
	}
	if s.AverageScore != 60 {
		t.Errorf("AverageScore = %d, want 60", s.AverageScore)
	}
	if s.HighestScore != 90 || s.LowestScore != 40 {
		t.Errorf("score range = %d..%d, want 40..90", s.LowestScore, s.HighestScore)
	}
	if s.QualityBands["80-100"] != 1 || s.QualityBands["50-79"] != 2 || s.QualityBands["0-49"] != 1 {
		t.Errorf("QualityBands = %v", s.QualityBands)
	}
}

func TestGenerateSummaryEmpty(t *testing.T) {
	s := GenerateSummary("dentist", nil)
	if s.TotalLeads != 0 || s.AverageScore != 0 || s.HighestScore != 0 {
		t.Errorf("empty result set should leave zeros: %+v", s)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, GenerateSummary("dentist", testResults())); err != nil {
		t.Fatal(err)
	}

	var decoded Summary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.TotalLeads != 4 {
		t.Errorf("decoded TotalLeads = %d", decoded.TotalLeads)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, GenerateSummary("dentist", testResults())); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Keywords:      dentist", "Total Leads:   4", "(1 example placeholders)", "direct: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTextEmptySources(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, GenerateSummary("dentist", nil)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "None") {
		t.Errorf("empty source map should render None:\n%s", buf.String())
	}
}

func TestWriteHTML(t *testing.T) {
	results := testResults()
	results[0].Source = "<script>alert(1)</script>"

	var buf bytes.Buffer
	if err := WriteHTML(&buf, GenerateSummary("dentist", results)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "<h1>Lead Search Report</h1>") {
		t.Errorf("html report missing heading")
	}
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Errorf("source names must be escaped in html output")
	}
}
