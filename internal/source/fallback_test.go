package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FranksOps/prospector/internal/fetch"
	"github.com/FranksOps/prospector/internal/fingerprint"
	"github.com/FranksOps/prospector/internal/leads"
)

func newTestFetcher(t *testing.T) *fetch.Fetcher {
	t.Helper()
	f, err := fetch.New(fetch.Config{Fingerprint: fingerprint.ProfileGo})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestCuratedFallbackSynthesizesExamplesWhenNothingFetchable(t *testing.T) {
	c := &CuratedFallback{}

	results, err := c.Search(context.Background(), `"dentist" near me`, 3)
	if err != nil {
		t.Fatalf("fallback must not fail: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 filler leads, got %d", len(results))
	}
	for _, lead := range results {
		if !lead.IsExample {
			t.Errorf("synthetic lead %q not marked as example", lead.Link)
		}
		if lead.Source != "fallback_data" {
			t.Errorf("Source = %q", lead.Source)
		}
		if !strings.Contains(lead.Link, "example.com") {
			t.Errorf("synthetic link should be on example.com: %q", lead.Link)
		}
	}
}

func TestCuratedFallbackFetchesRealSites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Springfield Dental Practice</title></head>
		<body><p>Quality dental care since 1990. Call (555) 123-4567 or email desk@springfielddental.com</p></body></html>`)
	}))
	defer srv.Close()

	c := &CuratedFallback{Fetcher: newTestFetcher(t)}
	results := c.fetchSites(context.Background(), []string{srv.URL}, "dental", 5)

	if len(results) != 1 {
		t.Fatalf("expected 1 fetched lead, got %d", len(results))
	}
	lead := results[0]
	if lead.IsExample {
		t.Errorf("fetched lead must not be marked example")
	}
	if lead.Title != "Springfield Dental Practice" {
		t.Errorf("Title = %q", lead.Title)
	}
	if lead.Contact == nil {
		t.Fatalf("contact info should be extracted from the page")
	}
	if len(lead.Contact.Emails) != 1 || lead.Contact.Emails[0].Address != "desk@springfielddental.com" {
		t.Errorf("Emails = %v", lead.Contact.Emails)
	}
	if lead.Contact.Emails[0].Confidence != leads.ConfidenceExtracted {
		t.Errorf("page-extracted email should carry extracted confidence")
	}
	if len(lead.Contact.Phones) != 1 || lead.Contact.Phones[0] != "5551234567" {
		t.Errorf("Phones = %v", lead.Contact.Phones)
	}
}

func TestCuratedFallbackPrefersRealDataOverExamples(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Real Site</title></head><body><p>Real content about business services here.</p></body></html>`)
	}))
	defer srv.Close()

	c := &CuratedFallback{Fetcher: newTestFetcher(t)}
	real := c.fetchSites(context.Background(), []string{srv.URL}, "business", 2)
	if len(real) != 1 {
		t.Fatalf("expected the live site to produce a lead, got %d", len(real))
	}
}

func TestPrimaryKeyword(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{`(site:linkedin.com) "dentist" "New York" -site:yelp.com`, "dentist"},
		{`web developer portfolio`, "web developer"},
		{``, ""},
	}
	for _, tt := range tests {
		if got := primaryKeyword(tt.query); got != tt.want {
			t.Errorf("primaryKeyword(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestSitesFor(t *testing.T) {
	if sites := sitesFor("dentist"); len(sites) == 0 || !strings.Contains(sites[0], "ada.org") {
		t.Errorf("dentist keyword should select the dental category, got %v", sites)
	}
	if sites := sitesFor("florist"); len(sites) == 0 || !strings.Contains(sites[0], "entrepreneur.com") {
		t.Errorf("unknown keyword should fall back to generic business sites, got %v", sites)
	}
}
