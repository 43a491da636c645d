package normalize

import (
	"reflect"
	"testing"

	"github.com/FranksOps/prospector/internal/leads"
)

func TestNormalizeDropsLinklessAndDuplicates(t *testing.T) {
	raw := []leads.Lead{
		{Title: "no link"},
		{Title: "first", Link: "https://acme.com"},
		{Title: "dup", Link: "https://acme.com"},
		{Title: "second", Link: "https://widgets.io"},
	}

	got := Normalize(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(got))
	}
	if got[0].Title != "first" {
		t.Errorf("first-seen duplicate should win, got %q", got[0].Title)
	}
	if got[1].Link != "https://widgets.io" {
		t.Errorf("unexpected second lead %q", got[1].Link)
	}
}

func TestNormalizeExcludesDirectorySites(t *testing.T) {
	raw := []leads.Lead{
		{Link: "https://www.yelp.com/biz/some-dentist"},
		{Link: "https://www.yellowpages.com/dentists"},
		{Link: "https://en.wikipedia.org/wiki/Dentistry"},
		{Link: "https://twitter.com/search?q=dentist"},
		{Link: "https://www.instagram.com/explore/tags/dentist/"},
		{Link: "https://acme-dental.com", Title: "Acme Dental"},
	}

	got := Normalize(raw)
	if len(got) != 1 {
		t.Fatalf("expected only the real site to survive, got %d leads", len(got))
	}
	if got[0].Link != "https://acme-dental.com" {
		t.Errorf("wrong survivor %q", got[0].Link)
	}
}

func TestNormalizeLinkedInTitleParsing(t *testing.T) {
	raw := []leads.Lead{{
		Title: "Jane Doe | Marketing Director at Acme Corp | LinkedIn",
		Link:  "https://www.linkedin.com/in/jane-doe",
	}}

	got := Normalize(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(got))
	}
	lead := got[0]
	if !lead.IsPerson {
		t.Errorf("/in/ link should mark an individual profile")
	}
	if lead.PersonName != "Jane Doe" {
		t.Errorf("PersonName = %q, want Jane Doe", lead.PersonName)
	}
	if lead.BusinessName != "Acme Corp" {
		t.Errorf("BusinessName = %q, want Acme Corp", lead.BusinessName)
	}
	if lead.Domain != "linkedin.com" {
		t.Errorf("Domain = %q, want linkedin.com", lead.Domain)
	}
}

func TestNormalizeInstagramTitleParsing(t *testing.T) {
	raw := []leads.Lead{{
		Title: "Acme Dental (@acmedental) • Instagram",
		Link:  "https://www.instagram.com/acmedental",
	}}

	got := Normalize(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(got))
	}
	if got[0].BusinessName != "Acme Dental" {
		t.Errorf("BusinessName = %q, want Acme Dental", got[0].BusinessName)
	}
}

func TestNormalizeGenericTitleFallsBackToDomain(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Acme Dental | Best Dentist in Town", "Acme Dental"},
		{"Home", "Acme Dental"},
		{"", "Acme Dental"},
	}

	for _, tt := range tests {
		raw := []leads.Lead{{Title: tt.title, Link: "https://www.acme-dental.com"}}
		got := Normalize(raw)
		if len(got) != 1 {
			t.Fatalf("expected 1 lead for title %q", tt.title)
		}
		if got[0].BusinessName != tt.want {
			t.Errorf("title %q: BusinessName = %q, want %q", tt.title, got[0].BusinessName, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := []leads.Lead{
		{Title: "Jane Doe | Owner at Acme | LinkedIn", Link: "https://linkedin.com/in/jane"},
		{Title: "Widgets Inc | Home", Link: "https://widgets.io"},
	}

	once := Normalize(raw)
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalizing an already-normalized list changed it:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDenied(t *testing.T) {
	if !Denied("https://subdomain.yelp.com/biz/x") {
		t.Errorf("subdomain of a deny-listed host should be denied")
	}
	if Denied("https://notyelp.company.com") {
		t.Errorf("unrelated host should pass")
	}
}
