package source

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// fakeRenderer serves canned HTML per URL and records lifecycle calls.
type fakeRenderer struct {
	pages    map[string]string
	rendered []string
	closed   bool
}

func (f *fakeRenderer) Render(ctx context.Context, url string) (*RenderedPage, error) {
	f.rendered = append(f.rendered, url)
	if html, ok := f.pages[url]; ok {
		return &RenderedPage{HTML: html}, nil
	}
	// Longest matching prefix wins so /search beats the homepage.
	best := ""
	for prefix := range f.pages {
		if strings.HasPrefix(url, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return &RenderedPage{HTML: f.pages[best]}, nil
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

func TestBrowserSearch(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]string{
		"https://www.google.com": `<html><body><a aria-label="Google Account: Jane"></a></body></html>`,
		"https://www.google.com/search": `<html><body>
			<div class="g"><a href="https://www.linkedin.com/in/jane"><h3>Jane Doe | LinkedIn</h3></a></div>
		</body></html>`,
	}}

	b := &BrowserSearch{
		Sessions: func(ctx context.Context) (Renderer, error) { return renderer, nil },
	}

	results, err := b.Search(context.Background(), `"dentist" "New York" site:foo`, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Source != "google_profile" {
		t.Errorf("Source = %q", results[0].Source)
	}
	if !renderer.closed {
		t.Errorf("session must be closed after the search")
	}
	if len(renderer.rendered) != 2 {
		t.Errorf("expected homepage + results render, got %v", renderer.rendered)
	}
}

func TestBrowserSearchUnavailableWithoutSessions(t *testing.T) {
	b := &BrowserSearch{}
	if b.Available() {
		t.Errorf("adapter without a session factory must report unavailable")
	}
}

func TestBrowserSearchClosesSessionOnRenderFailure(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]string{}}
	b := &BrowserSearch{
		Sessions: func(ctx context.Context) (Renderer, error) { return renderer, nil },
	}

	if _, err := b.Search(context.Background(), "dentist", 5); err == nil {
		t.Fatalf("expected render failure")
	}
	if !renderer.closed {
		t.Errorf("session must be closed on the error path too")
	}
}

func TestSimplifyQuery(t *testing.T) {
	got := SimplifyQuery(`(site:linkedin.com OR site:facebook.com) "dentist" "New York" ("@gmail.com" OR "email me") -site:yelp.com`)

	if !strings.Contains(got, `"dentist"`) {
		t.Errorf("first quoted term missing: %q", got)
	}
	if !strings.Contains(got, "site:linkedin.com OR site:facebook.com") {
		t.Errorf("narrow site filter missing: %q", got)
	}
	if strings.Contains(got, "-site:yelp.com") {
		t.Errorf("exclusions should be stripped: %q", got)
	}
	if strings.Count(got, `"`) > 6 {
		t.Errorf("too many quoted terms kept: %q", got)
	}
}

func TestSimplifyQueryBareFallback(t *testing.T) {
	got := SimplifyQuery("dentist site:linkedin.com -directory")
	if !strings.HasPrefix(got, "dentist ") {
		t.Errorf("bare keywords should survive operator stripping: %q", got)
	}
}
