package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/FranksOps/prospector/internal/leads"
	"github.com/FranksOps/prospector/internal/source"
)

// stubAdapter is a canned source for orchestrator tests.
type stubAdapter struct {
	name      string
	available bool
	results   []leads.Lead
	err       error
	calls     int
}

var _ source.Adapter = (*stubAdapter)(nil)

func (s *stubAdapter) Name() string    { return s.name }
func (s *stubAdapter) Available() bool { return s.available }
func (s *stubAdapter) Search(ctx context.Context, query string, limit int) ([]leads.Lead, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func lead(source, title, link string) leads.Lead {
	return leads.Lead{Title: title, Link: link, Source: source, Snippet: "No description available"}
}

func TestFindEndToEnd(t *testing.T) {
	// 5 raw candidates: 2 duplicate links, 1 directory site, 1 LinkedIn
	// profile, 1 generic business site.
	direct := &stubAdapter{name: "direct", available: true, results: []leads.Lead{
		lead("direct", "Acme Dental | Home", "https://acme-dental.com"),
		lead("direct", "Acme Dental duplicate", "https://acme-dental.com"),
		lead("direct", "Dentists in Town", "https://www.yelp.com/search?q=dentist"),
		lead("linkedin", "Jane Doe | Dentist at Smile Co | LinkedIn", "https://www.linkedin.com/in/jane-doe"),
		lead("direct", "Bright Smiles | Welcome", "https://brightsmiles.com"),
	}}

	finder := New(Config{Direct: direct})
	results, err := finder.Find(context.Background(), leads.Query{
		Keywords:   "dentist",
		Limit:      3,
		MinQuality: 50,
		Type:       leads.SearchGeneral,
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected exactly 3 results, got %d", len(results))
	}
	if !strings.Contains(results[0].Link, "linkedin.com/in/") {
		t.Errorf("LinkedIn profile should rank first, got %q", results[0].Link)
	}

	seen := make(map[string]bool)
	for _, r := range results {
		if strings.Contains(r.Link, "yelp.com") {
			t.Errorf("directory link survived: %q", r.Link)
		}
		if seen[r.Link] {
			t.Errorf("duplicate link in results: %q", r.Link)
		}
		seen[r.Link] = true
		if r.QualityScore == 0 {
			t.Errorf("lead %q skipped scoring", r.Link)
		}
	}
}

func TestFindZeroAdapters(t *testing.T) {
	finder := New(Config{})
	results, err := finder.Find(context.Background(), leads.Query{Keywords: "dentist"})
	if err != nil {
		t.Fatalf("no adapters should mean empty results, not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result set, got %d", len(results))
	}
}

func TestFindAllSourcesFailed(t *testing.T) {
	boom := errors.New("boom")
	finder := New(Config{
		Direct:   &stubAdapter{name: "direct", available: true, err: boom},
		Fallback: &stubAdapter{name: "fallback_data", available: true, err: boom},
	})

	_, err := finder.Find(context.Background(), leads.Query{Keywords: "dentist"})
	if !errors.Is(err, ErrAllSourcesFailed) {
		t.Errorf("expected ErrAllSourcesFailed, got %v", err)
	}
}

func TestFindFailedAdapterDoesNotAbort(t *testing.T) {
	finder := New(Config{
		Browser: &stubAdapter{name: "google_profile", available: true, err: errors.New("blocked")},
		Direct: &stubAdapter{name: "direct", available: true, results: []leads.Lead{
			lead("direct", "Acme Dental", "https://acme-dental.com"),
		}},
	})

	results, err := finder.Find(context.Background(), leads.Query{Keywords: "dentist", Limit: 1})
	if err != nil {
		t.Fatalf("one failing adapter must not fail the search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestFindBlockedAdapterBacksOff(t *testing.T) {
	blocked := &stubAdapter{
		name:      "direct",
		available: true,
		err:       fmt.Errorf("direct search blocked by CAPTCHA: %w", source.ErrBlocked),
	}
	fallback := &stubAdapter{name: "fallback_data", available: true, results: []leads.Lead{
		lead("fallback_data", "Acme Dental", "https://acme-dental.com"),
	}}
	finder := New(Config{Direct: blocked, Fallback: fallback})

	for i := 0; i < 2; i++ {
		if _, err := finder.Find(context.Background(), leads.Query{Keywords: "dentist", Limit: 1}); err != nil {
			t.Fatalf("Find %d failed: %v", i, err)
		}
	}
	if blocked.calls != 1 {
		t.Errorf("blocked adapter retried during cooldown: %d calls", blocked.calls)
	}
}

func TestFindPlainFailureDoesNotCooldown(t *testing.T) {
	flaky := &stubAdapter{name: "direct", available: true, err: errors.New("timeout")}
	fallback := &stubAdapter{name: "fallback_data", available: true, results: []leads.Lead{
		lead("fallback_data", "Acme Dental", "https://acme-dental.com"),
	}}
	finder := New(Config{Direct: flaky, Fallback: fallback})

	for i := 0; i < 2; i++ {
		if _, err := finder.Find(context.Background(), leads.Query{Keywords: "dentist", Limit: 1}); err != nil {
			t.Fatalf("Find %d failed: %v", i, err)
		}
	}
	if flaky.calls != 2 {
		t.Errorf("ordinary failures must not trigger the block cooldown: %d calls", flaky.calls)
	}
}

func TestFindExampleFillersRankLast(t *testing.T) {
	direct := &stubAdapter{name: "direct", available: true, results: []leads.Lead{
		lead("direct", "Bright Smiles", "https://brightsmiles.com"),
	}}
	filler := lead("fallback_data", "Dentist Professional Services 1", "https://example.com/dentist-1")
	filler.Snippet = "Professional dentist services. Contact us for more information."
	filler.IsExample = true
	fallback := &stubAdapter{name: "fallback_data", available: true, results: []leads.Lead{filler}}

	finder := New(Config{Direct: direct, Fallback: fallback})
	results, err := finder.Find(context.Background(), leads.Query{
		Keywords: "dentist",
		Type:     leads.SearchContact,
		Limit:    2,
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].IsExample || results[0].Link != "https://brightsmiles.com" {
		t.Errorf("genuine lead must rank first, got %q (example=%v)", results[0].Link, results[0].IsExample)
	}
	if !results[1].IsExample {
		t.Errorf("example filler should rank last, got %q", results[1].Link)
	}
}

func TestFindEarlyStopAtTwiceLimit(t *testing.T) {
	many := make([]leads.Lead, 0, 4)
	for _, link := range []string{"https://a.com", "https://b.com", "https://c.com", "https://d.com"} {
		many = append(many, lead("google_profile", "Lead", link))
	}
	browser := &stubAdapter{name: "google_profile", available: true, results: many}
	direct := &stubAdapter{name: "direct", available: true}

	finder := New(Config{Browser: browser, Direct: direct})
	_, err := finder.Find(context.Background(), leads.Query{Keywords: "dentist", Limit: 2})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if direct.calls != 0 {
		t.Errorf("direct adapter should be skipped once 2x limit collected")
	}
}

func TestFindBackfillsBelowThreshold(t *testing.T) {
	direct := &stubAdapter{name: "direct", available: true, results: []leads.Lead{
		lead("direct", "Plain site", "https://plain-a.com"),
		lead("direct", "Another plain site", "https://plain-b.com"),
	}}

	finder := New(Config{Direct: direct})
	results, err := finder.Find(context.Background(), leads.Query{
		Keywords:   "dentist",
		Limit:      2,
		MinQuality: 90,
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("below-threshold pool should backfill to limit, got %d", len(results))
	}
}

func TestFindCancelledContextReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	direct := &stubAdapter{name: "direct", available: true, results: []leads.Lead{
		lead("direct", "never reached", "https://acme.com"),
	}}
	finder := New(Config{Direct: direct})

	results, err := finder.Find(ctx, leads.Query{Keywords: "dentist"})
	if err != nil {
		t.Fatalf("cancellation should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty partial set, got %d", len(results))
	}
	if direct.calls != 0 {
		t.Errorf("cancelled context should skip remaining adapters")
	}
}

func TestFindSocialUsesPlatformAdapters(t *testing.T) {
	platform := &stubAdapter{name: "linkedin", available: true, results: []leads.Lead{
		lead("linkedin", "Jane Doe | Dentist at Smile Co | LinkedIn", "https://linkedin.com/in/jane"),
	}}
	finder := New(Config{Platforms: []source.Adapter{platform}})

	results, err := finder.Find(context.Background(), leads.Query{
		Keywords: "dentist",
		Type:     leads.SearchSocial,
		Limit:    1,
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if platform.calls != 1 {
		t.Errorf("platform adapter not consulted for social search")
	}
	if len(results) != 1 || !results[0].IsPerson {
		t.Errorf("expected one person lead, got %+v", results)
	}
}

func TestFindRejectsBadQuery(t *testing.T) {
	finder := New(Config{})
	if _, err := finder.Find(context.Background(), leads.Query{}); err == nil {
		t.Errorf("empty keywords must be rejected")
	}
	if _, err := finder.Find(context.Background(), leads.Query{Keywords: "x", Limit: -1}); err == nil {
		t.Errorf("negative limit must be rejected")
	}
}

func TestBuildQuery(t *testing.T) {
	base := leads.Query{Keywords: "dentist"}
	if err := base.Normalize(); err != nil {
		t.Fatal(err)
	}
	q := BuildQuery(base)

	for _, want := range []string{`"dentist"`, "-site:yellowpages.com", "-site:yelp.com", "@gmail.com"} {
		if !strings.Contains(q, want) {
			t.Errorf("composite query missing %q: %s", want, q)
		}
	}
	if !strings.Contains(q, "site:linkedin.com") {
		t.Errorf("unscoped general search should bias toward social platforms: %s", q)
	}
}

func TestBuildQueryPlatformShorthand(t *testing.T) {
	q := leads.Query{Keywords: "dentist", Platform: "linkedin", Type: leads.SearchSocial}
	if err := q.Normalize(); err != nil {
		t.Fatal(err)
	}
	got := BuildQuery(q)
	if !strings.Contains(got, "site:linkedin.com") {
		t.Errorf("shorthand platform should gain .com: %s", got)
	}
	if !strings.Contains(got, `inurl:"linkedin.com/in/"`) {
		t.Errorf("linkedin social search should hint at profile paths: %s", got)
	}
}

func TestBuildQueryPlatformList(t *testing.T) {
	q := leads.Query{Keywords: "dentist", Platform: "linkedin/twitter"}
	if err := q.Normalize(); err != nil {
		t.Fatal(err)
	}
	got := BuildQuery(q)
	if !strings.Contains(got, "(site:linkedin.com OR site:twitter.com)") {
		t.Errorf("slash list should become an OR group: %s", got)
	}
}

func TestBuildQueryBusinessExcludesSocial(t *testing.T) {
	q := leads.Query{Keywords: "dentist", Type: leads.SearchBusiness}
	if err := q.Normalize(); err != nil {
		t.Fatal(err)
	}
	got := BuildQuery(q)
	if !strings.Contains(got, "-site:linkedin.com") {
		t.Errorf("business search should exclude social platforms: %s", got)
	}
	if !strings.Contains(got, `"official website"`) {
		t.Errorf("business search should add business terms: %s", got)
	}
}

func TestBuildQueryDirectoryPlatformSkipsExclusions(t *testing.T) {
	q := leads.Query{Keywords: "dentist", Platform: "yelp.com"}
	if err := q.Normalize(); err != nil {
		t.Fatal(err)
	}
	got := BuildQuery(q)
	if strings.Contains(got, "-site:yelp.com") {
		t.Errorf("explicitly requested directory must not be excluded: %s", got)
	}
}
