package source

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/FranksOps/prospector/internal/leads"
)

// loginIndicators are tried in order against the rendered homepage; any
// match means the session carries an authenticated profile.
var loginIndicators = []string{
	"a[aria-label*='Google Account']",
	"img[alt*='profile']",
	"div[aria-label*='account']",
	"svg[aria-label*='account']",
}

// signInSelector present on the homepage means the profile is NOT logged
// in; its absence is treated as weak evidence of an active session.
const signInSelector = "a[href*='accounts.google.com/ServiceLogin']"

var quotedTerms = regexp.MustCompile(`"([^"]*)"`)
var queryOperators = regexp.MustCompile(`site:\S+|inurl:\S+|-\S+|\bOR\b|\bAND\b`)

// BrowserSearch drives an authenticated browser session against the
// search engine. Rendered, logged-in result pages are both harder to
// block and richer than raw HTTP fetches, so its results carry a higher
// baseline trust.
//
// The session is a scarce, detection-sensitive resource: one session is
// acquired per search, released on every exit path, and at most one
// search is in flight at a time.
type BrowserSearch struct {
	// Sessions opens a fresh rendering session. Nil means no browser
	// profile is configured and the adapter reports unavailable.
	Sessions RendererFactory
	Logger   *slog.Logger

	mu sync.Mutex
}

func (b *BrowserSearch) Name() string { return "google_profile" }

func (b *BrowserSearch) Available() bool { return b.Sessions != nil }

// Search renders the engine homepage to probe login state, then issues a
// simplified query and extracts result blocks via the selector
// strategies.
func (b *BrowserSearch) Search(ctx context.Context, query string, limit int) (_ []leads.Lead, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	logger := b.logger()

	session, err := b.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("source: browser session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil && err == nil {
			logger.Warn("browser session close failed", "err", cerr)
		}
	}()

	home, err := session.Render(ctx, "https://www.google.com")
	if err != nil {
		return nil, fmt.Errorf("source: render homepage: %w", err)
	}
	if doc, derr := goquery.NewDocumentFromReader(strings.NewReader(home.HTML)); derr == nil {
		if !detectLogin(doc) {
			// Stale cookies still help against CAPTCHAs, so continue.
			logger.Warn("browser profile does not appear to be logged in")
		}
	}

	simplified := SimplifyQuery(query)
	logger.Debug("browser search", "query", simplified)

	page, err := session.Render(ctx, serpURL(simplified))
	if err != nil {
		return nil, fmt.Errorf("source: render results: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("source: parse results: %w", err)
	}

	return parseSERP(doc, b.Name(), limit), nil
}

// detectLogin checks the redundant login indicators in order; markup
// changes usually break one indicator at a time.
func detectLogin(doc *goquery.Document) bool {
	for _, sel := range loginIndicators {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	// No positive indicator; absence of a sign-in link is the weakest
	// signal but still usable.
	return doc.Find(signInSelector).Length() == 0 &&
		!strings.Contains(doc.Text(), "Sign in")
}

// SimplifyQuery reduces a composite query to 1-2 quoted keywords plus a
// narrow site filter. Long operator-heavy queries are a reliable way to
// trip automation defenses on a rendered session.
func SimplifyQuery(query string) string {
	terms := quotedTerms.FindAllStringSubmatch(query, -1)
	var parts []string
	for _, t := range terms {
		if strings.TrimSpace(t[1]) == "" {
			continue
		}
		parts = append(parts, `"`+t[1]+`"`)
		if len(parts) == 2 {
			break
		}
	}
	if len(parts) == 0 {
		bare := queryOperators.ReplaceAllString(query, "")
		bare = strings.Join(strings.Fields(bare), " ")
		if bare != "" {
			parts = append(parts, bare)
		}
	}
	parts = append(parts, "site:linkedin.com OR site:facebook.com")
	return strings.Join(parts, " ")
}

func (b *BrowserSearch) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
