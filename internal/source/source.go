// Package source defines the adapters that query external provenances for
// raw lead candidates. Each adapter covers one provenance and degrades to
// an empty result set on ordinary failure; the orchestrator decides what
// to try next.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/FranksOps/prospector/internal/leads"
)

// ErrBlocked marks a search failure caused by an anti-automation defense
// (CAPTCHA wall, login wall, WAF challenge). Callers should back off the
// adapter rather than retry it immediately.
var ErrBlocked = errors.New("source: blocked by anti-automation defense")

// Adapter is one lead provenance. Search returns raw, unnormalized
// candidates; an error means the source was unavailable or blocked, never
// that the pipeline should abort. Available reports whether the adapter
// has the configuration it needs (an unavailable adapter is skipped, not
// attempted).
type Adapter interface {
	Name() string
	Available() bool
	Search(ctx context.Context, query string, limit int) ([]leads.Lead, error)
}

// RenderedPage is the product of a browser-driven page load: the document
// title and the post-JavaScript HTML.
type RenderedPage struct {
	Title string
	HTML  string
}

// Renderer abstracts an authenticated, JavaScript-executing browser
// session. Close must be called on every acquisition; the session owns
// scarce, detection-sensitive state.
type Renderer interface {
	Render(ctx context.Context, url string) (*RenderedPage, error)
	Close() error
}

// RendererFactory opens a fresh browser session for one search.
type RendererFactory func(ctx context.Context) (Renderer, error)

// KeyedResult is a single hit from a paid search API.
type KeyedResult struct {
	Title   string
	Link    string
	Snippet string
	Source  string
}

// KeyedClient abstracts a configured, API-key-backed search provider.
type KeyedClient interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]KeyedResult, error)
}

const noDescription = "No description available"

// newLead builds a raw candidate with identity fields filled in.
// Everything derived (business name, person detection, domain) is left to
// the normalizer.
func newLead(source, title, link, snippet string) leads.Lead {
	if snippet == "" {
		snippet = noDescription
	}
	return leads.Lead{
		ID:        uuid.New().String(),
		Title:     title,
		Link:      link,
		Snippet:   snippet,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}
