package enrich

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"

	"github.com/FranksOps/prospector/internal/fetch"
)

// robotsAuditor caches robots.txt per host and answers allow/deny for
// enrichment fetches. Every failure mode defaults to allow: politeness
// must not make an unreachable robots.txt cost us a lead.
type robotsAuditor struct {
	fetcher   *fetch.Fetcher
	userAgent string

	mu    sync.RWMutex
	cache map[string]*robotstxt.RobotsData
}

func newRobotsAuditor(fetcher *fetch.Fetcher, userAgent string) *robotsAuditor {
	return &robotsAuditor{
		fetcher:   fetcher,
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// allowed reports whether targetURL may be fetched under the host's
// robots.txt.
func (r *robotsAuditor) allowed(ctx context.Context, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return true
	}

	data, err := r.getOrFetch(ctx, u.Scheme+"://"+u.Host)
	if err != nil || data == nil {
		return true
	}
	return data.FindGroup(r.userAgent).Test(u.Path)
}

// sitemaps returns the sitemap URLs declared in the host's robots.txt.
func (r *robotsAuditor) sitemaps(ctx context.Context, pageURL string) []string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	data, err := r.getOrFetch(ctx, u.Scheme+"://"+u.Host)
	if err != nil || data == nil {
		return nil
	}
	return data.Sitemaps
}

func (r *robotsAuditor) getOrFetch(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, cached := r.cache[origin]
	r.mu.RUnlock()
	if cached {
		return data, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if data, cached = r.cache[origin]; cached {
		return data, nil
	}

	result, err := r.fetcher.Fetch(ctx, origin+"/robots.txt")
	if err != nil || result.Error != "" || result.StatusCode >= 400 {
		// A missing or unreachable robots.txt means no restrictions.
		r.cache[origin] = nil
		return nil, nil
	}

	parsed, err := robotstxt.FromBytes(result.Body)
	if err != nil {
		r.cache[origin] = nil
		return nil, fmt.Errorf("enrich: parse robots.txt: %w", err)
	}

	r.cache[origin] = parsed
	return parsed, nil
}
