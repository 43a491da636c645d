package enrich

import (
	"bytes"
	"context"
	"strings"

	"github.com/oxffaa/gopher-parse-sitemap"

	"github.com/FranksOps/prospector/internal/fetch"
)

// contactFromSitemaps scans the site's declared sitemaps for a contact
// page URL. One level of sitemap-index nesting is followed; anything
// deeper is not worth the requests for a single page lookup.
func contactFromSitemaps(ctx context.Context, fetcher *fetch.Fetcher, robots *robotsAuditor, pageURL string) string {
	for _, sitemapURL := range robots.sitemaps(ctx, pageURL) {
		if found := contactFromSitemap(ctx, fetcher, sitemapURL, true); found != "" {
			return found
		}
	}
	return ""
}

func contactFromSitemap(ctx context.Context, fetcher *fetch.Fetcher, sitemapURL string, followIndex bool) string {
	result, err := fetcher.Fetch(ctx, sitemapURL)
	if err != nil || !result.OK() {
		return ""
	}

	var found string
	err = sitemap.Parse(bytes.NewReader(result.Body), func(e sitemap.Entry) error {
		if isContactURL(e.GetLocation()) {
			found = e.GetLocation()
		}
		return nil
	})
	if err == nil && found != "" {
		return found
	}
	if !followIndex {
		return ""
	}

	// Possibly a sitemap index pointing at per-section maps.
	var nested []string
	if err := sitemap.ParseIndex(bytes.NewReader(result.Body), func(e sitemap.IndexEntry) error {
		nested = append(nested, e.GetLocation())
		return nil
	}); err != nil {
		return ""
	}
	for _, n := range nested {
		if found := contactFromSitemap(ctx, fetcher, n, false); found != "" {
			return found
		}
	}
	return ""
}

func isContactURL(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "contact")
}
