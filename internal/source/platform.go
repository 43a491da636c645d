package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/FranksOps/prospector/internal/fetch"
	"github.com/FranksOps/prospector/internal/leads"
)

// platformSpec describes how to search one social platform through a
// site:-constrained web query and which result paths are content rather
// than profiles.
type platformSpec struct {
	source string
	site   string
	// rejectPaths mark post/status/index URLs that are not profiles.
	rejectPaths []string
}

var platformSpecs = map[string]platformSpec{
	"linkedin": {
		source:      "linkedin",
		site:        "linkedin.com/in",
		rejectPaths: []string{"/pulse/", "/jobs/", "/learning/", "/posts/"},
	},
	"twitter": {
		source:      "twitter",
		site:        "twitter.com",
		rejectPaths: []string{"/status/", "/search", "/hashtag/", "/i/"},
	},
	"instagram": {
		source:      "instagram",
		site:        "instagram.com",
		rejectPaths: []string{"/p/", "/explore/", "/reel/", "/tags/"},
	},
}

// Platforms lists the supported platform adapter names in priority order.
func Platforms() []string {
	return []string{"linkedin", "twitter", "instagram"}
}

// PlatformSearch finds profile pages on one social platform by scraping a
// site:-constrained results page.
type PlatformSearch struct {
	spec    platformSpec
	fetcher *fetch.Fetcher
	logger  *slog.Logger
}

// NewPlatformSearch returns the adapter for the named platform
// ("linkedin", "twitter" or "instagram").
func NewPlatformSearch(platform string, fetcher *fetch.Fetcher, logger *slog.Logger) (*PlatformSearch, error) {
	spec, ok := platformSpecs[strings.ToLower(platform)]
	if !ok {
		return nil, fmt.Errorf("source: unsupported platform %q", platform)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlatformSearch{spec: spec, fetcher: fetcher, logger: logger}, nil
}

func (p *PlatformSearch) Name() string { return p.spec.source }

func (p *PlatformSearch) Available() bool { return p.fetcher != nil }

func (p *PlatformSearch) Search(ctx context.Context, query string, limit int) ([]leads.Lead, error) {
	constrained := "site:" + p.spec.site + " " + query

	result, err := p.fetcher.Fetch(ctx, serpURL(constrained))
	if err != nil {
		return nil, fmt.Errorf("source: %s search: %w", p.spec.source, err)
	}
	if result.Blocked {
		return nil, fmt.Errorf("%s search blocked by %s: %w", p.spec.source, result.BlockSource, ErrBlocked)
	}
	if !result.OK() {
		return nil, fmt.Errorf("source: %s search failed: status=%d %s", p.spec.source, result.StatusCode, result.Error)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		return nil, fmt.Errorf("source: %s parse: %w", p.spec.source, err)
	}

	// Parse generously, then discard non-profile URLs.
	raw := parseSERP(doc, p.spec.source, limit*2)
	results := make([]leads.Lead, 0, len(raw))
	for _, lead := range raw {
		if !p.isProfile(lead.Link) {
			continue
		}
		results = append(results, lead)
		if len(results) >= limit {
			break
		}
	}

	p.logger.Debug("platform search done", "platform", p.spec.source, "raw", len(raw), "profiles", len(results))
	return results, nil
}

// isProfile reports whether the link looks like a profile page on this
// platform rather than a post, status or index page.
func (p *PlatformSearch) isProfile(link string) bool {
	lower := strings.ToLower(link)
	host := hostname(link)
	platformHost := p.spec.site
	if i := strings.Index(platformHost, "/"); i >= 0 {
		platformHost = platformHost[:i]
	}
	if host != platformHost && !strings.HasSuffix(host, "."+platformHost) {
		return false
	}
	for _, reject := range p.spec.rejectPaths {
		if strings.Contains(lower, reject) {
			return false
		}
	}
	return true
}
