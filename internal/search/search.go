// Package search orchestrates the lead pipeline: it builds the composite
// query, runs the source adapters in a fallback chain and turns their raw
// output into a scored, deduplicated result set.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/FranksOps/prospector/internal/leads"
	"github.com/FranksOps/prospector/internal/metrics"
	"github.com/FranksOps/prospector/internal/normalize"
	"github.com/FranksOps/prospector/internal/score"
	"github.com/FranksOps/prospector/internal/source"
)

// ErrAllSourcesFailed is returned only when every adapter in the chain,
// the curated fallback included, failed without producing a single
// candidate.
var ErrAllSourcesFailed = errors.New("search: all sources failed")

// Config wires the adapter chain. Nil adapters are skipped; Platforms
// are consulted only for social searches.
type Config struct {
	// Browser is the authenticated browser-profile adapter.
	Browser source.Adapter
	// Keyed is the API-key search adapter.
	Keyed source.Adapter
	// Platforms are the per-platform adapters, in priority order.
	Platforms []source.Adapter
	// Direct is the plain-HTTP results-page adapter.
	Direct source.Adapter
	// Fallback is the curated last-resort adapter. It runs whenever the
	// chain comes up short of the requested limit.
	Fallback source.Adapter

	Logger *slog.Logger
}

// blockCooldown is how long an adapter sits out after an anti-automation
// block. Immediate retries against a tripped defense only dig the hole
// deeper.
const blockCooldown = 10 * time.Minute

// Finder is the pipeline entry point. Safe for concurrent use.
type Finder struct {
	cfg    Config
	logger *slog.Logger

	mu           sync.Mutex
	blockedUntil map[string]time.Time
}

func New(cfg Config) *Finder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{
		cfg:          cfg,
		logger:       logger,
		blockedUntil: make(map[string]time.Time),
	}
}

// coolingDown reports whether the named adapter is still backing off
// after a block.
func (f *Finder) coolingDown(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return time.Now().Before(f.blockedUntil[name])
}

// recordFailure starts the block cooldown when the failure was an
// anti-automation response.
func (f *Finder) recordFailure(name string, err error) {
	if !errors.Is(err, source.ErrBlocked) {
		return
	}
	f.mu.Lock()
	f.blockedUntil[name] = time.Now().Add(blockCooldown)
	f.mu.Unlock()
	f.logger.Warn("source blocked, backing off", "source", name, "cooldown", blockCooldown)
}

// Find executes one search request end to end. Adapter failures are
// logged and treated as zero results; only a malformed query or a fully
// failed chain surfaces as an error. On context cancellation the
// candidates collected so far are normalized, scored and returned.
func (f *Finder) Find(ctx context.Context, query leads.Query) ([]leads.Lead, error) {
	if err := query.Normalize(); err != nil {
		return nil, err
	}

	composite := BuildQuery(query)
	f.logger.Debug("composite query built", "query", composite)

	raw, attempted, failed := f.collect(ctx, query, composite)

	if len(raw) == 0 && attempted > 0 && failed == attempted {
		return nil, ErrAllSourcesFailed
	}

	results := normalize.Normalize(raw)
	score.All(results, query.Type)
	results = applyThreshold(results, query.MinQuality, query.Limit)

	genuine, example := 0, 0
	for _, lead := range results {
		if lead.IsExample {
			example++
		} else {
			genuine++
		}
	}
	metrics.RecordLeads(genuine, example)
	f.logger.Info("search finished",
		"keywords", query.Keywords,
		"raw", len(raw),
		"returned", len(results),
	)
	return results, nil
}

// collect walks the adapter chain in priority order, stopping early once
// twice the requested limit has accumulated. The curated fallback runs
// last whenever the chain is still short of the limit itself.
func (f *Finder) collect(ctx context.Context, query leads.Query, composite string) (raw []leads.Lead, attempted, failed int) {
	// Platform adapters build their own site: filter, so they get the
	// plain phrase rather than the operator-laden composite.
	plain := plainQuery(query)

	chain := []struct {
		adapter source.Adapter
		query   string
	}{
		{f.cfg.Browser, composite},
		{f.cfg.Keyed, composite},
	}
	if query.Type == leads.SearchSocial {
		for _, p := range f.cfg.Platforms {
			chain = append(chain, struct {
				adapter source.Adapter
				query   string
			}{p, plain})
		}
	}
	chain = append(chain, struct {
		adapter source.Adapter
		query   string
	}{f.cfg.Direct, composite})

	target := query.Limit * 2

	for _, step := range chain {
		if ctx.Err() != nil {
			f.logger.Warn("search cancelled, returning partial results", "collected", len(raw))
			return raw, attempted, failed
		}
		if step.adapter == nil || !step.adapter.Available() {
			continue
		}
		if f.coolingDown(step.adapter.Name()) {
			f.logger.Debug("source cooling down after block", "source", step.adapter.Name())
			continue
		}
		if len(raw) >= target {
			break
		}

		attempted++
		found, err := step.adapter.Search(ctx, step.query, query.Limit)
		metrics.RecordSearch(step.adapter.Name(), err, len(found))
		if err != nil {
			failed++
			f.recordFailure(step.adapter.Name(), err)
			f.logger.Warn("source failed", "source", step.adapter.Name(), "err", err)
			continue
		}
		f.logger.Debug("source returned", "source", step.adapter.Name(), "results", len(found))
		raw = append(raw, found...)
	}

	if f.cfg.Fallback != nil && len(raw) < query.Limit && ctx.Err() == nil {
		attempted++
		found, err := f.cfg.Fallback.Search(ctx, composite, query.Limit-len(raw))
		metrics.RecordSearch(f.cfg.Fallback.Name(), err, len(found))
		if err != nil {
			failed++
			f.recordFailure(f.cfg.Fallback.Name(), err)
			f.logger.Warn("fallback failed", "err", err)
		} else {
			raw = append(raw, found...)
		}
	}

	return raw, attempted, failed
}

// applyThreshold keeps candidates at or above minQuality, backfills from
// the below-threshold pool highest-score-first when short of limit, and
// truncates to limit. The input must already be sorted by score.
func applyThreshold(sorted []leads.Lead, minQuality, limit int) []leads.Lead {
	keep := make([]leads.Lead, 0, limit)
	var below []leads.Lead
	for _, lead := range sorted {
		if lead.QualityScore >= minQuality {
			keep = append(keep, lead)
		} else {
			below = append(below, lead)
		}
	}

	for _, lead := range below {
		if len(keep) >= limit {
			break
		}
		keep = append(keep, lead)
	}
	if len(keep) > limit {
		keep = keep[:limit]
	}
	return keep
}

var socialPlatforms = []string{"linkedin.com", "facebook.com", "twitter.com", "instagram.com"}

// profileHints narrow a platform filter to individual profiles.
var profileHints = map[string]string{
	"linkedin":  `inurl:"linkedin.com/in/"`,
	"facebook":  `inurl:"facebook.com/"`,
	"twitter":   `inurl:"twitter.com/"`,
	"instagram": `inurl:"instagram.com/"`,
}

var directoryDomains = []string{
	"-site:yellowpages.com",
	"-site:yelp.com",
	"-site:bbb.org",
	"-site:chamberofcommerce.com",
	"-site:manta.com",
	"-example.com",
	"-sample",
	"-template",
	"-directory",
}

var businessTerms = []string{"business", "company", "official", "website"}

// BuildQuery assembles the composite engine query: platform filters and
// profile hints by search type, quoted keywords and location, the
// contact hint and directory exclusions.
func BuildQuery(q leads.Query) string {
	var parts []string

	switch q.Type {
	case leads.SearchSocial:
		if q.Platform == "" {
			parts = append(parts, siteGroup(socialPlatforms))
			var hints []string
			for _, name := range []string{"linkedin", "facebook", "twitter", "instagram"} {
				hints = append(hints, profileHints[name])
			}
			parts = append(parts, "("+strings.Join(hints, " OR ")+")")
		} else {
			parts = append(parts, platformFilter(q.Platform))
			for name, hint := range profileHints {
				if strings.Contains(strings.ToLower(q.Platform), name) {
					parts = append(parts, hint)
					break
				}
			}
		}
	case leads.SearchBusiness:
		for _, p := range socialPlatforms {
			parts = append(parts, "-site:"+p)
		}
		parts = append(parts,
			"-site:yellowpages.com", "-site:yelp.com",
			"-site:bbb.org", "-site:chamberofcommerce.com")
		if !containsAnyFold(q.Keywords, businessTerms) {
			parts = append(parts, `("official website" OR "company website" OR "business website")`)
		}
	case leads.SearchContact:
		parts = append(parts, `("contact us" OR "email us" OR "get in touch" OR "contact information")`)
	default:
		if q.Platform != "" {
			parts = append(parts, platformFilter(q.Platform))
		} else {
			// Social profiles convert best, so bias unscoped searches
			// toward them.
			parts = append(parts, siteGroup(socialPlatforms))
		}
	}

	if q.Keywords != "" {
		parts = append(parts, `"`+q.Keywords+`"`)
	}
	if q.Location != "" {
		parts = append(parts, `"`+q.Location+`"`)
	}
	parts = append(parts, q.ContactHint)

	if !platformIsDirectory(q.Platform) {
		parts = append(parts, directoryDomains...)
	}

	return strings.Join(parts, " ")
}

// plainQuery is the operator-free phrase handed to adapters that apply
// their own filters.
func plainQuery(q leads.Query) string {
	if q.Location == "" {
		return q.Keywords
	}
	return q.Keywords + " " + q.Location
}

// platformFilter turns a platform value into a site: filter. Shorthand
// names get ".com" appended; slash-delimited lists become an OR group.
func platformFilter(platform string) string {
	if strings.Contains(platform, "/") {
		var sites []string
		for _, p := range strings.Split(platform, "/") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			sites = append(sites, withTLD(p))
		}
		return siteGroup(sites)
	}
	return "site:" + withTLD(platform)
}

func withTLD(platform string) string {
	if !strings.Contains(platform, ".") {
		return platform + ".com"
	}
	return platform
}

func siteGroup(sites []string) string {
	filters := make([]string, len(sites))
	for i, s := range sites {
		filters[i] = "site:" + s
	}
	return "(" + strings.Join(filters, " OR ") + ")"
}

// platformIsDirectory reports whether the user explicitly asked for one
// of the directory sites the exclusion list would otherwise remove.
func platformIsDirectory(platform string) bool {
	for _, d := range []string{"yellowpages.com", "yelp.com", "bbb.org"} {
		if strings.Contains(platform, d) {
			return true
		}
	}
	return false
}

func containsAnyFold(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
