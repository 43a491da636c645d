package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/FranksOps/prospector/internal/extract"
	"github.com/FranksOps/prospector/internal/fetch"
	"github.com/FranksOps/prospector/internal/leads"
)

// curatedSites maps a keyword category to real, topic-relevant sites that
// can be fetched directly when every search source has failed.
var curatedSites = []struct {
	keywords []string
	sites    []string
}{
	{
		keywords: []string{"dentist", "dental"},
		sites: []string{
			"https://www.ada.org",
			"https://www.dentalhealth.org",
			"https://www.mouthhealthy.org",
			"https://www.dentalcare.com",
			"https://www.dentistrytoday.com",
			"https://www.1800dentist.com",
			"https://www.agd.org",
			"https://www.dentalplans.com",
		},
	},
	{
		keywords: []string{"marketing"},
		sites: []string{
			"https://www.marketingweek.com",
			"https://www.marketingprofs.com",
			"https://www.ama.org",
			"https://www.hubspot.com/marketing",
			"https://www.marketingdive.com",
			"https://www.marketingsherpa.com",
		},
	},
	{
		keywords: []string{"web", "developer", "development"},
		sites: []string{
			"https://www.smashingmagazine.com",
			"https://www.sitepoint.com",
			"https://css-tricks.com",
			"https://www.awwwards.com",
			"https://www.webflow.com",
			"https://www.wix.com",
		},
	},
}

// genericBusinessSites back any keyword without a dedicated category.
var genericBusinessSites = []string{
	"https://www.entrepreneur.com",
	"https://www.inc.com",
	"https://www.business.com",
	"https://www.businessnewsdaily.com",
	"https://www.score.org",
	"https://www.startupnation.com",
}

// CuratedFallback is the adapter of last resort: it fetches a small
// curated list of real, topic-relevant sites and builds leads from their
// live content. Only when even that comes up short does it synthesize
// clearly-marked example records.
type CuratedFallback struct {
	Fetcher *fetch.Fetcher
	Logger  *slog.Logger
	// Concurrency bounds the site fetch pool; defaults to 3. The curated
	// lists never contain two URLs on the same host, so the pool cannot
	// hit one host twice at once.
	Concurrency int
}

func (c *CuratedFallback) Name() string { return "fallback_data" }

func (c *CuratedFallback) Available() bool { return true }

func (c *CuratedFallback) Search(ctx context.Context, query string, limit int) ([]leads.Lead, error) {
	keyword := primaryKeyword(query)
	sites := sitesFor(keyword)

	results := c.fetchSites(ctx, sites, keyword, limit)

	// Synthesize placeholders only for the remaining shortfall, never in
	// place of real data.
	for i := len(results); i < limit; i++ {
		results = append(results, exampleLead(keyword, i+1))
	}

	return results, nil
}

// fetchSites loads curated sites through a bounded pool and keeps the
// ones that respond with usable content. Output order follows the curated
// list regardless of fetch completion order.
func (c *CuratedFallback) fetchSites(ctx context.Context, sites []string, keyword string, limit int) []leads.Lead {
	if c.Fetcher == nil {
		return nil
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fetched := make([]*leads.Lead, len(sites))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, site := range sites {
		g.Go(func() error {
			result, err := c.Fetcher.Fetch(gCtx, site)
			if err != nil || !result.OK() {
				logger.Debug("fallback site unusable", "site", site)
				return nil
			}
			lead := c.leadFromPage(site, keyword, result)
			fetched[i] = &lead
			return nil
		})
	}
	// Workers only report nil; Wait just joins the pool.
	_ = g.Wait()

	var results []leads.Lead
	for _, lead := range fetched {
		if lead == nil {
			continue
		}
		results = append(results, *lead)
		if len(results) >= limit {
			break
		}
	}
	return results
}

// leadFromPage builds a lead from a fetched curated site: real title,
// real snippet, and whatever contact info the page exposes.
func (c *CuratedFallback) leadFromPage(site, keyword string, result *fetch.Result) leads.Lead {
	title := ""
	snippet := ""

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err == nil {
		title = strings.TrimSpace(doc.Find("title").First().Text())
		snippet = relevantSnippet(doc, keyword)
	}
	if title == "" {
		title = extract.BusinessNameFromURL(site)
	}

	lead := newLead(c.Name(), title, site, snippet)

	text := string(result.Body)
	emails := extract.Emails(text)
	phones := extract.Phones(text)
	if len(emails) > 0 || len(phones) > 0 {
		info := &leads.ContactInfo{Phones: phones}
		for _, e := range emails {
			if extract.IsPlaceholderEmail(e) {
				continue
			}
			info.Emails = append(info.Emails, leads.Email{Address: e, Confidence: leads.ConfidenceExtracted})
		}
		if len(info.Emails) > 0 || len(info.Phones) > 0 {
			lead.Contact = info
		}
	}

	return lead
}

// relevantSnippet returns the first heading or paragraph mentioning the
// keyword, or the first non-trivial one otherwise.
func relevantSnippet(doc *goquery.Document, keyword string) string {
	var first, matched string
	doc.Find("h1, h2, h3, p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if len(text) < 20 {
			return i < 10
		}
		if first == "" {
			first = text
		}
		if keyword != "" && strings.Contains(strings.ToLower(text), strings.ToLower(keyword)) {
			matched = text
			return false
		}
		return i < 10
	})

	snippet := matched
	if snippet == "" {
		snippet = first
	}
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}
	return snippet
}

// exampleLead synthesizes a clearly-marked placeholder record.
func exampleLead(keyword string, n int) leads.Lead {
	if keyword == "" {
		keyword = "business"
	}
	name := fmt.Sprintf("%s Professional Services %d", titleCase(keyword), n)
	slug := strings.ReplaceAll(strings.ToLower(keyword), " ", "-")

	lead := newLead("fallback_data",
		name,
		fmt.Sprintf("https://example.com/%s-%d", slug, n),
		fmt.Sprintf("Professional %s services. Contact us for more information.", keyword),
	)
	lead.BusinessName = name
	lead.IsExample = true
	return lead
}

// primaryKeyword recovers the main search phrase from a composite query:
// the first quoted term, or the query minus operators.
func primaryKeyword(query string) string {
	if m := quotedTerms.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	bare := queryOperators.ReplaceAllString(query, "")
	fields := strings.Fields(bare)
	if len(fields) == 0 {
		return ""
	}
	if len(fields) > 2 {
		fields = fields[:2]
	}
	return strings.Join(fields, " ")
}

// sitesFor picks the curated category whose keywords match, defaulting to
// the generic business list.
func sitesFor(keyword string) []string {
	lower := strings.ToLower(keyword)
	for _, cat := range curatedSites {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.sites
			}
		}
	}
	return genericBusinessSites
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}
