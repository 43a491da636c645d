// Package enrich populates a lead's contact info: live page content when
// the link is reachable, URL-structure guesses when it is not.
package enrich

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/FranksOps/prospector/internal/extract"
	"github.com/FranksOps/prospector/internal/fetch"
	"github.com/FranksOps/prospector/internal/leads"
	"github.com/FranksOps/prospector/pkg/ratelimit"
)

// Config configures an Enricher.
type Config struct {
	Fetcher *fetch.Fetcher
	Logger  *slog.Logger
	// UserAgent is the robots.txt group to honor.
	UserAgent string
	// MinDelay and MaxDelay bound the randomized pause between a page
	// fetch and its contact-page fetch. Defaults: 1s-5s.
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Enricher fills ContactInfo on leads. Safe for concurrent use.
type Enricher struct {
	cfg    Config
	logger *slog.Logger
	robots *robotsAuditor
}

func New(cfg Config) *Enricher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "*"
	}
	if cfg.MinDelay == 0 {
		cfg.MinDelay = time.Second
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		cfg:    cfg,
		logger: logger,
		robots: newRobotsAuditor(cfg.Fetcher, cfg.UserAgent),
	}
}

// Enrich populates lead.Contact in place. It never fails a lead: when
// nothing can be fetched the URL heuristics still produce guesses, and a
// lead with no discoverable contacts simply keeps a nil Contact.
func (e *Enricher) Enrich(ctx context.Context, lead *leads.Lead) {
	if lead == nil || lead.Link == "" || lead.IsExample {
		return
	}

	c := newCollector()
	if platform := socialPlatform(lead.Host()); platform != "" {
		e.enrichSocial(ctx, lead, platform, c)
	} else {
		e.enrichSite(ctx, lead, c)
	}

	if info := c.contactInfo(); info != nil {
		lead.Contact = info
	}
}

// enrichSocial handles profile links. Live page text is preferred;
// unreachable profiles fall back to address guesses derived from the
// handle in the URL.
func (e *Enricher) enrichSocial(ctx context.Context, lead *leads.Lead, platform string, c *collector) {
	c.addSocial(platform, lead.Link)

	result := e.fetchAllowed(ctx, lead.Link)
	if result != nil && result.OK() {
		e.collectFromHTML(result.Body, c)
		if len(c.emails) > 0 {
			return
		}
	}

	e.logger.Debug("profile unreadable, guessing from url", "link", lead.Link)
	for _, email := range guessEmails(lead.Link) {
		c.addEmail(email, leads.ConfidenceHeuristic)
	}
}

// enrichSite handles general websites: page extraction followed by a
// contact-page pass when one can be located.
func (e *Enricher) enrichSite(ctx context.Context, lead *leads.Lead, c *collector) {
	result := e.fetchAllowed(ctx, lead.Link)
	if result == nil || !result.OK() {
		for _, email := range guessEmails(lead.Link) {
			c.addEmail(email, leads.ConfidenceHeuristic)
		}
		return
	}

	contactPage := e.collectFromHTML(result.Body, c)
	if contactPage == "" {
		contactPage = contactFromSitemaps(ctx, e.cfg.Fetcher, e.robots, lead.Link)
	}
	if contactPage == "" {
		return
	}

	contactPage = absoluteURL(lead.Link, contactPage)
	if contactPage == "" || contactPage == lead.Link {
		return
	}

	// Human-ish pacing between dependent loads on the same site.
	if err := ratelimit.SleepBetween(ctx, e.cfg.MinDelay, e.cfg.MaxDelay); err != nil {
		return
	}
	if follow := e.fetchAllowed(ctx, contactPage); follow != nil && follow.OK() {
		e.collectFromHTML(follow.Body, c)
	}
}

// fetchAllowed fetches targetURL unless robots.txt forbids it.
func (e *Enricher) fetchAllowed(ctx context.Context, targetURL string) *fetch.Result {
	if e.cfg.Fetcher == nil {
		return nil
	}
	if !e.robots.allowed(ctx, targetURL) {
		e.logger.Debug("fetch disallowed by robots.txt", "url", targetURL)
		return nil
	}
	result, err := e.cfg.Fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil
	}
	return result
}

// collectFromHTML extracts contact signals from one page and returns the
// href of a contact-us link when the page has one.
func (e *Enricher) collectFromHTML(body []byte, c *collector) (contactHref string) {
	text := string(body)
	for _, email := range extract.Emails(text) {
		c.addEmail(email, leads.ConfidenceExtracted)
	}
	for _, phone := range extract.Phones(text) {
		c.addPhone(phone)
	}
	for _, handle := range extract.SocialHandles(text) {
		c.addSocial(handlePlatform(text, handle), handle)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	doc.Find("a[href^='mailto:']").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.Index(addr, "?"); i >= 0 {
			addr = addr[:i]
		}
		c.addEmail(addr, leads.ConfidenceExtracted)
	})
	doc.Find("a[href^='tel:']").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		for _, phone := range extract.Phones(strings.TrimPrefix(href, "tel:")) {
			c.addPhone(phone)
		}
	})

	// Structured-data blocks often carry contacts the visible page hides
	// behind scripts.
	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		for _, email := range extract.Emails(s.Text()) {
			c.addEmail(email, leads.ConfidenceExtracted)
		}
		for _, phone := range extract.Phones(s.Text()) {
			c.addPhone(phone)
		}
	})

	contactSelectors := "[class*='email'], [id*='email'], [class*='contact'], [id*='contact'], " +
		"[class*='phone'], [id*='phone'], [class*='tel'], [id*='tel'], [class*='call'], [id*='call']"
	doc.Find(contactSelectors).Each(func(_ int, s *goquery.Selection) {
		for _, email := range extract.Emails(s.Text()) {
			c.addEmail(email, leads.ConfidenceExtracted)
		}
		for _, phone := range extract.Phones(s.Text()) {
			c.addPhone(phone)
		}
	})

	if c.address == "" {
		doc.Find("[class*='address'], [id*='address'], [class*='location'], address").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			addr := strings.Join(strings.Fields(s.Text()), " ")
			if len(addr) >= 10 && len(addr) <= 200 {
				c.address = addr
				return false
			}
			return true
		})
	}

	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		label := strings.ToLower(s.Text())
		if strings.Contains(strings.ToLower(href), "contact") || strings.Contains(label, "contact") {
			contactHref = href
			return false
		}
		return true
	})
	return contactHref
}

// handlePlatforms orders the profile-URL markers used to key an extracted
// handle under its platform.
var handlePlatforms = []struct {
	name    string
	markers []string
}{
	{"twitter", []string{"twitter.com/", "x.com/"}},
	{"instagram", []string{"instagram.com/"}},
	{"facebook", []string{"facebook.com/"}},
	{"linkedin", []string{"linkedin.com/in/"}},
	{"youtube", []string{"youtube.com/user/", "youtube.com/channel/"}},
	{"tiktok", []string{"tiktok.com/@"}},
}

// handlePlatform keys a handle under the platform whose profile URL the
// page links it through, or "handle" for bare @-mentions.
func handlePlatform(text, handle string) string {
	bare := strings.ToLower(strings.TrimPrefix(handle, "@"))
	lower := strings.ToLower(text)
	for _, p := range handlePlatforms {
		for _, m := range p.markers {
			if strings.Contains(lower, m+bare) {
				return p.name
			}
		}
	}
	return "handle"
}

func socialPlatform(host string) string {
	switch {
	case strings.Contains(host, "linkedin.com"):
		return "linkedin"
	case strings.Contains(host, "twitter.com"), strings.Contains(host, "x.com"):
		return "twitter"
	case strings.Contains(host, "instagram.com"):
		return "instagram"
	case strings.Contains(host, "facebook.com"):
		return "facebook"
	}
	return ""
}

func absoluteURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(h).String()
}

// collector accumulates contact signals with set semantics. Extracted
// confidence always wins over a heuristic duplicate.
type collector struct {
	emails  map[string]leads.Confidence
	phones  map[string]struct{}
	social  map[string]string
	address string
}

func newCollector() *collector {
	return &collector{
		emails: make(map[string]leads.Confidence),
		phones: make(map[string]struct{}),
		social: make(map[string]string),
	}
}

func (c *collector) addEmail(addr string, conf leads.Confidence) {
	addr = strings.TrimSpace(strings.ToLower(addr))
	if addr == "" || extract.IsPlaceholderEmail(addr) {
		return
	}
	if existing, ok := c.emails[addr]; ok && existing == leads.ConfidenceExtracted {
		return
	}
	c.emails[addr] = conf
}

func (c *collector) addPhone(phone string) {
	if phone != "" {
		c.phones[phone] = struct{}{}
	}
}

func (c *collector) addSocial(platform, url string) {
	if _, ok := c.social[platform]; !ok {
		c.social[platform] = url
	}
}

func (c *collector) contactInfo() *leads.ContactInfo {
	if len(c.emails) == 0 && len(c.phones) == 0 && len(c.social) == 0 && c.address == "" {
		return nil
	}

	info := &leads.ContactInfo{Address: c.address}
	for addr, conf := range c.emails {
		info.Emails = append(info.Emails, leads.Email{Address: addr, Confidence: conf})
	}
	sort.Slice(info.Emails, func(i, j int) bool {
		return info.Emails[i].Address < info.Emails[j].Address
	})
	for phone := range c.phones {
		info.Phones = append(info.Phones, phone)
	}
	sort.Strings(info.Phones)
	if len(c.social) > 0 {
		info.Social = c.social
	}
	return info
}
