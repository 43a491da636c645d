package source

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/FranksOps/prospector/internal/leads"
)

// resultSelectors are tried in order until one yields elements. The search
// engine rotates its markup regularly; adding a selector here is the whole
// fix when it does.
var resultSelectors = []string{
	"div.g",
	"div.yuRUbf",
	"div[data-sokoban-container]",
	"div.MjjYud",
	"div.v7W49e",
}

// snippetSelectors are tried in order within one result block.
var snippetSelectors = []string{
	"div.VwiC3b",
	"div.lEBKkf",
	"span.st",
	"div.s",
}

// serpURL builds a search-results URL for the composite query.
func serpURL(query string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}

// parseSERP extracts result blocks from a search-results document using
// the selector strategies, falling back to a bare anchor scan when none of
// them match the current markup.
func parseSERP(doc *goquery.Document, source string, limit int) []leads.Lead {
	var blocks *goquery.Selection
	for _, sel := range resultSelectors {
		found := doc.Find(sel)
		if found.Length() > 0 {
			blocks = found
			break
		}
	}

	var results []leads.Lead
	seen := make(map[string]struct{})

	if blocks != nil {
		blocks.EachWithBreak(func(_ int, block *goquery.Selection) bool {
			link := resultLink(block)
			if link == "" {
				return true
			}
			if _, dup := seen[link]; dup {
				return true
			}
			seen[link] = struct{}{}

			title := strings.TrimSpace(block.Find("h3").First().Text())
			if title == "" {
				title = strings.TrimSpace(block.Find("a").First().Text())
			}
			if title == "" {
				if u, err := url.Parse(link); err == nil {
					title = u.Hostname()
				}
			}

			snippet := ""
			for _, sel := range snippetSelectors {
				snippet = strings.TrimSpace(block.Find(sel).First().Text())
				if snippet != "" {
					break
				}
			}

			results = append(results, newLead(source, title, link, snippet))
			return len(results) < limit
		})
		return results
	}

	// None of the known block selectors matched; scan raw anchors as a
	// last resort so a markup change degrades results instead of zeroing
	// them.
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		link := cleanRedirect(href)
		if link == "" || !strings.HasPrefix(link, "http") {
			return true
		}
		if host := hostname(link); host == "" || strings.Contains(host, "google.") {
			return true
		}
		if _, dup := seen[link]; dup {
			return true
		}
		seen[link] = struct{}{}

		title := strings.TrimSpace(a.Text())
		if title == "" {
			title = hostname(link)
		}
		results = append(results, newLead(source, title, link, ""))
		return len(results) < limit
	})

	return results
}

// resultLink pulls the destination URL out of one result block.
func resultLink(block *goquery.Selection) string {
	href, ok := block.Find("a[href]").First().Attr("href")
	if !ok {
		return ""
	}
	return cleanRedirect(href)
}

// cleanRedirect unwraps "/url?q=" redirect hrefs into their destination.
func cleanRedirect(href string) string {
	if strings.HasPrefix(href, "/url?") {
		if u, err := url.Parse(href); err == nil {
			if q := u.Query().Get("q"); q != "" {
				return q
			}
		}
		return ""
	}
	if strings.HasPrefix(href, "/") || strings.HasPrefix(href, "#") {
		return ""
	}
	return href
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
