// Package normalize maps raw adapter output into canonical leads: it
// drops linkless and directory-site records, deduplicates by link and
// derives the name fields from platform title conventions.
package normalize

import (
	"strings"

	"github.com/FranksOps/prospector/internal/extract"
	"github.com/FranksOps/prospector/internal/leads"
)

// denyHosts are directory and listing sites whose results are aggregator
// noise, never actual leads. Matched against the link host, subdomains
// included.
var denyHosts = []string{
	"yellowpages.com",
	"yelp.com",
	"bbb.org",
	"chamberofcommerce.com",
	"manta.com",
	"wikipedia.org",
}

// denyPrefixes reject search and explore index pages on otherwise
// acceptable platforms.
var denyPrefixes = []string{
	"twitter.com/search",
	"x.com/search",
	"instagram.com/explore",
	"facebook.com/directory",
	"linkedin.com/directory",
}

// genericTitles never make a usable business name on their own.
var genericTitles = map[string]bool{
	"home":    true,
	"welcome": true,
	"index":   true,
}

// Normalize converts raw adapter results into a clean, duplicate-free
// list. First occurrence of a link wins, so callers should append
// adapter output in priority order. The operation is idempotent:
// normalizing an already-normalized list returns it unchanged.
func Normalize(raw []leads.Lead) []leads.Lead {
	seen := make(map[string]struct{}, len(raw))
	out := make([]leads.Lead, 0, len(raw))

	for _, lead := range raw {
		if lead.Link == "" {
			continue
		}
		if Denied(lead.Link) {
			continue
		}
		if _, dup := seen[lead.Link]; dup {
			continue
		}
		seen[lead.Link] = struct{}{}

		derive(&lead)
		out = append(out, lead)
	}
	return out
}

// Denied reports whether the link's host is on the directory deny-list
// or the link is a platform search/explore index page.
func Denied(link string) bool {
	lower := strings.ToLower(link)
	l := leads.Lead{Link: link}
	host := l.Host()

	for _, deny := range denyHosts {
		if host == deny || strings.HasSuffix(host, "."+deny) {
			return true
		}
	}
	for _, prefix := range denyPrefixes {
		if strings.Contains(lower, prefix) {
			return true
		}
	}
	return false
}

// derive fills Domain, BusinessName, PersonName and IsPerson from the
// title and link using per-platform conventions. Already-populated
// fields are left alone, which is what keeps Normalize idempotent.
func derive(lead *leads.Lead) {
	if lead.Domain == "" {
		lead.Domain = lead.Host()
	}

	host := lead.Domain
	switch {
	case strings.Contains(host, "linkedin.com"):
		deriveLinkedIn(lead)
	case strings.Contains(host, "instagram.com"):
		deriveInstagram(lead)
	default:
		deriveGeneric(lead)
	}
}

// deriveLinkedIn parses the "Name | Title at Company | LinkedIn" title
// convention. A /in/ link marks an individual profile.
func deriveLinkedIn(lead *leads.Lead) {
	if strings.Contains(strings.ToLower(lead.Link), "/in/") {
		lead.IsPerson = true
	}

	parts := strings.Split(lead.Title, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if lead.IsPerson && lead.PersonName == "" && len(parts) > 0 {
		lead.PersonName = parts[0]
	}
	if lead.BusinessName == "" && len(parts) > 1 {
		company := parts[1]
		if i := strings.LastIndex(company, " at "); i >= 0 {
			company = company[i+len(" at "):]
		}
		company = strings.TrimSpace(strings.TrimSuffix(company, "LinkedIn"))
		if !strings.EqualFold(company, "LinkedIn") && company != "" {
			lead.BusinessName = company
		}
	}
	if lead.BusinessName == "" && !lead.IsPerson && len(parts) > 0 {
		lead.BusinessName = parts[0]
	}
}

// deriveInstagram parses the "Username (@handle) • Instagram" title
// convention.
func deriveInstagram(lead *leads.Lead) {
	if lead.BusinessName != "" {
		return
	}
	name := lead.Title
	if i := strings.Index(name, " (@"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name != "" && !strings.EqualFold(name, "Instagram") {
		lead.BusinessName = name
	}
}

// deriveGeneric takes the first " | " or " - " segment of the title,
// falling back to the titlecased domain when the segment is useless.
func deriveGeneric(lead *leads.Lead) {
	if lead.BusinessName != "" {
		return
	}

	name := lead.Title
	for _, sep := range []string{" | ", " - "} {
		if i := strings.Index(name, sep); i >= 0 {
			name = name[:i]
		}
	}
	name = strings.TrimSpace(name)

	if len(name) < 3 || genericTitles[strings.ToLower(name)] {
		name = extract.BusinessNameFromURL(lead.Link)
	}
	lead.BusinessName = name
}
