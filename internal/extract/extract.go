// Package extract provides stateless text extractors that turn raw page or
// profile text into structured contact signals. No network I/O happens here.
package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var (
	emailPattern      = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	obfuscatedPattern = regexp.MustCompile(`(?i)([a-zA-Z0-9._%+-]+)\s+(?:at|@|&#64;)\s+([a-zA-Z0-9.-]+)\s+(?:dot|\.)\s+(com|org|net|edu|gov|io)\b`)
	entityPattern     = regexp.MustCompile(`[a-zA-Z0-9._%+-]+&#64;[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	mailtoPattern     = regexp.MustCompile(`mailto:([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
)

// emailPlaceholders are substrings that mark an address as filler rather
// than a real contact. Filtering happens at the consuming layer (see
// IsPlaceholderEmail) so the raw extractor stays lossless.
var emailPlaceholders = []string{"example.com", "domain.com", "youremail"}

// IsPlaceholderEmail reports whether an address is documentation filler
// (example.com and friends) rather than a reachable contact.
func IsPlaceholderEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, p := range emailPlaceholders {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Emails extracts email addresses from text, including obfuscated forms
// like "jane at example dot com", HTML-entity @ signs and mailto: links.
// Addresses with implausible domains are dropped; placeholder addresses
// survive extraction, so callers must screen the result with
// IsPlaceholderEmail before storing or acting on it. The result is sorted
// and duplicate-free.
func Emails(text string) []string {
	set := make(map[string]struct{})

	add := func(email string) {
		email = strings.TrimSpace(email)
		if !plausibleEmail(email) {
			return
		}
		set[email] = struct{}{}
	}

	for _, m := range emailPattern.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range obfuscatedPattern.FindAllStringSubmatch(text, -1) {
		add(m[1] + "@" + m[2] + "." + strings.ToLower(m[3]))
	}
	for _, m := range entityPattern.FindAllString(text, -1) {
		add(strings.ReplaceAll(m, "&#64;", "@"))
	}
	for _, m := range mailtoPattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}

	return sortedKeys(set)
}

func plausibleEmail(email string) bool {
	if len(email) == 0 || len(email) > 50 {
		return false
	}
	if !emailPattern.MatchString(email) {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	// More than 3 dot-segments in the domain is almost always scraped noise.
	if strings.Count(domain, ".") > 2 {
		return false
	}
	return true
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+\d{1,3}[-. ]?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}\b`),
	regexp.MustCompile(`\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}\b`),
	regexp.MustCompile(`\b\d{3}[-.]\d{4}\b`),
}

var phoneStrip = regexp.MustCompile(`[^0-9+]`)

// Phones extracts North-American-style phone numbers and normalizes them to
// digits-only form, preserving a leading +. International numbers need at
// least 10 digits after the +; domestic numbers need 10 digits, 11 starting
// with 1, or at least 7 as a lower-confidence partial.
func Phones(text string) []string {
	set := make(map[string]struct{})

	// Patterns run longest-form first; matched spans are blanked so the
	// partial pattern cannot re-match the tail of a full number.
	remaining := []byte(text)
	for _, pattern := range phonePatterns {
		matches := pattern.FindAll(remaining, -1)
		remaining = pattern.ReplaceAllFunc(remaining, func(m []byte) []byte {
			blank := make([]byte, len(m))
			for i := range blank {
				blank[i] = ' '
			}
			return blank
		})
		for _, mb := range matches {
			m := string(mb)
			cleaned := phoneStrip.ReplaceAllString(m, "")
			if strings.HasPrefix(cleaned, "+") {
				if len(cleaned) >= 11 { // "+" plus at least 10 digits
					set[cleaned] = struct{}{}
				}
				continue
			}
			switch {
			case len(cleaned) == 10:
				set[cleaned] = struct{}{}
			case len(cleaned) == 11 && strings.HasPrefix(cleaned, "1"):
				set[cleaned] = struct{}{}
			case len(cleaned) >= 7:
				set[cleaned] = struct{}{}
			}
		}
	}

	return sortedKeys(set)
}

var handlePatterns = []*regexp.Regexp{
	// The leading guard keeps the domain half of an email address from
	// reading as a handle.
	regexp.MustCompile(`(?:^|[^a-zA-Z0-9._%+-])(@[a-zA-Z0-9_.]{1,30})\b`),
	regexp.MustCompile(`(?:twitter\.com|x\.com)/([a-zA-Z0-9_]{1,15})\b`),
	regexp.MustCompile(`instagram\.com/([a-zA-Z0-9_.]{1,30})\b`),
	regexp.MustCompile(`facebook\.com/([a-zA-Z0-9.]{1,50})\b`),
	regexp.MustCompile(`linkedin\.com/in/([a-zA-Z0-9_-]{1,50})\b`),
	regexp.MustCompile(`youtube\.com/(?:user|channel)/([a-zA-Z0-9_-]{1,50})\b`),
	regexp.MustCompile(`tiktok\.com/@([a-zA-Z0-9_.]{1,24})\b`),
}

// handleNoise marks @-handles that are almost certainly documentation
// placeholders, not accounts.
var handleNoise = []string{"@example", "@username", "@user", "@me", "@test"}

// SocialHandles extracts @handle tokens and platform profile URLs from
// text, canonicalized to a leading-@ form.
func SocialHandles(text string) []string {
	set := make(map[string]struct{})

	for _, pattern := range handlePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			handle := m[0]
			if len(m) > 1 {
				handle = m[1]
			}
			if !strings.HasPrefix(handle, "@") {
				handle = "@" + handle
			}
			if len(handle) <= 3 {
				continue
			}
			lower := strings.ToLower(handle)
			noisy := false
			for _, n := range handleNoise {
				if strings.HasPrefix(lower, n) {
					noisy = true
					break
				}
			}
			if !noisy {
				set[handle] = struct{}{}
			}
		}
	}

	return sortedKeys(set)
}

// knownTLDs is checked longest-suffix-first when deriving a business name.
var knownTLDs = []string{".co.uk", ".com", ".org", ".net", ".edu", ".gov", ".io", ".biz"}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
var multiSpace = regexp.MustCompile(`\s+`)

// BusinessNameFromURL derives a human-readable business name from a URL's
// domain: "https://www.acme-dental.com/about" becomes "Acme Dental".
func BusinessNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	domain := strings.ToLower(u.Hostname())
	if domain == "" {
		// Tolerate bare domains passed without a scheme.
		domain = strings.ToLower(strings.Split(rawURL, "/")[0])
	}
	domain = strings.TrimPrefix(domain, "www.")
	for _, tld := range knownTLDs {
		if strings.HasSuffix(domain, tld) {
			domain = strings.TrimSuffix(domain, tld)
			break
		}
	}

	domain = strings.ReplaceAll(domain, "-", " ")
	domain = strings.ReplaceAll(domain, "_", " ")

	parts := strings.FieldsFunc(domain, func(r rune) bool { return r == '.' || r == ' ' })
	for i, p := range parts {
		parts[i] = titleWord(p)
	}
	name := strings.Join(parts, " ")
	name = nonAlnum.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
