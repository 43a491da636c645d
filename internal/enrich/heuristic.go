package enrich

import (
	"net/url"
	"regexp"
	"strings"
)

var trailingDigits = regexp.MustCompile(`\d+$`)

// guessEmails derives plausible addresses from URL structure alone, for
// profiles and sites that could not be fetched. Everything returned here
// is a guess and must be tagged with heuristic confidence.
func guessEmails(link string) []string {
	u, err := url.Parse(link)
	if err != nil {
		return nil
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := pathSegments(u.Path)

	switch {
	case strings.Contains(host, "linkedin.com"):
		return guessLinkedIn(segments)
	case strings.Contains(host, "twitter.com"), strings.Contains(host, "x.com"):
		return guessHandleEmails(segments, []string{"search", "hashtag", "explore"}, "info")
	case strings.Contains(host, "instagram.com"):
		return guessHandleEmails(segments, []string{"explore", "tags", "locations"}, "contact")
	case strings.Contains(host, "facebook.com"):
		return guessFacebook(segments)
	default:
		if host == "" {
			return nil
		}
		return []string{"info@" + host, "contact@" + host, "hello@" + host}
	}
}

// guessLinkedIn turns an /in/ handle like "jane-doe-1b2c3" into
// firstname.lastname mailbox guesses.
func guessLinkedIn(segments []string) []string {
	handle := ""
	for i, seg := range segments {
		if seg == "in" && i+1 < len(segments) {
			handle = segments[i+1]
			break
		}
	}
	if handle == "" {
		return nil
	}

	name := strings.ToLower(strings.ReplaceAll(handle, "-", "."))
	name = trailingDigits.ReplaceAllString(name, "")
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return nil
	}

	parts := strings.Split(name, ".")
	if len(parts) >= 2 && parts[0] != "" && parts[1] != "" {
		return []string{
			parts[0][:1] + parts[1] + "@gmail.com",
			parts[0] + "." + parts[1] + "@gmail.com",
		}
	}
	return []string{name + "@gmail.com"}
}

// guessHandleEmails covers twitter/x and instagram profiles: the handle
// as a personal mailbox plus a business mailbox on the handle's domain.
func guessHandleEmails(segments, indexPages []string, businessPrefix string) []string {
	if len(segments) == 0 {
		return nil
	}
	handle := strings.ToLower(segments[0])
	for _, idx := range indexPages {
		if handle == idx {
			return nil
		}
	}
	return []string{
		handle + "@gmail.com",
		businessPrefix + "@" + handle + ".com",
	}
}

func guessFacebook(segments []string) []string {
	if len(segments) == 0 {
		return nil
	}
	page := strings.ToLower(segments[0])
	switch page {
	case "groups", "pages", "events":
		return nil
	}
	return []string{"info@" + page + ".com", "contact@" + page + ".com"}
}

func pathSegments(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
