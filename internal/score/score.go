// Package score ranks leads with deterministic source and content
// heuristics on a single 0-100 scale.
package score

import (
	"sort"
	"strings"

	"github.com/FranksOps/prospector/internal/leads"
)

const baseline = 50

// socialHosts identify social-platform links for the social/business
// profile adjustments.
var socialHosts = []string{
	"linkedin.com",
	"twitter.com",
	"x.com",
	"instagram.com",
	"facebook.com",
	"tiktok.com",
	"youtube.com",
}

var roleTerms = []string{
	"professional", "expert", "specialist", "consultant",
	"manager", "director", "founder", "ceo", "owner",
}

var profileTerms = []string{"profile", "account", "page"}

var businessTerms = []string{"official", "website", "home", "about us"}

var contactTerms = []string{"contact", "email", "phone", "get in touch"}

// Score rates one lead for the given search type. Stateless and
// deterministic: equal inputs always produce equal scores. The result is
// clamped to [0, 100].
func Score(lead *leads.Lead, searchType leads.SearchType) int {
	// Synthetic fillers never earn content bonuses; their templated
	// snippets would otherwise collect the term boosts and outrank
	// genuine leads.
	if lead.IsExample {
		return baseline
	}

	link := strings.ToLower(lead.Link)
	text := strings.ToLower(lead.Title + " " + lead.Snippet)

	s := baseline

	switch {
	case strings.Contains(link, "linkedin.com/in/"):
		s += 30
	case isProfileLink(link, "twitter.com/", "/status/") || isProfileLink(link, "x.com/", "/status/"):
		s += 25
	case isProfileLink(link, "instagram.com/", "/p/", "/explore/"):
		s += 20
	case isProfileLink(link, "facebook.com/", "/pages/", "/groups/", "/posts/"):
		s += 20
	}

	switch searchType {
	case leads.SearchSocial:
		if isSocialLink(link) {
			s += 20
		}
		if containsAny(text, profileTerms) {
			s += 20
		}
	case leads.SearchBusiness:
		if !isSocialLink(link) {
			s += 20
		}
		if containsAny(text, businessTerms) {
			s += 20
		}
	case leads.SearchContact:
		if containsAny(text, contactTerms) {
			s += 30
		}
	}

	if containsAny(text, roleTerms) {
		s += 15
	}

	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}
	return s
}

// All scores every lead in place and sorts descending. The sort is
// stable, so the adapter priority order of the input breaks ties.
// Example fillers always rank after genuine leads regardless of score.
func All(list []leads.Lead, searchType leads.SearchType) {
	for i := range list {
		list[i].QualityScore = Score(&list[i], searchType)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].IsExample != list[j].IsExample {
			return list[j].IsExample
		}
		return list[i].QualityScore > list[j].QualityScore
	})
}

// isProfileLink reports whether link is on the platform but not one of
// its content paths.
func isProfileLink(link, platform string, contentPaths ...string) bool {
	if !strings.Contains(link, platform) {
		return false
	}
	for _, p := range contentPaths {
		if strings.Contains(link, p) {
			return false
		}
	}
	return true
}

func isSocialLink(link string) bool {
	for _, host := range socialHosts {
		if strings.Contains(link, host) {
			return true
		}
	}
	return false
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
