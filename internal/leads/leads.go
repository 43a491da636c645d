// Package leads defines the records that flow through the search and
// enrichment pipeline.
package leads

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SearchType selects the scoring profile and query construction strategy.
type SearchType string

const (
	SearchGeneral  SearchType = "general"
	SearchSocial   SearchType = "social"
	SearchBusiness SearchType = "business"
	SearchContact  SearchType = "contact"
)

// DefaultContactHint biases queries toward results that expose a way to
// reach the lead.
const DefaultContactHint = `("@gmail.com" OR "@hotmail.com" OR "@yahoo.com" OR "email me" OR "contact me" OR "DM me")`

// Query describes one search request. Zero values are filled in by
// Normalize before the orchestrator uses it.
type Query struct {
	// Keywords is the main search phrase, e.g. "dentist".
	Keywords string
	// Platform optionally restricts the search to one or more domains.
	// Shorthand names ("linkedin") and slash-delimited lists
	// ("linkedin/twitter") are accepted.
	Platform string
	// Location is an optional free-form location filter.
	Location string
	// ContactHint is inserted into the composite query; defaults to
	// DefaultContactHint.
	ContactHint string
	// Limit caps the number of returned leads.
	Limit int
	// MinQuality drops leads scoring below this value (0-100) unless
	// backfill is needed to reach Limit.
	MinQuality int
	// Type selects the scoring profile.
	Type SearchType
}

// Normalize applies defaults and returns an error for requests the
// pipeline cannot serve.
func (q *Query) Normalize() error {
	if strings.TrimSpace(q.Keywords) == "" {
		return fmt.Errorf("leads: query keywords are required")
	}
	if q.Limit < 0 {
		return fmt.Errorf("leads: limit cannot be negative: %d", q.Limit)
	}
	if q.Limit == 0 {
		q.Limit = 5
	}
	if q.MinQuality < 0 || q.MinQuality > 100 {
		return fmt.Errorf("leads: min quality must be within 0-100: %d", q.MinQuality)
	}
	if q.MinQuality == 0 {
		q.MinQuality = 50
	}
	switch q.Type {
	case SearchGeneral, SearchSocial, SearchBusiness, SearchContact:
	case "":
		q.Type = SearchGeneral
	default:
		return fmt.Errorf("leads: unknown search type %q", q.Type)
	}
	if q.ContactHint == "" {
		q.ContactHint = DefaultContactHint
	}
	return nil
}

// Confidence records how a piece of contact data was obtained. Heuristic
// values are guesses derived from URL structure and must never be treated
// as verified contacts.
type Confidence string

const (
	ConfidenceExtracted Confidence = "extracted"
	ConfidenceHeuristic Confidence = "heuristic"
)

// Email is a single address with its provenance.
type Email struct {
	Address    string     `json:"address"`
	Confidence Confidence `json:"confidence"`
}

// ContactInfo holds everything the enrichment pipeline discovered for a
// lead. All slices behave as sets: no duplicates, sorted order.
type ContactInfo struct {
	Emails  []Email           `json:"emails,omitempty"`
	Phones  []string          `json:"phones,omitempty"`
	Social  map[string]string `json:"social_handles,omitempty"`
	Address string            `json:"address,omitempty"`
}

// Lead is one discovered candidate. Link is the identity key for
// deduplication.
type Lead struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	BusinessName string       `json:"business_name"`
	PersonName   string       `json:"name"`
	Link         string       `json:"link"`
	Snippet      string       `json:"snippet"`
	Source       string       `json:"source"`
	IsPerson     bool         `json:"is_person"`
	Domain       string       `json:"domain"`
	QualityScore int          `json:"quality_score"`
	Contact      *ContactInfo `json:"contact_info,omitempty"`
	// IsExample marks synthetic filler records produced when no real
	// source could satisfy the request. Consumers must keep these
	// distinguishable from genuine data.
	IsExample bool      `json:"is_example"`
	CreatedAt time.Time `json:"created_at"`
}

// Host returns the lead's link host with any leading "www." stripped.
func (l *Lead) Host() string {
	u, err := url.Parse(l.Link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
