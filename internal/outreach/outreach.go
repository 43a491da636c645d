// Package outreach drafts personalized first-contact emails from leads.
// Drafts are template output only; nothing here sends mail.
package outreach

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/FranksOps/prospector/internal/leads"
)

// Draft is one generated email, ready for human review.
type Draft struct {
	To      string
	Subject string
	Body    string
}

// Sender identifies the person the draft is written as.
type Sender struct {
	Name    string
	Title   string
	Contact string
	// Service is the offering pitched in the draft, e.g. "web design".
	Service string
}

// Personalizer produces an outreach draft for one lead.
type Personalizer interface {
	Personalize(lead *leads.Lead, sender Sender) (*Draft, error)
}

// templateContext is what the subject and body templates render against.
type templateContext struct {
	Name         string
	BusinessName string
	Industry     string
	Platform     string
	Link         string
	Sender       Sender
}

// DefaultSubject and DefaultBody are the built-in first-touch templates.
const (
	DefaultSubject = `A thought on {{.BusinessName}}'s online presence`

	DefaultBody = `Hi {{.Name}},

I came across {{.BusinessName}}{{if .Platform}} on {{.Platform}}{{end}} and was impressed by your work{{if .Industry}} in the {{.Industry}} space{{end}}.

I work with businesses like yours on {{.Sender.Service}}, and I saw a few opportunities that could make a real difference for you.

Would you be open to a quick call this week?

Best regards,
{{.Sender.Name}}
{{.Sender.Title}}
{{.Sender.Contact}}
`
)

// TemplatePersonalizer renders subject and body templates per lead.
type TemplatePersonalizer struct {
	subject *template.Template
	body    *template.Template
	// Industry provides the {{.Industry}} value, usually the search
	// keywords that produced the lead.
	Industry string
}

var _ Personalizer = (*TemplatePersonalizer)(nil)

// New parses the given subject and body templates; empty strings select
// the built-in defaults.
func New(subject, body string) (*TemplatePersonalizer, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if body == "" {
		body = DefaultBody
	}

	subjectTmpl, err := template.New("subject").Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("outreach: parse subject template: %w", err)
	}
	bodyTmpl, err := template.New("body").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("outreach: parse body template: %w", err)
	}
	return &TemplatePersonalizer{subject: subjectTmpl, body: bodyTmpl}, nil
}

// Personalize renders a draft for the lead. Example leads are refused:
// a fake contact must never end up with a real email in an outbox.
func (p *TemplatePersonalizer) Personalize(lead *leads.Lead, sender Sender) (*Draft, error) {
	if lead == nil {
		return nil, fmt.Errorf("outreach: nil lead")
	}
	if lead.IsExample {
		return nil, fmt.Errorf("outreach: refusing to draft email for example lead %s", lead.ID)
	}

	ctx := templateContext{
		Name:         greetingName(lead),
		BusinessName: businessName(lead),
		Industry:     p.Industry,
		Platform:     platformName(lead.Source),
		Link:         lead.Link,
		Sender:       sender,
	}

	var subject, body strings.Builder
	if err := p.subject.Execute(&subject, ctx); err != nil {
		return nil, fmt.Errorf("outreach: render subject: %w", err)
	}
	if err := p.body.Execute(&body, ctx); err != nil {
		return nil, fmt.Errorf("outreach: render body: %w", err)
	}

	return &Draft{
		To:      bestEmail(lead),
		Subject: strings.TrimSpace(subject.String()),
		Body:    body.String(),
	}, nil
}

// bestEmail prefers extracted addresses over heuristic guesses and
// returns empty when the lead has no address at all.
func bestEmail(lead *leads.Lead) string {
	if lead.Contact == nil {
		return ""
	}
	fallback := ""
	for _, e := range lead.Contact.Emails {
		if e.Confidence == leads.ConfidenceExtracted {
			return e.Address
		}
		if fallback == "" {
			fallback = e.Address
		}
	}
	return fallback
}

func greetingName(lead *leads.Lead) string {
	if lead.PersonName != "" {
		// First name only reads warmer.
		if first, _, ok := strings.Cut(lead.PersonName, " "); ok {
			return first
		}
		return lead.PersonName
	}
	if lead.BusinessName != "" {
		return lead.BusinessName + " team"
	}
	return "there"
}

func businessName(lead *leads.Lead) string {
	if lead.BusinessName != "" {
		return lead.BusinessName
	}
	if lead.Domain != "" {
		return lead.Domain
	}
	return "your business"
}

func platformName(source string) string {
	switch source {
	case "linkedin":
		return "LinkedIn"
	case "twitter":
		return "Twitter"
	case "instagram":
		return "Instagram"
	default:
		return ""
	}
}
