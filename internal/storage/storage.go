// Package storage persists leads across runs. Backends share one
// interface so the exporter and the query commands do not care whether
// leads land in a flat file or a database.
package storage

import (
	"context"
	"time"

	"github.com/FranksOps/prospector/internal/leads"
)

// Filter narrows a lead query. Zero values mean "no constraint".
type Filter struct {
	Source     string
	Domain     string
	MinQuality int
	IsPerson   *bool
	// IncludeExamples admits synthetic filler records; they are excluded
	// by default so exports never silently mix fake contacts in.
	IncludeExamples bool
	Since           *time.Time
	Limit           int
	Offset          int
}

// Matches reports whether the lead satisfies every set constraint.
// Limit and Offset are the caller's concern.
func (f Filter) Matches(l *leads.Lead) bool {
	if f.Source != "" && l.Source != f.Source {
		return false
	}
	if f.Domain != "" && l.Domain != f.Domain {
		return false
	}
	if l.QualityScore < f.MinQuality {
		return false
	}
	if f.IsPerson != nil && l.IsPerson != *f.IsPerson {
		return false
	}
	if !f.IncludeExamples && l.IsExample {
		return false
	}
	if f.Since != nil && l.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// Backend stores and queries leads.
type Backend interface {
	Save(ctx context.Context, lead *leads.Lead) error
	Query(ctx context.Context, filter Filter) ([]*leads.Lead, error)
	Close() error
}

// SaveAll persists a result set, stopping at the first error.
func SaveAll(ctx context.Context, b Backend, list []leads.Lead) error {
	for i := range list {
		if err := b.Save(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}
