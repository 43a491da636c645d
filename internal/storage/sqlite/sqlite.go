// Package sqlite stores leads in an embedded SQLite database, the
// default when a single-user local archive is enough.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/FranksOps/prospector/internal/leads"
	"github.com/FranksOps/prospector/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	business_name TEXT,
	person_name TEXT,
	link TEXT NOT NULL,
	snippet TEXT,
	source TEXT NOT NULL,
	is_person BOOLEAN NOT NULL,
	domain TEXT,
	quality_score INTEGER NOT NULL,
	contact TEXT,
	is_example BOOLEAN NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
CREATE INDEX IF NOT EXISTS idx_leads_quality ON leads(quality_score);
`

// New creates a SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}
	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, lead *leads.Lead) error {
	contactJSON, err := marshalContact(lead.Contact)
	if err != nil {
		return err
	}

	query := `
	INSERT OR REPLACE INTO leads (
		id, title, business_name, person_name, link, snippet, source,
		is_person, domain, quality_score, contact, is_example, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = b.db.ExecContext(ctx, query,
		lead.ID,
		lead.Title,
		lead.BusinessName,
		lead.PersonName,
		lead.Link,
		lead.Snippet,
		lead.Source,
		lead.IsPerson,
		lead.Domain,
		lead.QualityScore,
		contactJSON,
		lead.IsExample,
		lead.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: save lead: %w", err)
	}
	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*leads.Lead, error) {
	query := `SELECT id, title, business_name, person_name, link, snippet, source,
		is_person, domain, quality_score, contact, is_example, created_at
		FROM leads WHERE 1=1`
	args := []any{}

	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	if filter.Domain != "" {
		query += ` AND domain = ?`
		args = append(args, filter.Domain)
	}
	if filter.MinQuality > 0 {
		query += ` AND quality_score >= ?`
		args = append(args, filter.MinQuality)
	}
	if filter.IsPerson != nil {
		query += ` AND is_person = ?`
		args = append(args, *filter.IsPerson)
	}
	if !filter.IncludeExamples {
		query += ` AND is_example = 0`
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY quality_score DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query leads: %w", err)
	}
	defer rows.Close()

	var results []*leads.Lead
	for rows.Next() {
		var l leads.Lead
		var contactJSON sql.NullString
		err := rows.Scan(
			&l.ID, &l.Title, &l.BusinessName, &l.PersonName, &l.Link, &l.Snippet,
			&l.Source, &l.IsPerson, &l.Domain, &l.QualityScore, &contactJSON,
			&l.IsExample, &l.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan lead: %w", err)
		}
		if l.Contact, err = unmarshalContact(contactJSON.String); err != nil {
			return nil, err
		}
		results = append(results, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate leads: %w", err)
	}
	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}

func marshalContact(info *leads.ContactInfo) (string, error) {
	if info == nil {
		return "", nil
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("sqlite: marshal contact: %w", err)
	}
	return string(raw), nil
}

func unmarshalContact(raw string) (*leads.ContactInfo, error) {
	if raw == "" {
		return nil, nil
	}
	var info leads.ContactInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal contact: %w", err)
	}
	return &info, nil
}
