// Package postgres stores leads in PostgreSQL for shared, multi-run
// deployments.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FranksOps/prospector/internal/leads"
	"github.com/FranksOps/prospector/internal/storage"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
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
	contact JSONB,
	is_example BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
CREATE INDEX IF NOT EXISTS idx_leads_quality ON leads(quality_score);
`

// New creates a Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: init schema: %w", err)
	}
	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, lead *leads.Lead) error {
	var contactJSON []byte
	if lead.Contact != nil {
		var err error
		contactJSON, err = json.Marshal(lead.Contact)
		if err != nil {
			return fmt.Errorf("postgres: marshal contact: %w", err)
		}
	}

	query := `
	INSERT INTO leads (
		id, title, business_name, person_name, link, snippet, source,
		is_person, domain, quality_score, contact, is_example, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO UPDATE SET
		quality_score = EXCLUDED.quality_score,
		contact = EXCLUDED.contact
	`
	_, err := b.pool.Exec(ctx, query,
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
		return fmt.Errorf("postgres: save lead: %w", err)
	}
	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*leads.Lead, error) {
	query := `SELECT id, title, business_name, person_name, link, snippet, source,
		is_person, domain, quality_score, contact, is_example, created_at
		FROM leads WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Source != "" {
		query += ` AND source = ` + arg(filter.Source)
	}
	if filter.Domain != "" {
		query += ` AND domain = ` + arg(filter.Domain)
	}
	if filter.MinQuality > 0 {
		query += ` AND quality_score >= ` + arg(filter.MinQuality)
	}
	if filter.IsPerson != nil {
		query += ` AND is_person = ` + arg(*filter.IsPerson)
	}
	if !filter.IncludeExamples {
		query += ` AND is_example = false`
	}
	if filter.Since != nil {
		query += ` AND created_at >= ` + arg(*filter.Since)
	}

	query += ` ORDER BY quality_score DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query leads: %w", err)
	}
	defer rows.Close()

	var results []*leads.Lead
	for rows.Next() {
		var l leads.Lead
		var contactJSON []byte
		err := rows.Scan(
			&l.ID, &l.Title, &l.BusinessName, &l.PersonName, &l.Link, &l.Snippet,
			&l.Source, &l.IsPerson, &l.Domain, &l.QualityScore, &contactJSON,
			&l.IsExample, &l.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan lead: %w", err)
		}
		if len(contactJSON) > 0 {
			l.Contact = &leads.ContactInfo{}
			if err := json.Unmarshal(contactJSON, l.Contact); err != nil {
				return nil, fmt.Errorf("postgres: unmarshal contact: %w", err)
			}
		}
		results = append(results, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate leads: %w", err)
	}
	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
