// Package csvbackend stores leads as CSV rows, the format sales tooling
// imports most readily. Contact columns come first so a human skimming
// the file sees the actionable fields without scrolling.
package csvbackend

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/FranksOps/prospector/internal/leads"
	"github.com/FranksOps/prospector/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// headers defines the CSV column order: identity and contact fields
// first, provenance and bookkeeping last.
var headers = []string{
	"title",
	"name",
	"business_name",
	"emails",
	"phones",
	"link",
	"snippet",
	"source",
	"is_person",
	"domain",
	"quality_score",
	"address",
	"social_json",
	"is_example",
	"created_at",
	"id",
}

// New creates a CSV-backed storage.Backend, appending to filePath and
// writing the header row when the file is new.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("csvbackend: open: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("csvbackend: stat: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(headers); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: write header: %w", err)
		}
	}

	return &csvBackend{file: f}, nil
}

func (b *csvBackend) Save(ctx context.Context, lead *leads.Lead) error {
	record, err := toRecord(lead)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("csvbackend: seek: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write(record); err != nil {
		return fmt.Errorf("csvbackend: write: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csvbackend: write: %w", err)
	}
	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*leads.Lead, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("csvbackend: seek: %w", err)
	}

	r := csv.NewReader(b.file)
	r.FieldsPerRecord = len(headers)

	var results []*leads.Lead
	skipped := 0
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvbackend: read: %w", err)
		}
		if first {
			first = false
			continue
		}

		lead, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		if !filter.Matches(lead) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		results = append(results, lead)
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}
	return results, nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}

func toRecord(lead *leads.Lead) ([]string, error) {
	var emails, phones []string
	var address, socialJSON string
	if lead.Contact != nil {
		for _, e := range lead.Contact.Emails {
			emails = append(emails, e.Address+":"+string(e.Confidence))
		}
		phones = lead.Contact.Phones
		address = lead.Contact.Address
		if len(lead.Contact.Social) > 0 {
			raw, err := json.Marshal(lead.Contact.Social)
			if err != nil {
				return nil, fmt.Errorf("csvbackend: marshal social: %w", err)
			}
			socialJSON = string(raw)
		}
	}

	return []string{
		lead.Title,
		lead.PersonName,
		lead.BusinessName,
		strings.Join(emails, ";"),
		strings.Join(phones, ";"),
		lead.Link,
		lead.Snippet,
		lead.Source,
		strconv.FormatBool(lead.IsPerson),
		lead.Domain,
		strconv.Itoa(lead.QualityScore),
		address,
		socialJSON,
		strconv.FormatBool(lead.IsExample),
		lead.CreatedAt.Format(time.RFC3339Nano),
		lead.ID,
	}, nil
}

func fromRecord(record []string) (*leads.Lead, error) {
	isPerson, err := strconv.ParseBool(record[8])
	if err != nil {
		return nil, fmt.Errorf("csvbackend: parse is_person: %w", err)
	}
	quality, err := strconv.Atoi(record[10])
	if err != nil {
		return nil, fmt.Errorf("csvbackend: parse quality_score: %w", err)
	}
	isExample, err := strconv.ParseBool(record[13])
	if err != nil {
		return nil, fmt.Errorf("csvbackend: parse is_example: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, record[14])
	if err != nil {
		return nil, fmt.Errorf("csvbackend: parse created_at: %w", err)
	}

	lead := &leads.Lead{
		Title:        record[0],
		PersonName:   record[1],
		BusinessName: record[2],
		Link:         record[5],
		Snippet:      record[6],
		Source:       record[7],
		IsPerson:     isPerson,
		Domain:       record[9],
		QualityScore: quality,
		IsExample:    isExample,
		CreatedAt:    createdAt,
		ID:           record[15],
	}

	info := &leads.ContactInfo{Address: record[11]}
	for _, pair := range splitNonEmpty(record[3]) {
		addr, conf, ok := strings.Cut(pair, ":")
		if !ok {
			conf = string(leads.ConfidenceExtracted)
		}
		info.Emails = append(info.Emails, leads.Email{Address: addr, Confidence: leads.Confidence(conf)})
	}
	info.Phones = splitNonEmpty(record[4])
	if record[12] != "" {
		if err := json.Unmarshal([]byte(record[12]), &info.Social); err != nil {
			return nil, fmt.Errorf("csvbackend: unmarshal social: %w", err)
		}
	}
	if len(info.Emails) > 0 || len(info.Phones) > 0 || len(info.Social) > 0 || info.Address != "" {
		lead.Contact = info
	}

	return lead, nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}
