package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/FranksOps/prospector/internal/fetch"
	"github.com/FranksOps/prospector/internal/leads"
)

// DirectSearch scrapes a search-results page over plain HTTP. It is the
// fallback when neither a browser profile nor an API key is available;
// easiest to block, but it needs no configuration at all.
type DirectSearch struct {
	Fetcher *fetch.Fetcher
	Logger  *slog.Logger
}

func (d *DirectSearch) Name() string { return "direct" }

func (d *DirectSearch) Available() bool { return d.Fetcher != nil }

func (d *DirectSearch) Search(ctx context.Context, query string, limit int) ([]leads.Lead, error) {
	result, err := d.Fetcher.Fetch(ctx, serpURL(query))
	if err != nil {
		return nil, fmt.Errorf("source: direct search: %w", err)
	}
	if result.Blocked {
		return nil, fmt.Errorf("direct search blocked by %s: %w", result.BlockSource, ErrBlocked)
	}
	if !result.OK() {
		return nil, fmt.Errorf("source: direct search failed: status=%d %s", result.StatusCode, result.Error)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		return nil, fmt.Errorf("source: direct parse: %w", err)
	}

	results := parseSERP(doc, d.Name(), limit)
	if d.Logger != nil {
		d.Logger.Debug("direct search done", "results", len(results))
	}
	return results, nil
}
