package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/FranksOps/prospector/internal/leads"
)

// KeyedSearch wraps an API-key-backed search provider. It is the most
// reliable source when a key is configured and is skipped entirely when
// one is not.
type KeyedSearch struct {
	Client KeyedClient
	Logger *slog.Logger
}

func (k *KeyedSearch) Name() string {
	if k.Client != nil {
		return k.Client.Name()
	}
	return "keyed"
}

func (k *KeyedSearch) Available() bool { return k.Client != nil }

func (k *KeyedSearch) Search(ctx context.Context, query string, limit int) ([]leads.Lead, error) {
	if k.Client == nil {
		return nil, fmt.Errorf("source: no keyed search client configured")
	}

	hits, err := k.Client.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("source: keyed search: %w", err)
	}

	results := make([]leads.Lead, 0, len(hits))
	for _, h := range hits {
		if h.Link == "" {
			continue
		}
		source := h.Source
		if source == "" {
			source = k.Name()
		}
		results = append(results, newLead(source, h.Title, h.Link, h.Snippet))
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// SerpAPIClient queries the SerpAPI JSON endpoint. It is the stock
// KeyedClient; anything with the same response shape can be pointed at
// via Endpoint.
type SerpAPIClient struct {
	APIKey string
	// Endpoint defaults to https://serpapi.com/search.json.
	Endpoint string
	// HTTPClient defaults to a client with a 15s timeout.
	HTTPClient *http.Client
}

var _ KeyedClient = (*SerpAPIClient)(nil)

func (s *SerpAPIClient) Name() string { return "serpapi" }

func (s *SerpAPIClient) Search(ctx context.Context, query string, limit int) ([]KeyedResult, error) {
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = "https://serpapi.com/search.json"
	}
	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))
	params.Set("api_key", s.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("source: build api request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("source: api status %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("source: decode api response: %w", err)
	}

	hits := make([]KeyedResult, 0, len(payload.OrganicResults))
	for _, r := range payload.OrganicResults {
		hits = append(hits, KeyedResult{Title: r.Title, Link: r.Link, Snippet: r.Snippet, Source: s.Name()})
	}
	return hits, nil
}
