package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FranksOps/prospector/internal/enrich"
	"github.com/FranksOps/prospector/internal/fetch"
	"github.com/FranksOps/prospector/internal/leads"
	"github.com/FranksOps/prospector/internal/metrics"
	"github.com/FranksOps/prospector/internal/report"
	"github.com/FranksOps/prospector/internal/search"
	"github.com/FranksOps/prospector/internal/source"
	"github.com/FranksOps/prospector/internal/storage"
	"github.com/FranksOps/prospector/internal/storage/csvbackend"
	"github.com/FranksOps/prospector/internal/storage/jsonbackend"
	"github.com/FranksOps/prospector/internal/storage/postgres"
	"github.com/FranksOps/prospector/internal/storage/sqlite"
	"github.com/FranksOps/prospector/pkg/proxy"
	"github.com/FranksOps/prospector/pkg/ratelimit"
)

var searchCmd = &cobra.Command{
	Use:   "search <keywords>",
	Short: "Search for leads and optionally enrich them with contact info",
	Long: `Search for leads across the configured sources, score and rank
them, and write the results.

Examples:
  # Five general leads for dentists
  prospector search dentist

  # Social profiles with contact enrichment, saved to SQLite
  prospector search "web designer" --type social --enrich --store sqlite://leads.db

  # Ten business leads in London as CSV
  prospector search plumber --type business --location London --limit 10 --store csv://leads.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("platform", "", "restrict to a platform (e.g. linkedin, linkedin/twitter)")
	searchCmd.Flags().String("location", "", "location filter (e.g. 'New York')")
	searchCmd.Flags().String("type", "general", "search type: general, social, business or contact")
	searchCmd.Flags().Int("limit", 5, "maximum number of leads")
	searchCmd.Flags().Int("min-quality", 50, "minimum quality score (0-100)")
	searchCmd.Flags().Bool("enrich", false, "fetch contact info for each lead")
	searchCmd.Flags().Duration("timeout", 2*time.Minute, "overall deadline for the search")
	searchCmd.Flags().String("store", "", "persist leads: csv://path, ndjson://path, sqlite://path or postgres://dsn")
	searchCmd.Flags().String("report", "", "write a run summary: text, json or html")
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if port := viper.GetInt("metrics-port"); port > 0 {
		srv := metrics.Start(port)
		defer func() { _ = srv.Stop(context.Background()) }()
	}

	fetcher, err := buildFetcher(logger)
	if err != nil {
		return err
	}

	finder := search.New(search.Config{
		Keyed:     buildKeyed(logger),
		Platforms: buildPlatforms(fetcher, logger),
		Direct:    &source.DirectSearch{Fetcher: fetcher, Logger: logger},
		Fallback:  &source.CuratedFallback{Fetcher: fetcher, Logger: logger},
		Logger:    logger,
	})

	searchType, _ := cmd.Flags().GetString("type")
	platform, _ := cmd.Flags().GetString("platform")
	location, _ := cmd.Flags().GetString("location")
	limit, _ := cmd.Flags().GetInt("limit")
	minQuality, _ := cmd.Flags().GetInt("min-quality")

	query := leads.Query{
		Keywords:   args[0],
		Platform:   platform,
		Location:   location,
		Limit:      limit,
		MinQuality: minQuality,
		Type:       leads.SearchType(searchType),
	}

	results, err := finder.Find(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if doEnrich, _ := cmd.Flags().GetBool("enrich"); doEnrich {
		enricher := enrich.New(enrich.Config{Fetcher: fetcher, Logger: logger})
		for i := range results {
			enricher.Enrich(ctx, &results[i])
		}
	}

	if dest, _ := cmd.Flags().GetString("store"); dest != "" {
		if err := persist(ctx, dest, results); err != nil {
			return err
		}
	}

	if format, _ := cmd.Flags().GetString("report"); format != "" {
		if err := writeReport(format, query.Keywords, results); err != nil {
			return err
		}
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func buildFetcher(logger *slog.Logger) (*fetch.Fetcher, error) {
	cfg := fetch.Config{
		Timeout:      30 * time.Second,
		MaxRedirects: 5,
		UseCookieJar: true,
		Limiter:      ratelimit.NewLimiter(0.5, 0.5),
		Referer:      "https://www.google.com/",
	}

	if proxyFile := viper.GetString("proxy-file"); proxyFile != "" {
		pool := proxy.NewPool(proxy.Config{})
		if err := pool.LoadFile(proxyFile); err != nil {
			return nil, fmt.Errorf("load proxies: %w", err)
		}
		cfg.ProxyPool = pool
		logger.Info("proxy pool loaded", "file", proxyFile)
	}

	return fetch.New(cfg)
}

func buildKeyed(logger *slog.Logger) source.Adapter {
	apiKey := viper.GetString("api-key")
	if apiKey == "" {
		return nil
	}
	return &source.KeyedSearch{
		Client: &source.SerpAPIClient{APIKey: apiKey},
		Logger: logger,
	}
}

func buildPlatforms(fetcher *fetch.Fetcher, logger *slog.Logger) []source.Adapter {
	var adapters []source.Adapter
	for _, name := range source.Platforms() {
		p, err := source.NewPlatformSearch(name, fetcher, logger)
		if err != nil {
			continue
		}
		adapters = append(adapters, p)
	}
	return adapters
}

func persist(ctx context.Context, dest string, results []leads.Lead) error {
	backend, err := openBackend(ctx, dest)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := storage.SaveAll(ctx, backend, results); err != nil {
		return fmt.Errorf("persist leads: %w", err)
	}
	return nil
}

func openBackend(ctx context.Context, dest string) (storage.Backend, error) {
	switch {
	case len(dest) > 6 && dest[:6] == "csv://":
		return csvbackend.New(dest[6:])
	case len(dest) > 9 && dest[:9] == "ndjson://":
		return jsonbackend.New(dest[9:])
	case len(dest) > 9 && dest[:9] == "sqlite://":
		return sqlite.New(dest[9:])
	case len(dest) > 11 && dest[:11] == "postgres://":
		return postgres.New(ctx, dest)
	default:
		return nil, fmt.Errorf("unknown store destination %q (want csv://, ndjson://, sqlite:// or postgres://)", dest)
	}
}

func writeReport(format, keywords string, results []leads.Lead) error {
	summary := report.GenerateSummary(keywords, results)
	switch format {
	case "text":
		return report.WriteText(os.Stdout, summary)
	case "json":
		return report.WriteJSON(os.Stdout, summary)
	case "html":
		return report.WriteHTML(os.Stdout, summary)
	default:
		return fmt.Errorf("unknown report format %q (want text, json or html)", format)
	}
}
