// Package fetch performs single-page HTTP fetches with the evasion
// measures the lead sources require: TLS fingerprinting, User-Agent
// rotation, proxy rotation, rate limiting and bot-block classification.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FranksOps/prospector/internal/bypass"
	"github.com/FranksOps/prospector/internal/fingerprint"
	"github.com/FranksOps/prospector/internal/metrics"
	"github.com/FranksOps/prospector/pkg/httpclient"
	"github.com/FranksOps/prospector/pkg/proxy"
	"github.com/FranksOps/prospector/pkg/ratelimit"
	"github.com/FranksOps/prospector/pkg/useragent"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// Result is the outcome of a single page fetch. A non-empty Error means
// the request never produced an HTTP response; Blocked means a response
// arrived but an anti-automation defense intercepted it.
type Result struct {
	URL         string
	FinalURL    string
	StatusCode  int
	Headers     http.Header
	Body        []byte
	Duration    time.Duration
	Blocked     bool
	BlockSource string // e.g. "CAPTCHA", "Cloudflare", "LoginWall"
	Error       string
}

// OK reports whether the fetch produced a usable 2xx page.
func (r *Result) OK() bool {
	return r != nil && r.Error == "" && !r.Blocked &&
		r.StatusCode >= 200 && r.StatusCode < 300
}

// Config configures a Fetcher.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	UseCookieJar bool
	ProxyPool    *proxy.Pool
	UAPool       *useragent.Pool
	Fingerprint  fingerprint.Profile
	Limiter      *ratelimit.Limiter
	// Referer is sent with every request; search-engine referers make
	// site fetches look like organic click-throughs.
	Referer string
}

// Fetcher performs GET fetches using the configured bypass strategies.
// A single client is held across requests so cookie jars persist.
type Fetcher struct {
	config    Config
	client    *httpclient.Client
	detectors []bypass.Detector
}

// New initializes a Fetcher with the given configuration.
func New(cfg Config) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}

	// The proxy function reads from the request context so the pool can
	// rotate per request without rebuilding the transport.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		if req.URL.Hostname() == "127.0.0.1" || req.URL.Hostname() == "localhost" {
			return nil, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("fetch: failed to setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch: failed to create client: %w", err)
	}

	return &Fetcher{
		config:    cfg,
		client:    client,
		detectors: bypass.DefaultDetectors(),
	}, nil
}

// Fetch executes a GET request against targetURL. Transport-level failures
// are reported in Result.Error rather than as a returned error so callers
// can treat them as a degraded source, not a pipeline fault.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Result, error) {
	if f.config.Limiter != nil {
		if err := f.config.Limiter.Wait(ctx); err != nil {
			return &Result{
				URL:   targetURL,
				Error: fmt.Sprintf("rate limiter failed: %v", err),
			}, nil
		}
	}

	start := time.Now()
	result := &Result{URL: targetURL}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		activeProxy = f.config.ProxyPool.Next()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		result.Duration = time.Since(start)
		return result, nil
	}

	if activeProxy != nil {
		req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
	}

	req.Header.Set("User-Agent", f.config.UAPool.GetRandom())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if f.config.Referer != "" {
		req.Header.Set("Referer", f.config.Referer)
	}

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.MarkFailure(activeProxy)
			metrics.ProxyFailures.WithLabelValues(activeProxy.String()).Inc()
		}
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Duration = time.Since(start)
		metrics.RecordFetch(hostOf(targetURL), result.StatusCode, result.Error, false, "", result.Duration, 0)
		return result, nil
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.config.ProxyPool.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read body: %v", err)
	}

	result.StatusCode = resp.StatusCode
	result.Headers = resp.Header
	result.Body = body
	result.Duration = time.Since(start)
	if resp.Request != nil && resp.Request.URL != nil {
		result.FinalURL = resp.Request.URL.String()
	}

	result.Blocked, result.BlockSource = bypass.Detect(result.StatusCode, result.Headers, result.Body, f.detectors)

	metrics.RecordFetch(hostOf(targetURL), result.StatusCode, result.Error, result.Blocked, result.BlockSource, result.Duration, len(result.Body))

	return result, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
