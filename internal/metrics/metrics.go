package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_fetch_requests_total",
			Help: "Total number of page fetches executed",
		},
		[]string{"domain", "status", "blocked", "block_src"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prospector_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)

	FetchBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_fetch_bytes_total",
			Help: "Total bytes downloaded across all fetches",
		},
		[]string{"domain"},
	)

	ProxyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_proxy_failures_total",
			Help: "Total number of proxy failures during fetches",
		},
		[]string{"proxy_url"},
	)

	SourceSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_source_searches_total",
			Help: "Lead searches executed per source adapter",
		},
		[]string{"source", "outcome"},
	)

	LeadsReturnedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_leads_returned_total",
			Help: "Leads returned to callers, split by example vs genuine",
		},
		[]string{"example"},
	)
)

// RecordFetch updates the fetch metrics for one page load.
func RecordFetch(domain string, statusCode int, fetchErr string, blocked bool, blockSrc string, dur time.Duration, bytes int) {
	status := strconv.Itoa(statusCode)
	if fetchErr != "" {
		status = "error"
	}
	FetchRequestsTotal.WithLabelValues(domain, status, strconv.FormatBool(blocked), blockSrc).Inc()
	FetchDuration.WithLabelValues(domain).Observe(dur.Seconds())
	FetchBytesTotal.WithLabelValues(domain).Add(float64(bytes))
}

// RecordSearch updates the per-adapter search counter.
func RecordSearch(source string, err error, results int) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case results == 0:
		outcome = "empty"
	}
	SourceSearchesTotal.WithLabelValues(source, outcome).Inc()
}

// RecordLeads counts leads handed back to the caller.
func RecordLeads(genuine, example int) {
	LeadsReturnedTotal.WithLabelValues("false").Add(float64(genuine))
	LeadsReturnedTotal.WithLabelValues("true").Add(float64(example))
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
