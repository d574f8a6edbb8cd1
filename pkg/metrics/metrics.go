// Package metrics implements the observability hooks with Prometheus
// collectors and exposes an HTTP handler for scraping.
//
// main registers a Metrics value as every hook category:
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	m.Install()
package metrics

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/observability"
)

const namespace = "shortword"

// Metrics holds all Prometheus collectors for shortword.
type Metrics struct {
	BuildsTotal         *prometheus.CounterVec
	BuildDuration       prometheus.Histogram
	BuildRounds         prometheus.Counter
	TableChanges        prometheus.Counter
	ImproveDuration     prometheus.Histogram
	WordLimit           prometheus.Gauge
	SearchesTotal       *prometheus.CounterVec
	SearchDuration      *prometheus.HistogramVec
	SearchWordLength    *prometheus.HistogramVec
	SearchSteps         *prometheus.HistogramVec
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	CacheWriteBytes     *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "builds_total",
				Help:      "Table build runs by outcome (ok, exhausted, canceled, error).",
			},
			[]string{"outcome"},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "build_duration_seconds",
				Help:      "Wall time of a table build run.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
		),
		BuildRounds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "build_rounds_total",
				Help:      "Sequence elements processed by table builds.",
			},
		),
		TableChanges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "table_changes_total",
				Help:      "Table cells inserted or replaced by a shorter word.",
			},
		),
		ImproveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "improve_duration_seconds",
				Help:      "Duration of one improvement and orbit-fill pass.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		WordLimit: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "word_limit",
				Help:      "Current word-length limit of the most recent build.",
			},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Factorizations by kind and error code.",
			},
			[]string{"kind", "code"},
		),
		SearchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Factorization latency in seconds.",
				Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"kind"},
		),
		SearchWordLength: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_word_length",
				Help:      "Length of successful factorizations.",
				Buckets:   prometheus.LinearBuckets(0, 10, 15),
			},
			[]string{"kind"},
		),
		SearchSteps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_steps",
				Help:      "States expanded per factorization.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"kind"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Cache hits by key type.",
			},
			[]string{"key_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Cache misses by key type.",
			},
			[]string{"key_type"},
		),
		CacheWriteBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_write_bytes_total",
				Help:      "Bytes written to the cache by key type.",
			},
			[]string{"key_type"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "HTTP requests currently being processed.",
			},
		),
	}

	reg.MustRegister(
		m.BuildsTotal,
		m.BuildDuration,
		m.BuildRounds,
		m.TableChanges,
		m.ImproveDuration,
		m.WordLimit,
		m.SearchesTotal,
		m.SearchDuration,
		m.SearchWordLength,
		m.SearchSteps,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheWriteBytes,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPInFlight,
	)
	return m
}

// Install registers m for every observability hook category.
func (m *Metrics) Install() {
	observability.SetBuildHooks(m)
	observability.SetSearchHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler returns the scrape handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// OnBuildStart implements observability.BuildHooks.
func (m *Metrics) OnBuildStart(context.Context, int, int) {}

// OnImprove implements observability.BuildHooks.
func (m *Metrics) OnImprove(_ context.Context, limit, _ int, d time.Duration) {
	m.ImproveDuration.Observe(d.Seconds())
	m.WordLimit.Set(float64(limit))
}

// OnBuildComplete implements observability.BuildHooks.
func (m *Metrics) OnBuildComplete(_ context.Context, rounds, changes int, d time.Duration, err error) {
	m.BuildsTotal.WithLabelValues(outcome(err)).Inc()
	m.BuildDuration.Observe(d.Seconds())
	m.BuildRounds.Add(float64(rounds))
	m.TableChanges.Add(float64(changes))
}

// OnSearchComplete implements observability.SearchHooks.
func (m *Metrics) OnSearchComplete(_ context.Context, kind string, wordLen, steps int, d time.Duration, err error) {
	code := "ok"
	if err != nil {
		code = string(errors.GetCode(err))
		if code == "" {
			code = "error"
		}
	}
	m.SearchesTotal.WithLabelValues(kind, code).Inc()
	m.SearchDuration.WithLabelValues(kind).Observe(d.Seconds())
	m.SearchSteps.WithLabelValues(kind).Observe(float64(steps))
	if err == nil {
		m.SearchWordLength.WithLabelValues(kind).Observe(float64(wordLen))
	}
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheWriteBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (m *Metrics) OnRequest(context.Context, string, string) {
	m.HTTPInFlight.Inc()
}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.HTTPInFlight.Dec()
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, errors.ErrCodeExhausted):
		return "exhausted"
	default:
		return "error"
	}
}

var (
	_ observability.BuildHooks  = (*Metrics)(nil)
	_ observability.SearchHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)
