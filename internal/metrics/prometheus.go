package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	cohortTotal   *prom.CounterVec
	cohortSeconds *prom.HistogramVec
	dataQuality   *prom.CounterVec
	cache         *prom.CounterVec
	external      *prom.CounterVec
}

func (p *promRecorder) IncCohortOp(op string, success bool) {
	p.cohortTotal.WithLabelValues(op, strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveCohortOpSeconds(op string, success bool, seconds float64) {
	p.cohortSeconds.WithLabelValues(op, strconv.FormatBool(success)).Observe(seconds)
}

func (p *promRecorder) IncDataQualityIssue(kind string) {
	p.dataQuality.WithLabelValues(kind).Inc()
}

func (p *promRecorder) IncEmbeddingCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cache.WithLabelValues(result).Inc()
}

func (p *promRecorder) IncExternalCall(service string, success bool) {
	p.external.WithLabelValues(service, strconv.FormatBool(success)).Inc()
}

// EnablePrometheus installs a Prometheus recorder on a fresh registry and
// returns the handler that serves it.
func EnablePrometheus() http.Handler {
	registry := prom.NewRegistry()
	p := &promRecorder{
		cohortTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "cohort_ops_total",
			Help: "Total number of cohort engine operations",
		}, []string{"op", "success"}),
		cohortSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "cohort_op_seconds",
			Help:    "Cohort engine operation duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"op", "success"}),
		dataQuality: prom.NewCounterVec(prom.CounterOpts{
			Name: "data_quality_issues_total",
			Help: "Rows skipped or excluded because of data quality problems",
		}, []string{"kind"}),
		cache: prom.NewCounterVec(prom.CounterOpts{
			Name: "embedding_cache_requests_total",
			Help: "Embedding cache lookups by result",
		}, []string{"result"}),
		external: prom.NewCounterVec(prom.CounterOpts{
			Name: "external_calls_total",
			Help: "Calls to external model services",
		}, []string{"service", "success"}),
	}

	registry.MustRegister(p.cohortTotal, p.cohortSeconds, p.dataQuality, p.cache, p.external)
	SetRecorder(p)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
