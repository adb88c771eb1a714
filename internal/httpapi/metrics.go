package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/winprob"
)

const namespace = "bidscout"

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	recommendations *prometheus.CounterVec
	evaluations     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Bid recommendations issued by verdict.",
		}, []string{"verdict"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Computed records by kind and bucket (relevance tier, risk level or pursuit decision).",
		}, []string{"kind", "bucket"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.recommendations,
		m.evaluations,
	)
	return m
}

// Handler serves the registry in the text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRequest(route, method string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) observeScore(score *procurement.RelevanceScore) {
	m.evaluations.WithLabelValues("relevance", string(score.Tier)).Inc()
}

func (m *Metrics) observeAssessment(assessment *procurement.RiskAssessment) {
	m.evaluations.WithLabelValues("risk", string(assessment.OverallLevel)).Inc()
}

func (m *Metrics) observeRecommendation(rec procurement.BidRecommendation) {
	m.recommendations.WithLabelValues(string(rec.Verdict)).Inc()
}

func (m *Metrics) observeWin(res *winprob.Result) {
	m.evaluations.WithLabelValues("win_probability", string(res.Pursuit)).Inc()
}
