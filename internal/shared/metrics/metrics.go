package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

var (
	registry = prometheus.NewRegistry()

	analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_analyses_total",
		Help: "Total contract analysis requests by outcome",
	}, []string{"outcome"})

	analysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "contract_analysis_duration_seconds",
		Help:    "End-to-end contract analysis duration in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 90},
	})

	llmRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_requests_total",
		Help: "Total upstream AI requests by pipeline stage and outcome",
	}, []string{"stage", "outcome"})
)

func init() {
	registry.MustRegister(
		analysesTotal,
		analysisDuration,
		llmRequestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncAnalysis increments the analysis counter for outcome.
func IncAnalysis(outcome string) {
	analysesTotal.WithLabelValues(outcome).Inc()
}

// ObserveAnalysisDuration records an end-to-end analysis duration.
func ObserveAnalysisDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	analysisDuration.Observe(d.Seconds())
}

// IncLLMRequest increments the upstream AI request counter.
func IncLLMRequest(stage, outcome string) {
	llmRequestsTotal.WithLabelValues(stage, outcome).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
