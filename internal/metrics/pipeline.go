// Package metrics defines Prometheus metrics for the ask pipeline, the model
// gateway, and the HTTP server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline and gateway Prometheus metrics.
var (
	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kotae",
			Name:      "gateway_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"model", "status"},
	)

	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kotae",
			Name:      "gateway_request_duration_seconds",
			Help:      "Chat completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	GatewayTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kotae",
			Name:      "gateway_tokens_total",
			Help:      "Total chat completion tokens consumed",
		},
		[]string{"model", "type"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kotae",
			Name:      "searches_total",
			Help:      "Total number of index searches",
		},
		[]string{"status"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kotae",
			Name:      "search_duration_seconds",
			Help:      "Index search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	AnswerCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kotae",
			Name:      "answer_cache_total",
			Help:      "Answer cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	IndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kotae",
			Name:      "index_documents",
			Help:      "Number of documents in the active index",
		},
	)

	IndexRebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kotae",
			Name:      "index_rebuilds_total",
			Help:      "Total number of index rebuilds",
		},
	)
)

var pipelineRegistered bool

// RegisterPipelineMetrics registers the pipeline metrics. Must be called once
// from main; CLI one-shot commands skip it.
func RegisterPipelineMetrics() {
	if pipelineRegistered {
		return
	}
	prometheus.MustRegister(GatewayRequestsTotal)
	prometheus.MustRegister(GatewayRequestDuration)
	prometheus.MustRegister(GatewayTokensTotal)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(AnswerCacheTotal)
	prometheus.MustRegister(IndexDocuments)
	prometheus.MustRegister(IndexRebuildsTotal)
	pipelineRegistered = true
}
