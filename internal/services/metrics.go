package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for SearchMetrics.Queries.
const (
	OutcomeSuccess     = "success"
	OutcomeEncodeError = "encode_error"
	OutcomeRPCError    = "rpc_error"
	OutcomeDecodeError = "decode_error"
)

// SearchMetrics are the prometheus collectors of the search service.
type SearchMetrics struct {
	Queries      *prometheus.CounterVec
	CallDuration prometheus.Histogram
	Results      prometheus.Counter
	Tokens       prometheus.Counter
}

// NewSearchMetrics registers the search collectors on reg.
func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	factory := promauto.With(reg)
	return &SearchMetrics{
		Queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collection_search",
			Name:      "queries_total",
			Help:      "findByOwner queries by outcome.",
		}, []string{"outcome"}),
		CallDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "collection_search",
			Name:      "call_duration_seconds",
			Help:      "Latency of the eth_call carrying a findByOwner query.",
			Buckets:   prometheus.DefBuckets,
		}),
		Results: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "collection_search",
			Name:      "results_total",
			Help:      "Collection results decoded from findByOwner responses.",
		}),
		Tokens: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "collection_search",
			Name:      "tokens_total",
			Help:      "Token records decoded from findByOwner responses.",
		}),
	}
}
