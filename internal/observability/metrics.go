// Package observability exposes Prometheus metrics for the console.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts directory searches by result ("ok", "error").
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mannaz_searches_total",
			Help: "Total number of directory searches issued after debounce",
		},
		[]string{"result"},
	)

	// ProfileFetchesTotal counts profile fetches by result ("ok", "error").
	ProfileFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mannaz_profile_fetches_total",
			Help: "Total number of profile detail fetches",
		},
		[]string{"result"},
	)

	// CacheLookupsTotal counts detail cache lookups by outcome ("hit", "miss").
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mannaz_detail_cache_lookups_total",
			Help: "Total number of detail cache lookups on profile activation",
		},
		[]string{"outcome"},
	)

	// SSEClients tracks connected event-stream clients.
	SSEClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mannaz_sse_clients",
			Help: "Current number of connected SSE clients",
		},
	)
)
