package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var indexerEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "search_indexer_events_total",
		Help: "Product events applied to the search index by type and result.",
	},
	[]string{"type", "result"},
)
