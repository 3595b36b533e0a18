package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_image_cleanup_total",
		Help: "Image cleanups run by product deletes, by outcome.",
	},
	[]string{"outcome"},
)
