package reaper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reapedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "image_reaper_assets_total",
		Help: "Orphaned image ids handled by the reaper, by result.",
	},
	[]string{"result"},
)
