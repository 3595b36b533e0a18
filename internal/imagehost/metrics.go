package imagehost

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deleteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_host_delete_requests_total",
			Help: "Bulk delete calls made to the image host, by outcome.",
		},
		[]string{"provider", "outcome"},
	)

	assetsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_host_assets_total",
			Help: "Assets named in delete calls, by the status the host reported.",
		},
		[]string{"provider", "status"},
	)
)
