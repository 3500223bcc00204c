package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	numbersProvisionedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "numbers_provisioned_total",
			Help: "Phone numbers provisioned, by source (bank or carrier).",
		},
		[]string{"source"},
	)

	carrierPurchaseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrier_purchase_failures_total",
		Help: "Carrier purchases that failed and were skipped.",
	})

	provisioningDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "numbers",
			Name:      "provisioning_duration_seconds",
			Help:      "Duration of provisioning operations, carrier calls included.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation", "outcome"},
	)

	numbersReleasedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "numbers",
			Name:      "released_total",
			Help:      "Phone numbers leaving an account, by how (carrier, bank or test_mode) and outcome.",
		},
		[]string{"method", "outcome"},
	)
)

var releaseJobsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "numbers",
		Name:      "release_jobs_received_total",
		Help:      "Release jobs received from NATS.",
	},
	[]string{"subject"},
)
