package carrier

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var carrierRequestDurationHist = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "carrier_request_duration_seconds",
	Help:    "Duration of calls to the telephony carrier.",
	Buckets: prometheus.DefBuckets,
}, []string{"carrier", "operation", "outcome"})

// observe is deferred with a pointer to the caller's named error result.
func observe(carrier, operation string, start time.Time, err *error) {
	outcome := "success"
	if *err != nil {
		outcome = "error"
	}
	carrierRequestDurationHist.WithLabelValues(carrier, operation, outcome).Observe(time.Since(start).Seconds())
}
