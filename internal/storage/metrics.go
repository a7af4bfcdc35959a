package storage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	storeSQLite  = "sqlite"
	storeMongoDB = "mongodb"
)

var storeOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "arteesan_store_operation_duration_seconds",
		Help:    "Duration of document store operations",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"store", "operation"},
)

func observeOperation(store, operation string, start time.Time) {
	storeOperationDuration.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
}
