package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(inventoryOpsTotal, mediaUploadsTotal, mediaUploadBytes, mediaOrphansTotal)
}

var (
	inventoryOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_operations_total",
			Help: "Vehicle listing operations by kind and outcome.",
		},
		[]string{"op", "result"}, // op: create|update|delete
	)

	mediaUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Uploaded media files by kind and outcome.",
		},
		[]string{"kind", "result"}, // kind: image|video|other
	)

	mediaUploadBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_upload_bytes",
			Help:    "Size of stored media objects in bytes.",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
		},
		[]string{"kind"},
	)

	mediaOrphansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "media_orphans_total",
			Help: "Media objects left in storage after a failed delete.",
		},
	)
)

func IncInventoryOp(op, result string) {
	inventoryOpsTotal.WithLabelValues(norm(op), norm(result)).Inc()
}

func ObserveMediaUpload(kind, result string, bytes int) {
	mediaUploadsTotal.WithLabelValues(norm(kind), norm(result)).Inc()
	if result == "ok" {
		mediaUploadBytes.WithLabelValues(norm(kind)).Observe(float64(bytes))
	}
}

func AddMediaOrphans(n int) {
	mediaOrphansTotal.Add(float64(n))
}
