package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardadmin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boardadmin_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	AttachmentsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardadmin_attachments_stored_total",
		Help: "Attachments written to storage and recorded",
	})

	AttachmentsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardadmin_attachments_deleted_total",
		Help: "Attachments removed from storage and database",
	})

	AttachmentSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "boardadmin_attachment_size_bytes",
		Help:    "Size of stored attachments",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB .. 256MB
	})

	AttachmentErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardadmin_attachment_errors_total",
			Help: "Attachment operation failures by operation and kind",
		},
		[]string{"operation", "kind"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardadmin_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"bucket"},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardadmin_emails_sent_total",
			Help: "Outgoing emails by result",
		},
		[]string{"result"},
	)
)

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
