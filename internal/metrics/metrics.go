package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamgate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "streamgate_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)

	// Token issuer metrics
	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamgate_tokens_issued_total",
			Help: "Total number of video access tokens issued",
		},
		[]string{"operation", "result"},
	)

	// Stream proxy metrics
	StreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamgate_stream_requests_total",
			Help: "Total number of proxied asset requests",
		},
		[]string{"type", "result"},
	)
	StreamBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streamgate_stream_bytes_total",
			Help: "Total bytes streamed from origin to clients",
		},
	)
)

var registerOnce sync.Once

// Register installs all collectors into the default registry.
// Safe to call more than once, tests and the app may both do it.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			TokensIssuedTotal,
			StreamRequestsTotal,
			StreamBytesTotal,
		)
	})
}
