package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// upstreamRequestsTotal — количество запросов к upload-API.
	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uc_upstream_requests_total",
			Help: "Количество запросов к upload-API.",
		},
		[]string{"operation", "status"},
	)

	// upstreamRequestDuration — длительность запросов к upload-API.
	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uc_upstream_request_duration_seconds",
			Help:    "Длительность запросов к upload-API в секундах.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// observe записывает метрики одного запроса. status 0 — сетевая ошибка.
func observe(operation string, status int, start time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	upstreamRequestsTotal.WithLabelValues(operation, label).Inc()
	upstreamRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
