package listquery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// staleResponses — ответы, отброшенные из-за более нового запроса.
var staleResponses = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "uc_listquery_stale_responses_total",
		Help: "Ответы списка файлов, отброшенные как устаревшие.",
	},
)
