// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitflow"

var (
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Sessions created.",
	})

	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_expired_total",
		Help:      "Idle sessions removed by the janitor.",
	})

	WalletConnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallet_connects_total",
		Help:      "Simulated wallet connections.",
	})

	SplitsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "splits_created_total",
		Help:      "Splits submitted from the create-split form.",
	})

	SplitRecipients = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "split_recipients",
		Help:      "Recipients kept per submitted split.",
		Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "code"})

	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "RPC latency by procedure and Connect code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure", "code"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method string, code int, elapsed time.Duration) {
	RequestDuration.WithLabelValues(method, strconv.Itoa(code)).Observe(elapsed.Seconds())
}

// ObserveRPC records one finished RPC. code is "ok" or a Connect code name.
func ObserveRPC(procedure, code string, elapsed time.Duration) {
	RPCDuration.WithLabelValues(procedure, code).Observe(elapsed.Seconds())
}
