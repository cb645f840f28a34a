package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "userdeck_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PolicyDecisions counts permission-policy evaluations and their outcome (allow|deny).
	PolicyDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "userdeck_policy_decisions_total",
			Help: "Total number of permission policy decisions",
		},
		[]string{"operation", "result"},
	)

	// DirectoryAccounts tracks the current number of accounts per role.
	DirectoryAccounts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "userdeck_directory_accounts",
			Help: "Number of accounts in the directory by role",
		},
		[]string{"role"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "userdeck_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
