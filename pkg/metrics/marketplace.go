package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of ledger-affecting operations, labeled by operation name
	LedgerOperationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketplace_ledger_operation_latency_seconds",
		Help:    "Latency of balance-affecting marketplace operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	TasksCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_tasks_created_total",
		Help: "Total number of tasks created",
	})

	SubmissionsApproved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_submissions_approved_total",
		Help: "Total number of submissions approved",
	})

	WithdrawalsApproved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_withdrawals_approved_total",
		Help: "Total number of withdrawals approved",
	})

	CoinsCredited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_coins_credited_total",
		Help: "Total coins credited to user balances",
	})

	CoinsDebited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_coins_debited_total",
		Help: "Total coins debited from user balances",
	})
)

func Init() {
	prometheus.MustRegister(
		LedgerOperationLatency,
		TasksCreated,
		SubmissionsApproved,
		WithdrawalsApproved,
		CoinsCredited,
		CoinsDebited,
	)
}
