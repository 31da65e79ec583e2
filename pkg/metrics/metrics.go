package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts served requests by route template and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wtyczki_http_requests_total",
		Help: "Served HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// AuthFailures counts rejected credential resolutions by path
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wtyczki_auth_failures_total",
		Help: "Rejected credential resolutions by credential kind",
	}, []string{"kind"})

	// TokensConsumed counts tokens debited by the ledger
	TokensConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wtyczki_tokens_consumed_total",
		Help: "Tokens debited from user balances",
	})

	// TokensPurchased counts tokens credited by completed purchases
	TokensPurchased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wtyczki_tokens_purchased_total",
		Help: "Tokens credited to user balances",
	})

	// InsufficientBalanceRejections counts debits refused for lack of tokens
	InsufficientBalanceRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wtyczki_insufficient_balance_total",
		Help: "Ledger debits rejected for insufficient balance",
	})

	// DuplicateActions counts idempotent ledger replays
	DuplicateActions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wtyczki_duplicate_actions_total",
		Help: "Ledger debits short-circuited by a previously recorded action",
	})

	// AccountDeletions counts completed account deletions
	AccountDeletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wtyczki_account_deletions_total",
		Help: "Completed account deletion workflows",
	})

	// BillingCleanupFailures counts best-effort billing deletions that failed
	BillingCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wtyczki_billing_cleanup_failures_total",
		Help: "External billing customer deletions that failed during account deletion",
	})
)
