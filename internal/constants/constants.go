package constants

import "time"

const (
	AppName = "balance-checker"

	NativeAddr = "0x0000000000000000000000000000000000000000"

	// BalanceCacheTTL is how long an aggregated snapshot is served before it is recomputed.
	BalanceCacheTTL      = 60 * time.Second
	BalanceCacheCapacity = 10000

	// BalanceQueryTimeout bounds a single upstream query; expiry fails that asset only.
	BalanceQueryTimeout = 10 * time.Second

	MetricsNamespace = "balance_checker"
)
