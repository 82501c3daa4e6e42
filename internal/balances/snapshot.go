package balances

import (
	"strings"
	"time"

	"github.com/quantumauth-io/balance-checker/internal/assets"
)

// Snapshot is the point-in-time result of one aggregation. It is never
// mutated after NewSnapshot returns.
type Snapshot struct {
	address    string
	balances   map[assets.Symbol]assets.AssetBalance
	observedAt time.Time
}

func NewSnapshot(address string, observedAt time.Time, balances ...assets.AssetBalance) Snapshot {
	m := make(map[assets.Symbol]assets.AssetBalance, len(balances))
	for _, b := range balances {
		m[b.Symbol] = b
	}
	return Snapshot{
		address:    NormalizeAddress(address),
		balances:   m,
		observedAt: observedAt,
	}
}

func (s Snapshot) Address() string { return s.address }

func (s Snapshot) ObservedAt() time.Time { return s.observedAt }

func (s Snapshot) ObservedAtMillis() int64 { return s.observedAt.UnixMilli() }

func (s Snapshot) Len() int { return len(s.balances) }

func (s Snapshot) IsZero() bool { return s.balances == nil }

func (s Snapshot) Balance(symbol assets.Symbol) (assets.AssetBalance, bool) {
	b, ok := s.balances[symbol]
	return b, ok
}

// Balances returns a copy of the per-symbol balances.
func (s Snapshot) Balances() map[assets.Symbol]assets.AssetBalance {
	out := make(map[assets.Symbol]assets.AssetBalance, len(s.balances))
	for k, v := range s.balances {
		out[k] = v
	}
	return out
}

// NormalizeAddress is the case-insensitive canonical key for an address.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
