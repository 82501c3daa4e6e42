package service

import "github.com/quantumauth-io/balance-checker/internal/balances"

type TokenInfo struct {
	Balance          string `json:"balance"`
	Decimals         uint8  `json:"decimals"`
	FormattedBalance string `json:"formattedBalance"`
}

// BalanceResponse is the wire shape of one GetBalances result.
type BalanceResponse struct {
	Address   string               `json:"address"`
	TokenInfo map[string]TokenInfo `json:"tokenInfo"`
	Timestamp int64                `json:"timestamp"` // epoch millis of the snapshot
	Cached    bool                 `json:"cached"`
}

func NewBalanceResponse(snap balances.Snapshot, cached bool) BalanceResponse {
	held := snap.Balances()
	info := make(map[string]TokenInfo, len(held))
	for symbol, b := range held {
		info[symbol.String()] = TokenInfo{
			Balance:          b.Raw,
			Decimals:         b.Decimals,
			FormattedBalance: b.Formatted,
		}
	}
	return BalanceResponse{
		Address:   snap.Address(),
		TokenInfo: info,
		Timestamp: snap.ObservedAtMillis(),
		Cached:    cached,
	}
}
