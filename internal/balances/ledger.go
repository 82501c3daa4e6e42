package balances

import (
	"context"
	"math/big"
)

// Ledger reads balances from the upstream node. Implementations must be safe
// for concurrent use; any transport or contract problem is returned as an error.
type Ledger interface {
	NativeBalance(ctx context.Context, address string) (*big.Int, error)
	TokenBalance(ctx context.Context, contract string, address string) (*big.Int, error)
}
