package balances

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantumauth-io/balance-checker/internal/assets"
)

func TestNewSnapshot_NormalizesAddress(t *testing.T) {
	snap := NewSnapshot(" 0x52908400098527886E0F7030069857D2E4169EE7 ", time.Now())
	assert.Equal(t, "0x52908400098527886e0f7030069857d2e4169ee7", snap.Address())
}

func TestSnapshot_BalancesReturnsCopy(t *testing.T) {
	snap := NewSnapshot(testAddress, time.Now(),
		assets.AssetBalance{Symbol: assets.ETH, Raw: "1", Decimals: 18, Formatted: "0.000000000000000001"},
	)

	held := snap.Balances()
	delete(held, assets.ETH)
	held[assets.USDC] = assets.AssetBalance{Symbol: assets.USDC}

	assert.Equal(t, 1, snap.Len())
	_, ok := snap.Balance(assets.ETH)
	assert.True(t, ok)
	_, ok = snap.Balance(assets.USDC)
	assert.False(t, ok)
}

func TestSnapshot_ZeroValue(t *testing.T) {
	assert.True(t, Snapshot{}.IsZero())
	assert.False(t, NewSnapshot(testAddress, time.Now()).IsZero())
}
