package assets

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// AssetBalance is one resolved balance. Raw is the integer amount in base units.
type AssetBalance struct {
	Symbol    Symbol `json:"symbol"`
	Raw       string `json:"balance"`
	Decimals  uint8  `json:"decimals"`
	Formatted string `json:"formattedBalance"`
}

func NewAssetBalance(symbol Symbol, raw *big.Int, decimals uint8) AssetBalance {
	return AssetBalance{
		Symbol:    symbol,
		Raw:       raw.String(),
		Decimals:  decimals,
		Formatted: FormatUnits(raw, decimals),
	}
}

// FormatUnits divides amount by 10^decimals without rounding and drops
// trailing fractional zeros.
//
// Examples:
//
//	amount=1000000000000000000, decimals=18 -> "1"
//	amount=2500000, decimals=6 -> "2.5"
//	amount=1, decimals=18 -> "0.000000000000000001"
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}
