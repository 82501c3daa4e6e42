package assets

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

// Symbol identifies one supported asset. The set is closed: adding an asset
// means declaring a constant here and a descriptor in DefaultRegistry.
type Symbol string

const (
	ETH  Symbol = "ETH"
	USDC Symbol = "USDC"
	LINK Symbol = "LINK"
)

func (s Symbol) String() string { return string(s) }

// AssetDescriptor says where an asset's balance lives and how to scale it.
// An empty Contract marks the native asset.
type AssetDescriptor struct {
	Symbol   Symbol `json:"symbol"`
	Contract string `json:"contract,omitempty"`
	Decimals uint8  `json:"decimals"`
}

func (d AssetDescriptor) IsNative() bool { return d.Contract == "" }

// Registry is an immutable, ordered table of asset descriptors.
type Registry struct {
	order  []Symbol
	bySymb map[Symbol]AssetDescriptor
}

// NewRegistry validates descriptors and freezes them in the given order.
func NewRegistry(descriptors ...AssetDescriptor) (*Registry, error) {
	if len(descriptors) == 0 {
		return nil, errors.New("assets: registry must not be empty")
	}

	r := &Registry{
		order:  make([]Symbol, 0, len(descriptors)),
		bySymb: make(map[Symbol]AssetDescriptor, len(descriptors)),
	}

	natives := 0
	for _, d := range descriptors {
		if strings.TrimSpace(string(d.Symbol)) == "" {
			return nil, errors.New("assets: empty symbol")
		}
		if _, dup := r.bySymb[d.Symbol]; dup {
			return nil, errors.Newf("assets: duplicate symbol %q", d.Symbol)
		}

		if d.IsNative() {
			natives++
		} else {
			if !strings.HasPrefix(d.Contract, "0x") || !common.IsHexAddress(d.Contract) {
				return nil, errors.Newf("assets: %s: invalid contract address %q", d.Symbol, d.Contract)
			}
			// checksummed canonical form
			d.Contract = common.HexToAddress(d.Contract).Hex()
		}

		r.order = append(r.order, d.Symbol)
		r.bySymb[d.Symbol] = d
	}
	if natives > 1 {
		return nil, errors.Newf("assets: %d native assets configured, want at most 1", natives)
	}

	return r, nil
}

// DefaultRegistry is the Ethereum mainnet table.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		AssetDescriptor{Symbol: ETH, Decimals: 18},
		AssetDescriptor{Symbol: USDC, Contract: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Decimals: 6},
		AssetDescriptor{Symbol: LINK, Contract: "0x514910771AF9Ca656af840dff83E8264EcF986CA", Decimals: 18},
	)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Describe(symbol Symbol) (AssetDescriptor, bool) {
	d, ok := r.bySymb[symbol]
	return d, ok
}

// AllSymbols returns the configured symbols in declaration order.
func (r *Registry) AllSymbols() []Symbol {
	out := make([]Symbol, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int { return len(r.order) }
