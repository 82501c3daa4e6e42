package chains

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/quantumauth-io/quantum-go-utils/retry"
)

const erc20BalanceOfABI = `[{"type":"function","name":"balanceOf","stateMutability":"view",` +
	`"inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}]`

var erc20ABI = mustParseABI(erc20BalanceOfABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// EVMReader is the minimal surface we need from the node client.
type EVMReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var _ EVMReader = (*ethclient.Client)(nil)

// revertedCode is the JSON-RPC error code geth uses for execution reverted.
const revertedCode = 3

// EVMLedger reads native and ERC-20 balances at the latest block.
type EVMLedger struct {
	reader EVMReader
	retry  func(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

type LedgerOption func(*EVMLedger)

// WithRetry retries transient node failures with a backoff growing from
// initial to max. Reverted calls are not retried. The caller's context bounds
// the total time spent.
func WithRetry(initial, max time.Duration) LedgerOption {
	return func(l *EVMLedger) {
		if initial <= 0 || max <= 0 {
			return
		}
		cfg := retry.DefaultConfig()
		cfg.InitialDelayBeforeRetrying = initial
		cfg.MaxDelayBeforeRetrying = max

		l.retry = func(ctx context.Context, name string, fn func(ctx context.Context) error) error {
			_, err := retry.Retry(ctx, cfg,
				func(ctx context.Context) ([]interface{}, error) {
					return nil, fn(ctx)
				},
				retryable,
				name)
			return err
		}
	}
}

func NewEVMLedger(reader EVMReader, opts ...LedgerOption) (*EVMLedger, error) {
	if reader == nil {
		return nil, errors.New("chains: eth client not initialized")
	}
	l := &EVMLedger{reader: reader}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// NativeBalance returns the ETH balance of address in wei.
func (l *EVMLedger) NativeBalance(ctx context.Context, address string) (*big.Int, error) {
	owner, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	var wei *big.Int
	err = l.call(ctx, "native balance", func(ctx context.Context) error {
		var callErr error
		wei, callErr = l.reader.BalanceAt(ctx, owner, nil)
		return callErr
	})
	if err != nil {
		return nil, errors.Wrap(err, "chains: native balance")
	}
	return wei, nil
}

// TokenBalance returns the ERC-20 balanceOf(address) of contract in raw units.
func (l *EVMLedger) TokenBalance(ctx context.Context, contract string, address string) (*big.Int, error) {
	owner, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	token, err := parseAddress(contract)
	if err != nil {
		return nil, errors.Wrap(err, "chains: token contract")
	}
	data, err := erc20ABI.Pack("balanceOf", owner)
	if err != nil {
		return nil, errors.Wrap(err, "chains: pack balanceOf")
	}

	var out []byte
	err = l.call(ctx, "erc20 balanceOf", func(ctx context.Context) error {
		var callErr error
		out, callErr = l.reader.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
		return callErr
	})
	if err != nil {
		return nil, errors.Wrapf(err, "chains: erc20 balanceOf %s", token.Hex())
	}

	values, err := erc20ABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, errors.Wrapf(err, "chains: decode balanceOf %s", token.Hex())
	}
	if len(values) != 1 {
		return nil, errors.Newf("chains: balanceOf %s returned %d values", token.Hex(), len(values))
	}
	bal, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.Newf("chains: balanceOf %s returned %T", token.Hex(), values[0])
	}
	return bal, nil
}

func (l *EVMLedger) call(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if l.retry == nil {
		return fn(ctx)
	}
	return l.retry(ctx, name, fn)
}

// retryable reports whether a failed node call may succeed when repeated.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertedCode {
		return false
	}
	// some nodes report reverts as a generic -32000 server error
	return !strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}

func parseAddress(raw string) (common.Address, error) {
	a := strings.TrimSpace(raw)
	if !common.IsHexAddress(a) {
		return common.Address{}, errors.Newf("invalid address: %q", raw)
	}
	return common.HexToAddress(a), nil
}
