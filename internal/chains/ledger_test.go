package chains

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerAddress = "0x52908400098527886e0f7030069857d2e4169ee7"
	usdcContract = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

type fakeReader struct {
	balance    *big.Int
	balanceErr error
	callOut    []byte
	callErr    error
	// callErrs, when set, are returned in order before callErr applies.
	callErrs []error

	balanceCalls int
	lastCall     ethereum.CallMsg
	callCalls    int
}

func (f *fakeReader) BalanceAt(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	f.balanceCalls++
	return f.balance, f.balanceErr
}

func (f *fakeReader) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.callCalls++
	f.lastCall = msg
	if len(f.callErrs) > 0 {
		err := f.callErrs[0]
		f.callErrs = f.callErrs[1:]
		return nil, err
	}
	return f.callOut, f.callErr
}

// revertError mimics the JSON-RPC error geth returns for a reverted call.
type revertError struct{}

func (revertError) Error() string  { return "execution reverted" }
func (revertError) ErrorCode() int { return 3 }

func uint256Word(v int64) []byte {
	return common.LeftPadBytes(big.NewInt(v).Bytes(), 32)
}

func TestEVMLedger_NativeBalance(t *testing.T) {
	reader := &fakeReader{balance: big.NewInt(42)}
	ledger, err := NewEVMLedger(reader)
	require.NoError(t, err)

	got, err := ledger.NativeBalance(context.Background(), ownerAddress)
	require.NoError(t, err)
	assert.Equal(t, "42", got.String())
	assert.Equal(t, 1, reader.balanceCalls)
}

func TestEVMLedger_ZeroAddressIsQueried(t *testing.T) {
	reader := &fakeReader{balance: big.NewInt(9), callOut: uint256Word(11)}
	ledger, err := NewEVMLedger(reader)
	require.NoError(t, err)

	zero := common.Address{}.Hex()

	got, err := ledger.NativeBalance(context.Background(), zero)
	require.NoError(t, err)
	assert.Equal(t, "9", got.String())

	got, err = ledger.TokenBalance(context.Background(), usdcContract, zero)
	require.NoError(t, err)
	assert.Equal(t, "11", got.String())

	assert.Equal(t, 1, reader.balanceCalls)
	assert.Equal(t, 1, reader.callCalls)
}

func TestEVMLedger_TokenBalance(t *testing.T) {
	reader := &fakeReader{callOut: uint256Word(2500000)}
	ledger, err := NewEVMLedger(reader)
	require.NoError(t, err)

	got, err := ledger.TokenBalance(context.Background(), usdcContract, ownerAddress)
	require.NoError(t, err)
	assert.Equal(t, "2500000", got.String())

	require.NotNil(t, reader.lastCall.To)
	assert.Equal(t, common.HexToAddress(usdcContract), *reader.lastCall.To)
	// balanceOf(address) selector followed by the padded owner
	require.Len(t, reader.lastCall.Data, 4+32)
	assert.Equal(t, "70a08231", common.Bytes2Hex(reader.lastCall.Data[:4]))
	assert.Equal(t, common.HexToAddress(ownerAddress).Bytes(), reader.lastCall.Data[4+12:])
}

func TestEVMLedger_Errors(t *testing.T) {
	tests := []struct {
		name     string
		reader   *fakeReader
		contract string
		owner    string
	}{
		{name: "node error", reader: &fakeReader{callErr: errors.New("connection refused")}, contract: usdcContract, owner: ownerAddress},
		{name: "empty return data", reader: &fakeReader{callOut: []byte{}}, contract: usdcContract, owner: ownerAddress},
		{name: "bad owner", reader: &fakeReader{}, contract: usdcContract, owner: "not-an-address"},
		{name: "bad contract", reader: &fakeReader{}, contract: "0x1234", owner: ownerAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, err := NewEVMLedger(tt.reader)
			require.NoError(t, err)

			_, err = ledger.TokenBalance(context.Background(), tt.contract, tt.owner)
			assert.Error(t, err)
		})
	}

	ledger, err := NewEVMLedger(&fakeReader{balanceErr: errors.New("rate limited")})
	require.NoError(t, err)
	_, err = ledger.NativeBalance(context.Background(), ownerAddress)
	assert.ErrorContains(t, err, "rate limited")
}

func TestEVMLedger_RetriesTransientErrors(t *testing.T) {
	reader := &fakeReader{
		callErrs: []error{errors.New("connection reset by peer"), errors.New("429 too many requests")},
		callOut:  uint256Word(5),
	}
	ledger, err := NewEVMLedger(reader, WithRetry(time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)

	got, err := ledger.TokenBalance(context.Background(), usdcContract, ownerAddress)
	require.NoError(t, err)
	assert.Equal(t, "5", got.String())
	assert.Equal(t, 3, reader.callCalls)
}

func TestEVMLedger_DoesNotRetryReverts(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "rpc error code", err: revertError{}},
		{name: "server error message", err: errors.New("execution reverted: token paused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{callErr: tt.err}
			ledger, err := NewEVMLedger(reader, WithRetry(time.Millisecond, 5*time.Millisecond))
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err = ledger.TokenBalance(ctx, usdcContract, ownerAddress)
			require.Error(t, err)
			assert.Equal(t, 1, reader.callCalls)
			assert.NoError(t, ctx.Err())
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(errors.New("connection refused")))
	assert.False(t, retryable(revertError{}))
	assert.False(t, retryable(errors.Wrap(revertError{}, "erc20 balanceOf")))
	assert.False(t, retryable(context.DeadlineExceeded))
	assert.False(t, retryable(errors.New("VM Exception: execution reverted")))
}

func TestNewEVMLedger_NilReader(t *testing.T) {
	_, err := NewEVMLedger(nil)
	assert.Error(t, err)
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newFakeNode answers eth_getBalance and eth_call like a JSON-RPC node would.
// An empty callHex makes eth_call revert. Every request is counted in calls.
func newFakeNode(t *testing.T, balanceHex, callHex string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		calls.Add(1)

		w.Header().Set("Content-Type", "application/json")
		if req.Method == "eth_call" && callHex == "" {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":3,"message":"execution reverted","data":"0x"}}`, req.ID)
			return
		}

		var result string
		switch req.Method {
		case "eth_getBalance":
			result = balanceHex
		case "eth_call":
			result = callHex
		default:
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32601,"message":"method not found"}}`, req.ID)
			return
		}

		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%q}`, req.ID, result)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEVMLedger_AgainstJSONRPCNode(t *testing.T) {
	var calls atomic.Int32
	node := newFakeNode(t, "0xde0b6b3a7640000", "0x"+strings.Repeat("0", 58)+"2625a0", &calls)

	client, err := Dial(context.Background(), ResolvedChain{NetworkName: "test", RPCName: "fake", URL: node.URL})
	require.NoError(t, err)
	defer Close(client)

	ledger, err := NewEVMLedger(client)
	require.NoError(t, err)

	wei, err := ledger.NativeBalance(context.Background(), ownerAddress)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", wei.String())

	units, err := ledger.TokenBalance(context.Background(), usdcContract, ownerAddress)
	require.NoError(t, err)
	assert.Equal(t, "2500000", units.String())
	assert.Equal(t, int32(2), calls.Load())
}

func TestEVMLedger_NodeRevertIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	node := newFakeNode(t, "0x0", "", &calls)

	client, err := Dial(context.Background(), ResolvedChain{NetworkName: "test", RPCName: "fake", URL: node.URL})
	require.NoError(t, err)
	defer Close(client)

	ledger, err := NewEVMLedger(client, WithRetry(time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)

	_, err = ledger.TokenBalance(context.Background(), usdcContract, ownerAddress)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
