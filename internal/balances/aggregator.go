package balances

import (
	"context"
	"math/big"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/quantumauth-io/balance-checker/internal/assets"
	"github.com/quantumauth-io/balance-checker/internal/constants"
	"github.com/quantumauth-io/balance-checker/internal/observability"
)

// Aggregator fans out one query per registry asset and joins on every outcome.
type Aggregator struct {
	registry     *assets.Registry
	ledger       Ledger
	queryTimeout time.Duration
	now          func() time.Time
	metrics      *observability.Metrics
}

type Option func(*Aggregator)

// WithQueryTimeout bounds each per-asset query. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.queryTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

func NewAggregator(registry *assets.Registry, ledger Ledger, opts ...Option) (*Aggregator, error) {
	if registry == nil {
		return nil, errors.New("balances: registry is nil")
	}
	if ledger == nil {
		return nil, errors.New("balances: ledger is nil")
	}

	a := &Aggregator{
		registry:     registry,
		ledger:       ledger,
		queryTimeout: constants.BalanceQueryTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

type queryResult struct {
	symbol  assets.Symbol
	balance assets.AssetBalance
	err     error
}

// Fetch queries every configured asset for address. It fails only with
// ErrNoDataAvailable, when no query succeeded; individual failures are logged
// and left out of the snapshot.
func (a *Aggregator) Fetch(ctx context.Context, address string) (Snapshot, error) {
	start := time.Now()

	p := pool.NewWithResults[queryResult]()
	for _, symbol := range a.registry.AllSymbols() {
		desc, _ := a.registry.Describe(symbol)
		p.Go(func() queryResult {
			return a.query(ctx, address, desc)
		})
	}
	results := p.Wait()

	ok := make([]assets.AssetBalance, 0, len(results))
	for _, res := range results {
		a.metrics.RecordQuery(res.symbol.String(), res.err)
		if res.err != nil {
			log.Warn("balance query failed", "symbol", res.symbol, "address", address, "error", res.err)
			continue
		}
		ok = append(ok, res.balance)
	}
	a.metrics.RecordAggregation(time.Since(start), len(ok))

	if len(ok) == 0 {
		return Snapshot{}, errors.WithStack(ErrNoDataAvailable)
	}
	return NewSnapshot(address, a.now(), ok...), nil
}

func (a *Aggregator) query(ctx context.Context, address string, desc assets.AssetDescriptor) queryResult {
	res := queryResult{symbol: desc.Symbol}

	raw, err := a.read(ctx, address, desc)
	switch {
	case err != nil:
		res.err = errors.Wrapf(err, "%s balance", desc.Symbol)
	case raw == nil:
		res.err = errors.Newf("%s balance: upstream returned no value", desc.Symbol)
	case raw.Sign() < 0:
		res.err = errors.Newf("%s balance: negative amount %s", desc.Symbol, raw)
	default:
		res.balance = assets.NewAssetBalance(desc.Symbol, raw, desc.Decimals)
	}
	return res
}

// read runs the upstream call under the per-query deadline. The deadline is
// enforced here as well, so a ledger that ignores its context cannot stall
// the whole aggregation.
func (a *Aggregator) read(ctx context.Context, address string, desc assets.AssetDescriptor) (*big.Int, error) {
	if a.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.queryTimeout)
		defer cancel()
	}

	type reply struct {
		amount *big.Int
		err    error
	}
	done := make(chan reply, 1)

	go func() {
		var r reply
		if desc.IsNative() {
			r.amount, r.err = a.ledger.NativeBalance(ctx, address)
		} else {
			r.amount, r.err = a.ledger.TokenBalance(ctx, desc.Contract, address)
		}
		done <- r
	}()

	select {
	case r := <-done:
		return r.amount, r.err
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "upstream query")
	}
}
