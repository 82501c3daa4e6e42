package service

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"golang.org/x/sync/singleflight"

	"github.com/quantumauth-io/balance-checker/internal/balancecache"
	"github.com/quantumauth-io/balance-checker/internal/balances"
	"github.com/quantumauth-io/balance-checker/internal/observability"
)

var (
	// ErrInvalidAddress rejects input that is not a 0x-prefixed 20-byte hex address.
	ErrInvalidAddress = errors.New("invalid Ethereum address")
	// ErrUnexpected wraps any failure other than invalid input or missing data.
	ErrUnexpected = errors.New("internal server error")
)

// Fetcher produces a fresh snapshot for a canonical address.
type Fetcher interface {
	Fetch(ctx context.Context, address string) (balances.Snapshot, error)
}

type Config struct {
	// DedupeInFlight lets concurrent first requests for one address share a
	// single aggregation instead of each querying upstream.
	DedupeInFlight bool
}

// BalanceService answers GetBalances from the cache, falling back to the fetcher.
type BalanceService struct {
	fetcher Fetcher
	cache   *balancecache.Cache
	cfg     Config
	metrics *observability.Metrics

	inflight singleflight.Group
}

func NewBalanceService(fetcher Fetcher, cache *balancecache.Cache, cfg Config, metrics *observability.Metrics) (*BalanceService, error) {
	if fetcher == nil {
		return nil, errors.New("service: fetcher is nil")
	}
	if cache == nil {
		return nil, errors.New("service: cache is nil")
	}
	return &BalanceService{
		fetcher: fetcher,
		cache:   cache,
		cfg:     cfg,
		metrics: metrics,
	}, nil
}

// GetBalances returns the balances of rawAddress. Errors are ErrInvalidAddress,
// balances.ErrNoDataAvailable or ErrUnexpected.
func (s *BalanceService) GetBalances(ctx context.Context, rawAddress string) (BalanceResponse, error) {
	address, err := CanonicalAddress(rawAddress)
	if err != nil {
		return BalanceResponse{}, err
	}

	if snap, ok := s.cache.Get(address); ok {
		return NewBalanceResponse(snap, true), nil
	}

	snap, err := s.aggregate(ctx, address)
	if err != nil {
		if errors.Is(err, balances.ErrNoDataAvailable) {
			return BalanceResponse{}, err
		}
		log.Error("balance aggregation failed", "address", address, "error", err)
		return BalanceResponse{}, errors.Mark(errors.Wrap(err, "aggregate balances"), ErrUnexpected)
	}

	return NewBalanceResponse(snap, false), nil
}

// ClearCache drops every cached snapshot.
func (s *BalanceService) ClearCache() {
	s.cache.Clear()
	log.Info("balance cache cleared")
}

func (s *BalanceService) aggregate(ctx context.Context, address string) (balances.Snapshot, error) {
	if !s.cfg.DedupeInFlight {
		return s.fetchAndStore(ctx, address)
	}

	v, err, shared := s.inflight.Do(address, func() (interface{}, error) {
		// Detached so one caller going away does not fail the others waiting on it.
		return s.fetchAndStore(context.WithoutCancel(ctx), address)
	})
	if shared {
		s.metrics.RecordSharedAggregation()
	}
	if err != nil {
		return balances.Snapshot{}, err
	}
	return v.(balances.Snapshot), nil
}

func (s *BalanceService) fetchAndStore(ctx context.Context, address string) (balances.Snapshot, error) {
	snap, err := s.fetcher.Fetch(ctx, address)
	if err != nil {
		return balances.Snapshot{}, err
	}
	if snap.IsZero() || snap.Len() == 0 {
		return balances.Snapshot{}, errors.WithStack(balances.ErrNoDataAvailable)
	}
	s.cache.Set(address, snap)
	return snap, nil
}

// CanonicalAddress validates raw and returns its lowercase 0x form.
func CanonicalAddress(raw string) (string, error) {
	a := strings.TrimSpace(raw)
	if !strings.HasPrefix(a, "0x") && !strings.HasPrefix(a, "0X") {
		return "", errors.WithStack(ErrInvalidAddress)
	}
	if !common.IsHexAddress(a) {
		return "", errors.WithStack(ErrInvalidAddress)
	}
	return strings.ToLower(common.HexToAddress(a).Hex()), nil
}
