package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/balance-checker/cmd/balance-checker/config"
	"github.com/quantumauth-io/balance-checker/internal/assets"
	"github.com/quantumauth-io/balance-checker/internal/balancecache"
	"github.com/quantumauth-io/balance-checker/internal/balances"
	"github.com/quantumauth-io/balance-checker/internal/chains"
	clienthttp "github.com/quantumauth-io/balance-checker/internal/http"
	"github.com/quantumauth-io/balance-checker/internal/observability"
	"github.com/quantumauth-io/balance-checker/internal/service"
)

type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// Run wires the service and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, build BuildInfo) error {
	log.Info("balance-checker",
		"version", build.Version,
		"commit", build.Commit,
		"build_date", build.BuildDate,
	)

	// ---- Upstream node
	resolved, err := chains.ResolveRPC(cfg.Ethereum.Network, cfg.Ethereum.PreferredRPC)
	if err != nil {
		return err
	}
	client, err := chains.Dial(ctx, resolved)
	if err != nil {
		return err
	}
	defer chains.Close(client)

	initialDelay, maxDelay := cfg.RetryDelays()
	ledger, err := chains.NewEVMLedger(client, chains.WithRetry(initialDelay, maxDelay))
	if err != nil {
		return err
	}
	log.Info("ethereum rpc selected", "network", resolved.NetworkName, "rpc", resolved.RPCName)

	// ---- Core
	metrics := observability.NewMetrics(cfg.Metrics.Namespace)

	registry := assets.DefaultRegistry()
	aggregator, err := balances.NewAggregator(registry, ledger,
		balances.WithQueryTimeout(cfg.QueryTimeout()),
		balances.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	cache, err := balancecache.New(cfg.Cache.Capacity,
		balancecache.WithTTL(cfg.CacheTTL()),
		balancecache.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	balanceService, err := service.NewBalanceService(aggregator, cache,
		service.Config{DedupeInFlight: cfg.Cache.DedupeInFlight}, metrics)
	if err != nil {
		return err
	}

	// ---- HTTP server
	handler, err := clienthttp.NewHandler(balanceService, metrics, clienthttp.ServerConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		EnableAdmin:    cfg.Server.EnableAdmin,
	})
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(cfg.Server.LocalHost, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           clienthttp.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", listenAddr, "assets", registry.AllSymbols())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ---- graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP server error", "error", err)
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	log.Info("HTTP server gracefully stopped")
	return nil
}
