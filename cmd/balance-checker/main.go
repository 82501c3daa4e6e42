package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/balance-checker/cmd/balance-checker/config"
	"github.com/quantumauth-io/balance-checker/internal/app"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to parse config", "error", err)
	}

	build := app.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate}
	if err := app.Run(ctx, cfg, build); err != nil {
		log.Error("balance-checker exited", "error", err)
		stop()
		os.Exit(1)
	}
}
