package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/strogmv/claimcomms/internal/app"
	"github.com/strogmv/claimcomms/internal/bootstrap"
	"github.com/strogmv/claimcomms/internal/config"
	"github.com/strogmv/claimcomms/internal/pkg/logger"
	"github.com/strogmv/claimcomms/internal/pkg/tracing"
	transporthttp "github.com/strogmv/claimcomms/internal/transport/http"
)

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = runServe(ctx, cfg)
	case "migrate":
		err = runMigrate(ctx, cfg)
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		slog.Error("claimcomms failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  claimcomms serve    Consume events and serve the admin API (default)")
	fmt.Println("  claimcomms migrate  Create the dispatch ledger schema")
}

func runMigrate(ctx context.Context, cfg *config.Config) error {
	h, err := bootstrap.OpenLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer h.Close()
	if err := h.Migrate(ctx); err != nil {
		return err
	}
	slog.Info("ledger schema applied", "driver", cfg.LedgerDriver)
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := tracing.Init(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	c, err := app.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := transporthttp.NewServer(cfg.HTTPAddr, c.Admin)
	errCh := make(chan error, 2)
	go func() {
		slog.Info("admin api listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := c.Consume(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := srv.Shutdown(sctx); serr != nil {
		slog.Warn("admin api shutdown", "error", serr)
	}
	return err
}
