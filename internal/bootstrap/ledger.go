package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strogmv/claimcomms/internal/adapter/repository/memory"
	"github.com/strogmv/claimcomms/internal/adapter/repository/postgres"
	"github.com/strogmv/claimcomms/internal/adapter/repository/sqlite"
	"github.com/strogmv/claimcomms/internal/config"
	"github.com/strogmv/claimcomms/internal/port"
)

// LedgerHandle is an opened ledger together with its lifecycle hooks.
type LedgerHandle struct {
	Ledger  port.Ledger
	Migrate func(ctx context.Context) error
	Ping    func(ctx context.Context) error
	Close   func()
}

// OpenLedger opens the ledger selected by cfg.LedgerDriver.
func OpenLedger(ctx context.Context, cfg *config.Config) (*LedgerHandle, error) {
	switch cfg.LedgerDriver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		l := postgres.NewLedger(pool)
		return &LedgerHandle{Ledger: l, Migrate: l.Migrate, Ping: pool.Ping, Close: pool.Close}, nil
	case "sqlite":
		l, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &LedgerHandle{
			Ledger:  l,
			Migrate: l.Migrate,
			Ping:    func(context.Context) error { return nil },
			Close:   func() { _ = l.Close() },
		}, nil
	case "memory":
		return &LedgerHandle{
			Ledger:  memory.NewLedger(),
			Migrate: func(context.Context) error { return nil },
			Ping:    func(context.Context) error { return nil },
			Close:   func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", cfg.LedgerDriver)
	}
}
