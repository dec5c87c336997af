package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/strogmv/claimcomms/internal/adapter/repository/memory"
	"github.com/strogmv/claimcomms/internal/adapter/repository/sqlite"
	"github.com/strogmv/claimcomms/internal/config"
)

func TestOpenLedgerSelectsDriver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h, err := OpenLedger(ctx, &config.Config{LedgerDriver: "memory"})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := h.Ledger.(*memory.Ledger); !ok {
		t.Fatalf("expected memory ledger, got %T", h.Ledger)
	}
	h.Close()

	path := filepath.Join(t.TempDir(), "ledger.db")
	h, err = OpenLedger(ctx, &config.Config{LedgerDriver: "sqlite", SQLitePath: path})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := h.Ledger.(*sqlite.Ledger); !ok {
		t.Fatalf("expected sqlite ledger, got %T", h.Ledger)
	}
	if err := h.Migrate(ctx); err != nil {
		t.Fatalf("migrate twice: %v", err)
	}
	h.Close()

	if _, err := OpenLedger(ctx, &config.Config{LedgerDriver: "mongo"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
