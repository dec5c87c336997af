package service

import (
	"context"
	"fmt"
	"time"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/port"
)

// ledgerGuard runs side effects at most once per ledger key.
type ledgerGuard struct {
	ledger port.Ledger
	locker port.KeyLocker
	now    func() time.Time
	newID  func() string
}

// once calls work unless key is already recorded, then records what work returned.
// It reports whether work ran. Nothing is recorded when work fails.
func (g *ledgerGuard) once(ctx context.Context, key domain.LedgerKey, work func(ctx context.Context) (domain.RecordData, error)) (bool, error) {
	if g.locker != nil {
		release, err := g.locker.Acquire(ctx, key.String())
		if err != nil {
			return false, fmt.Errorf("lease %s: %w", key.MessageType, err)
		}
		defer release()
	}

	seen, err := g.ledger.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check ledger for %s: %w", key.MessageType, err)
	}
	if seen {
		return false, nil
	}

	data, err := work(ctx)
	if err != nil {
		return false, err
	}

	now := g.now().UTC()
	rec := domain.DispatchRecord{
		ID:                 g.newID(),
		AgreementReference: key.AgreementReference,
		ClaimReference:     key.ClaimReference,
		MessageType:        key.MessageType,
		SubType:            key.SubType,
		Recipient:          key.Recipient,
		Data:               data,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := g.ledger.Record(ctx, rec); err != nil {
		return true, fmt.Errorf("record %s: %w", key.MessageType, err)
	}
	return true, nil
}
