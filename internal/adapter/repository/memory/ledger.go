// Package memory provides an in-process dispatch ledger for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/port"
)

type Ledger struct {
	mu      sync.RWMutex
	records map[domain.LedgerKey]domain.DispatchRecord
	now     func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{
		records: make(map[domain.LedgerKey]domain.DispatchRecord),
		now:     time.Now,
	}
}

func (l *Ledger) Exists(ctx context.Context, key domain.LedgerKey) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.records[key]
	return ok, nil
}

func (l *Ledger) Record(ctx context.Context, rec domain.DispatchRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := rec.Key()
	if _, ok := l.records[key]; ok {
		return nil
	}
	rec.Data = cloneData(rec.Data)
	l.records[key] = rec
	return nil
}

func (l *Ledger) ListByAgreement(ctx context.Context, agreementRef string) ([]domain.DispatchRecord, error) {
	ref := domain.NormalizeReference(agreementRef)
	return l.filter(func(r domain.DispatchRecord) bool { return r.AgreementReference == ref }), nil
}

func (l *Ledger) ListByClaim(ctx context.Context, claimRef string) ([]domain.DispatchRecord, error) {
	ref := domain.NormalizeReference(claimRef)
	return l.filter(func(r domain.DispatchRecord) bool { return r.ClaimReference == ref }), nil
}

func (l *Ledger) RedactPII(ctx context.Context, agreementRefs []string) (int, error) {
	refs := make(map[string]struct{}, len(agreementRefs))
	for _, r := range agreementRefs {
		refs[domain.NormalizeReference(r)] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now().UTC()
	updated := 0
	for key, rec := range l.records {
		if _, ok := refs[rec.AgreementReference]; !ok {
			continue
		}
		if !rec.Data.RedactPII() {
			continue
		}
		rec.UpdatedAt = now
		l.records[key] = rec
		updated++
	}
	return updated, nil
}

// Len returns the number of stored records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Ledger) filter(match func(domain.DispatchRecord) bool) []domain.DispatchRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.DispatchRecord
	for _, rec := range l.records {
		if match(rec) {
			rec.Data = cloneData(rec.Data)
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func cloneData(d domain.RecordData) domain.RecordData {
	if d == nil {
		return domain.RecordData{}
	}
	out := make(domain.RecordData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Compile-time interface checks.
var _ port.Ledger = (*Ledger)(nil)
