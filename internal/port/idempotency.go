package port

import (
	"context"

	"github.com/strogmv/claimcomms/internal/domain"
)

// Ledger records which events have already produced their side effects.
type Ledger interface {
	// Exists returns true if a record occupies key.
	Exists(ctx context.Context, key domain.LedgerKey) (bool, error)
	// Record stores rec. A second write of the same key is ignored.
	Record(ctx context.Context, rec domain.DispatchRecord) error
	// ListByAgreement returns every record for an agreement, oldest first.
	ListByAgreement(ctx context.Context, agreementRef string) ([]domain.DispatchRecord, error)
	// ListByClaim returns every record for a claim, oldest first.
	ListByClaim(ctx context.Context, claimRef string) ([]domain.DispatchRecord, error)
	// RedactPII overwrites PII in the records of the given agreements and
	// returns how many records changed.
	RedactPII(ctx context.Context, agreementRefs []string) (int, error)
}

// KeyLocker hands out short leases on ledger keys so two consumers do not
// work on the same key at once.
type KeyLocker interface {
	// Acquire returns domain.ErrKeyBusy when the lease is held elsewhere.
	Acquire(ctx context.Context, key string) (release func(), err error)
}
