package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/port"
)

// Schema creates the dispatch ledger. The unique index is the ledger key.
const Schema = `
CREATE TABLE IF NOT EXISTS message_generation (
	id                  UUID PRIMARY KEY,
	agreement_reference TEXT NOT NULL,
	claim_reference     TEXT NOT NULL DEFAULT '',
	message_type        TEXT NOT NULL,
	sub_type            TEXT NOT NULL DEFAULT '',
	recipient           TEXT NOT NULL DEFAULT '',
	data                JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS message_generation_key_idx
	ON message_generation (agreement_reference, claim_reference, message_type, sub_type, recipient);
CREATE INDEX IF NOT EXISTS message_generation_claim_idx
	ON message_generation (claim_reference);
`

const selectColumns = `id, agreement_reference, claim_reference, message_type, sub_type, recipient, data, created_at, updated_at`

// Ledger stores dispatch records in Postgres.
type Ledger struct {
	DB  *pgxpool.Pool
	now func() time.Time
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{DB: pool, now: time.Now}
}

// Migrate applies Schema.
func (l *Ledger) Migrate(ctx context.Context) error {
	if _, err := l.DB.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}

func (l *Ledger) Exists(ctx context.Context, key domain.LedgerKey) (bool, error) {
	var found bool
	err := l.DB.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM message_generation
			WHERE agreement_reference = $1 AND claim_reference = $2
			  AND message_type = $3 AND sub_type = $4 AND recipient = $5
		)`,
		key.AgreementReference, key.ClaimReference, key.MessageType, key.SubType, key.Recipient,
	).Scan(&found)
	return found, err
}

func (l *Ledger) Record(ctx context.Context, rec domain.DispatchRecord) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("marshal record data: %w", err)
	}
	_, err = l.DB.Exec(ctx, `
		INSERT INTO message_generation (id, agreement_reference, claim_reference, message_type, sub_type, recipient, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (agreement_reference, claim_reference, message_type, sub_type, recipient) DO NOTHING`,
		rec.ID, rec.AgreementReference, rec.ClaimReference, rec.MessageType, rec.SubType, rec.Recipient,
		data, rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

func (l *Ledger) ListByAgreement(ctx context.Context, agreementRef string) ([]domain.DispatchRecord, error) {
	return l.list(ctx, `SELECT `+selectColumns+` FROM message_generation WHERE agreement_reference = $1 ORDER BY created_at, id`,
		domain.NormalizeReference(agreementRef))
}

func (l *Ledger) ListByClaim(ctx context.Context, claimRef string) ([]domain.DispatchRecord, error) {
	return l.list(ctx, `SELECT `+selectColumns+` FROM message_generation WHERE claim_reference = $1 ORDER BY created_at, id`,
		domain.NormalizeReference(claimRef))
}

func (l *Ledger) list(ctx context.Context, query string, args ...any) ([]domain.DispatchRecord, error) {
	rows, err := l.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanRecord)
}

// RedactPII rewrites matching records inside one transaction.
func (l *Ledger) RedactPII(ctx context.Context, agreementRefs []string) (int, error) {
	refs := make([]string, 0, len(agreementRefs))
	for _, r := range agreementRefs {
		refs = append(refs, domain.NormalizeReference(r))
	}

	updated := 0
	err := pgx.BeginFunc(ctx, l.DB, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+selectColumns+` FROM message_generation WHERE agreement_reference = ANY($1) FOR UPDATE`, refs)
		if err != nil {
			return err
		}
		records, err := pgx.CollectRows(rows, scanRecord)
		if err != nil {
			return err
		}

		now := l.now().UTC()
		for _, rec := range records {
			if !rec.Data.RedactPII() {
				continue
			}
			data, err := json.Marshal(rec.Data)
			if err != nil {
				return fmt.Errorf("marshal record data: %w", err)
			}
			if _, err := tx.Exec(ctx, `UPDATE message_generation SET data = $2, updated_at = $3 WHERE id = $1`, rec.ID, data, now); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redact pii: %w", err)
	}
	return updated, nil
}

func scanRecord(row pgx.CollectableRow) (domain.DispatchRecord, error) {
	var (
		rec  domain.DispatchRecord
		data []byte
	)
	if err := row.Scan(&rec.ID, &rec.AgreementReference, &rec.ClaimReference, &rec.MessageType,
		&rec.SubType, &rec.Recipient, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return rec, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec.Data); err != nil {
			return rec, fmt.Errorf("decode record data: %w", err)
		}
	}
	return rec, nil
}

// Compile-time interface checks.
var _ port.Ledger = (*Ledger)(nil)
