package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/port"
)

const schema = `
CREATE TABLE IF NOT EXISTS message_generation (
	id                  TEXT PRIMARY KEY,
	agreement_reference TEXT NOT NULL,
	claim_reference     TEXT NOT NULL DEFAULT '',
	message_type        TEXT NOT NULL,
	sub_type            TEXT NOT NULL DEFAULT '',
	recipient           TEXT NOT NULL DEFAULT '',
	data                TEXT NOT NULL DEFAULT '{}',
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS message_generation_key_idx
	ON message_generation (agreement_reference, claim_reference, message_type, sub_type, recipient);
CREATE INDEX IF NOT EXISTS message_generation_claim_idx
	ON message_generation (claim_reference);
`

const selectColumns = `id, agreement_reference, claim_reference, message_type, sub_type, recipient, data, created_at, updated_at`

// Ledger is a single-node dispatch ledger on SQLite.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and creates) the database at dsn and applies the schema.
func Open(ctx context.Context, dsn string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db, now: time.Now}
	if err := l.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) Migrate(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}

func (l *Ledger) Close() error { return l.db.Close() }

func (l *Ledger) Exists(ctx context.Context, key domain.LedgerKey) (bool, error) {
	var found int
	err := l.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM message_generation
			WHERE agreement_reference = ? AND claim_reference = ?
			  AND message_type = ? AND sub_type = ? AND recipient = ?
		)`,
		key.AgreementReference, key.ClaimReference, key.MessageType, key.SubType, key.Recipient,
	).Scan(&found)
	return found == 1, err
}

func (l *Ledger) Record(ctx context.Context, rec domain.DispatchRecord) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("marshal record data: %w", err)
	}
	_, err = l.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO message_generation (id, agreement_reference, claim_reference, message_type, sub_type, recipient, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AgreementReference, rec.ClaimReference, rec.MessageType, rec.SubType, rec.Recipient,
		string(data), formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	return err
}

func (l *Ledger) ListByAgreement(ctx context.Context, agreementRef string) ([]domain.DispatchRecord, error) {
	return list(ctx, l.db, `SELECT `+selectColumns+` FROM message_generation WHERE agreement_reference = ? ORDER BY created_at, id`,
		domain.NormalizeReference(agreementRef))
}

func (l *Ledger) ListByClaim(ctx context.Context, claimRef string) ([]domain.DispatchRecord, error) {
	return list(ctx, l.db, `SELECT `+selectColumns+` FROM message_generation WHERE claim_reference = ? ORDER BY created_at, id`,
		domain.NormalizeReference(claimRef))
}

func (l *Ledger) RedactPII(ctx context.Context, agreementRefs []string) (int, error) {
	if len(agreementRefs) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(agreementRefs))
	for _, r := range agreementRefs {
		args = append(args, domain.NormalizeReference(r))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("redact pii: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	records, err := list(ctx, tx, `SELECT `+selectColumns+` FROM message_generation WHERE agreement_reference IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("redact pii: %w", err)
	}

	now := formatTime(l.now())
	updated := 0
	for _, rec := range records {
		if !rec.Data.RedactPII() {
			continue
		}
		data, err := json.Marshal(rec.Data)
		if err != nil {
			return 0, fmt.Errorf("marshal record data: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE message_generation SET data = ?, updated_at = ? WHERE id = ?`, string(data), now, rec.ID); err != nil {
			return 0, fmt.Errorf("redact pii: %w", err)
		}
		updated++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("redact pii: %w", err)
	}
	return updated, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func list(ctx context.Context, q querier, query string, args ...any) ([]domain.DispatchRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DispatchRecord
	for rows.Next() {
		var rec domain.DispatchRecord
		var data, created, upd string
		if err := rows.Scan(&rec.ID, &rec.AgreementReference, &rec.ClaimReference, &rec.MessageType,
			&rec.SubType, &rec.Recipient, &data, &created, &upd); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
			return nil, fmt.Errorf("decode record data: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if rec.UpdatedAt, err = time.Parse(timeLayout, upd); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

var _ port.Ledger = (*Ledger)(nil)
