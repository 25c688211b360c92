package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/orclabs/orchestrator/internal/core/domain"
)

// MaxAuditEntries caps the audit log; the oldest entries are evicted.
const MaxAuditEntries = 100

type AuditRepository struct {
	db  *sql.DB
	cap int
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db, cap: MaxAuditEntries}
}

func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO audit_entries (id, created_at, action, entry)
VALUES ($1,$2,$3,$4)
`, entry.ID, entry.Timestamp, string(entry.Action), entryJSON)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	// Evict beyond capacity, oldest first.
	_, err = tx.ExecContext(ctx, `
DELETE FROM audit_entries
WHERE id NOT IN (
	SELECT id FROM audit_entries ORDER BY created_at DESC LIMIT $1
)
`, r.cap)
	if err != nil {
		return fmt.Errorf("evict audit entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT entry FROM audit_entries ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0, r.cap)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		var entry domain.AuditEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("unmarshal audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func (r *AuditRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM audit_entries`); err != nil {
		return fmt.Errorf("clear audit entries: %w", err)
	}
	return nil
}
