package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/orclabs/orchestrator/internal/core/domain"
)

// MaxDraftEntries caps the communication log; the oldest drafts are evicted.
const MaxDraftEntries = 50

type DraftRepository struct {
	db  *sql.DB
	cap int
}

func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db, cap: MaxDraftEntries}
}

func (r *DraftRepository) Append(ctx context.Context, draft domain.EmailDraft) error {
	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal email draft: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin draft tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO email_drafts (id, status, created_at, draft)
VALUES ($1,$2,$3,$4)
`, draft.ID, string(draft.Status), draft.CreatedAt, draftJSON)
	if err != nil {
		return fmt.Errorf("insert email draft: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
DELETE FROM email_drafts
WHERE id NOT IN (
	SELECT id FROM email_drafts ORDER BY created_at DESC LIMIT $1
)
`, r.cap)
	if err != nil {
		return fmt.Errorf("evict email drafts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draft tx: %w", err)
	}
	return nil
}

// List returns drafts newest first, optionally filtered by status.
func (r *DraftRepository) List(ctx context.Context, status domain.DraftStatus) ([]domain.EmailDraft, error) {
	query := `SELECT draft FROM email_drafts ORDER BY created_at DESC`
	args := []any{}
	if status != "" {
		query = `SELECT draft FROM email_drafts WHERE status = $1 ORDER BY created_at DESC`
		args = append(args, string(status))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query email drafts: %w", err)
	}
	defer rows.Close()

	drafts := make([]domain.EmailDraft, 0, r.cap)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan email draft: %w", err)
		}
		var draft domain.EmailDraft
		if err := json.Unmarshal(raw, &draft); err != nil {
			return nil, fmt.Errorf("unmarshal email draft: %w", err)
		}
		drafts = append(drafts, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate email drafts: %w", err)
	}
	return drafts, nil
}

func (r *DraftRepository) UpdateStatus(ctx context.Context, id string, status domain.DraftStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE email_drafts
SET status = $2, draft = jsonb_set(draft, '{status}', to_jsonb($2::text))
WHERE id = $1
`, id, string(status))
	if err != nil {
		return fmt.Errorf("update draft status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update draft status: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update draft", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM email_drafts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete email draft: %w", err)
	}
	return nil
}

func (r *DraftRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM email_drafts`); err != nil {
		return fmt.Errorf("clear email drafts: %w", err)
	}
	return nil
}
