package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// DocumentRepo tracks uploaded application documents and their independent
// verification status. One row per (application, kind); re-uploading a slot
// replaces the URL and resets the status to pending.
type DocumentRepo struct{ db *sql.DB }

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{db: db} }

// Upsert stores or replaces a document slot. Replacing resets the review.
func (r *DocumentRepo) Upsert(ctx context.Context, applicationID uint64, kind, url string, expiresAt *time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO application_documents (application_id, kind, url, status, expires_at)
		VALUES (?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
			url = VALUES(url), status = VALUES(status), expires_at = VALUES(expires_at),
			reviewed_by = NULL, reviewed_at = NULL`,
		applicationID, kind, url, model.DocumentPending, expiresAt)
	return err
}

// ListByApplication returns every document attached to an application.
func (r *DocumentRepo) ListByApplication(ctx context.Context, applicationID uint64) ([]model.ApplicationDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, application_id, kind, url, status, expires_at, reviewed_by, reviewed_at, created_at, updated_at
		FROM application_documents WHERE application_id = ? ORDER BY kind`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ApplicationDocument, 0)
	for rows.Next() {
		var d model.ApplicationDocument
		var expires, reviewedAt sql.NullTime
		var reviewedBy sql.NullInt64
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.Kind, &d.URL, &d.Status,
			&expires, &reviewedBy, &reviewedAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if expires.Valid {
			t := expires.Time
			d.ExpiresAt = &t
		}
		if reviewedBy.Valid {
			id := uint64(reviewedBy.Int64)
			d.ReviewedBy = &id
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			d.ReviewedAt = &t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetStatus records a manager's verification decision on one document.
// sql.ErrNoRows when the slot does not exist.
func (r *DocumentRepo) SetStatus(ctx context.Context, applicationID uint64, kind, status string, reviewerID uint64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE application_documents
		SET status = ?, reviewed_by = ?, reviewed_at = NOW()
		WHERE application_id = ? AND kind = ?`,
		status, reviewerID, applicationID, kind)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
