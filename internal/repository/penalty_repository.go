package repository

import (
	"context"
	"database/sql"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// PenaltyRepo persists overstay penalties raised against late storage
// checkouts.
type PenaltyRepo struct{ db *sql.DB }

func NewPenaltyRepo(db *sql.DB) *PenaltyRepo { return &PenaltyRepo{db: db} }

// Create inserts a pending penalty and populates the generated ID.
func (r *PenaltyRepo) Create(ctx context.Context, p *model.OverstayPenalty) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO overstay_penalties (booking_id, days_overdue, calculated_cents, tax_cents, final_cents, status)
		VALUES (?,?,?,?,?,?)`,
		p.BookingID, p.DaysOverdue, p.CalculatedCents, p.TaxCents, p.FinalCents, model.PenaltyPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.Status = model.PenaltyPending
	return nil
}

func scanPenalty(scan func(dest ...interface{}) error) (model.OverstayPenalty, error) {
	var p model.OverstayPenalty
	var payRef sql.NullString
	var approvedAt, chargedAt sql.NullTime
	err := scan(&p.ID, &p.BookingID, &p.DaysOverdue, &p.CalculatedCents, &p.TaxCents, &p.FinalCents,
		&p.Status, &payRef, &p.RetryCount, &approvedAt, &chargedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if payRef.Valid {
		ref := payRef.String
		p.PaymentRef = &ref
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		p.ApprovedAt = &t
	}
	if chargedAt.Valid {
		t := chargedAt.Time
		p.ChargedAt = &t
	}
	return p, nil
}

const penaltyColumns = `id, booking_id, days_overdue, calculated_cents, tax_cents, final_cents,
	status, payment_ref, retry_count, approved_at, charged_at, created_at, updated_at`

// GetByID fetches a penalty. sql.ErrNoRows when absent.
func (r *PenaltyRepo) GetByID(ctx context.Context, id uint64) (model.OverstayPenalty, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+penaltyColumns+" FROM overstay_penalties WHERE id = ?", id)
	return scanPenalty(row.Scan)
}

// ListByLocation returns penalties for a location's bookings, newest first.
// Ownership must be verified by the caller.
func (r *PenaltyRepo) ListByLocation(ctx context.Context, locationID uint64) ([]model.OverstayPenalty, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.booking_id, p.days_overdue, p.calculated_cents, p.tax_cents, p.final_cents,
		       p.status, p.payment_ref, p.retry_count, p.approved_at, p.charged_at, p.created_at, p.updated_at
		FROM overstay_penalties p
		JOIN bookings b ON b.id = p.booking_id
		WHERE b.location_id = ?
		ORDER BY p.created_at DESC`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.OverstayPenalty, 0)
	for rows.Next() {
		p, err := scanPenalty(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ManagerFor returns the manager owning the location behind a penalty's
// booking. sql.ErrNoRows when the penalty does not exist.
func (r *PenaltyRepo) ManagerFor(ctx context.Context, penaltyID uint64) (uint64, error) {
	var managerID uint64
	err := r.db.QueryRowContext(ctx, `
		SELECT l.manager_id
		FROM overstay_penalties p
		JOIN bookings b ON b.id = p.booking_id
		JOIN locations l ON l.id = b.location_id
		WHERE p.id = ?`, penaltyID).Scan(&managerID)
	return managerID, err
}

// Approve moves a pending penalty to approved. ErrConflict when not
// pending.
func (r *PenaltyRepo) Approve(ctx context.Context, id uint64) error {
	return r.transition(ctx, id, model.PenaltyPending,
		"UPDATE overstay_penalties SET status = ?, approved_at = NOW() WHERE id = ? AND status = ?",
		model.PenaltyApproved)
}

// Waive moves a pending or approved penalty to waived.
func (r *PenaltyRepo) Waive(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE overstay_penalties SET status = ? WHERE id = ? AND status IN (?,?)",
		model.PenaltyWaived, id, model.PenaltyPending, model.PenaltyApproved)
	if err != nil {
		return err
	}
	return affectedOrConflict(res)
}

// MarkCharged finalizes an approved penalty with its payment reference.
func (r *PenaltyRepo) MarkCharged(ctx context.Context, id uint64, paymentRef string) error {
	return r.transition(ctx, id, model.PenaltyApproved,
		"UPDATE overstay_penalties SET status = ?, payment_ref = ?, charged_at = NOW() WHERE id = ? AND status = ?",
		model.PenaltyCharged, paymentRef)
}

// IncrementRetry bumps the charge attempt counter on an approved penalty.
func (r *PenaltyRepo) IncrementRetry(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE overstay_penalties SET retry_count = retry_count + 1 WHERE id = ?", id)
	return err
}

func (r *PenaltyRepo) transition(ctx context.Context, id uint64, fromStatus, query string, args ...interface{}) error {
	// args order: new status [, extra args], then id and fromStatus appended
	full := append(args, id, fromStatus)
	res, err := r.db.ExecContext(ctx, query, full...)
	if err != nil {
		return err
	}
	return affectedOrConflict(res)
}

func affectedOrConflict(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
