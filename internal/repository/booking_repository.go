package repository

import (
	"context"
	"database/sql"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// BookingRepo provides CRUD operations for kitchen-time and storage
// bookings. Storage units are exclusive: creating a storage booking checks
// for overlapping active bookings of the same unit inside a transaction.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for transactional flows.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a booking within an existing transaction, refusing
// overlapping active storage bookings for the same unit with ErrConflict.
// It populates the generated ID on the provided record.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if b.Kind == model.BookingStorage {
		var clash int
		err := tx.QueryRowContext(ctx, `
			SELECT 1 FROM bookings
			WHERE location_id = ? AND kind = ? AND storage_unit = ? AND status = ?
			  AND starts_at < ? AND ends_at > ?
			LIMIT 1 FOR UPDATE`,
			b.LocationID, model.BookingStorage, b.StorageUnit, model.BookingActive,
			b.EndsAt, b.StartsAt).Scan(&clash)
		if err == nil {
			return ErrConflict
		}
		if err != sql.ErrNoRows {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (chef_id, location_id, kind, storage_unit, starts_at, ends_at, daily_rate_cents, status)
		VALUES (?,?,?,?,?,?,?,?)`,
		b.ChefID, b.LocationID, b.Kind, b.StorageUnit, b.StartsAt, b.EndsAt, b.DailyRateCents, model.BookingActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.BookingActive
	return nil
}

// GetByID fetches a booking. sql.ErrNoRows when absent.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	var b model.Booking
	var checkedOut sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, chef_id, location_id, kind, storage_unit, starts_at, ends_at,
		       daily_rate_cents, status, checked_out_at, created_at, updated_at
		FROM bookings WHERE id = ?`, id).
		Scan(&b.ID, &b.ChefID, &b.LocationID, &b.Kind, &b.StorageUnit, &b.StartsAt, &b.EndsAt,
			&b.DailyRateCents, &b.Status, &checkedOut, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	if checkedOut.Valid {
		t := checkedOut.Time
		b.CheckedOutAt = &t
	}
	return b, nil
}

// ListByChef returns the chef's bookings, newest first.
func (r *BookingRepo) ListByChef(ctx context.Context, chefID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chef_id, location_id, kind, storage_unit, starts_at, ends_at,
		       daily_rate_cents, status, checked_out_at, created_at, updated_at
		FROM bookings WHERE chef_id = ? ORDER BY created_at DESC`, chefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		var checkedOut sql.NullTime
		if err := rows.Scan(&b.ID, &b.ChefID, &b.LocationID, &b.Kind, &b.StorageUnit, &b.StartsAt, &b.EndsAt,
			&b.DailyRateCents, &b.Status, &checkedOut, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if checkedOut.Valid {
			t := checkedOut.Time
			b.CheckedOutAt = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Cancel marks an active booking cancelled, scoped to its chef. A zero-row
// update means the booking is missing, foreign or no longer active; the
// caller disambiguates via GetByID.
func (r *BookingRepo) Cancel(ctx context.Context, id, chefID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status = ? WHERE id = ? AND chef_id = ? AND status = ?",
		model.BookingCancelled, id, chefID, model.BookingActive)
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

// Checkout records the actual checkout time of an active storage booking
// and completes it.
func (r *BookingRepo) Checkout(ctx context.Context, id, chefID uint64) (model.Booking, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET status = ?, checked_out_at = NOW()
		WHERE id = ? AND chef_id = ? AND kind = ? AND status = ?`,
		model.BookingCompleted, id, chefID, model.BookingStorage, model.BookingActive)
	if err != nil {
		return model.Booking{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Booking{}, err
	}
	if n == 0 {
		return model.Booking{}, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}
