package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// AccessRepo persists chef-location access grants. A unique key on
// (chef_id, location_id) plus an insert-if-absent makes Grant idempotent:
// approving the final tier twice leaves exactly one row.
type AccessRepo struct{ db *sql.DB }

func NewAccessRepo(db *sql.DB) *AccessRepo { return &AccessRepo{db: db} }

// Grant inserts an access record unless one already exists. The duplicate
// key from a concurrent insert is swallowed, keeping the operation
// idempotent under races as well.
func (r *AccessRepo) Grant(ctx context.Context, chefID, locationID, grantedBy uint64) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM chef_location_access WHERE chef_id = ? AND location_id = ? LIMIT 1",
		chefID, locationID).Scan(&exists)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO chef_location_access (chef_id, location_id, granted_by) VALUES (?,?,?)",
		chefID, locationID, grantedBy)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return nil
	}
	return err
}

// Has reports whether the chef holds an access grant for the location.
func (r *AccessRepo) Has(ctx context.Context, chefID, locationID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM chef_location_access WHERE chef_id = ? AND location_id = ? LIMIT 1",
		chefID, locationID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByChef returns every location the chef can book.
func (r *AccessRepo) ListByChef(ctx context.Context, chefID uint64) ([]model.ChefLocationAccess, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chef_id, location_id, granted_by, granted_at
		FROM chef_location_access WHERE chef_id = ? ORDER BY granted_at DESC`, chefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ChefLocationAccess, 0)
	for rows.Next() {
		var a model.ChefLocationAccess
		if err := rows.Scan(&a.ID, &a.ChefID, &a.LocationID, &a.GrantedBy, &a.GrantedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
