package repository

import (
	"context"
	"database/sql"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// LocationRepo provides CRUD operations for kitchen locations. Each
// location belongs to one manager; ownership checks join through
// locations.manager_id.
type LocationRepo struct{ db *sql.DB }

func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{db: db} }

// DB exposes the underlying handle for callers that need transactions.
func (r *LocationRepo) DB() *sql.DB { return r.db }

// Create inserts a location for the given manager and returns its ID.
func (r *LocationRepo) Create(ctx context.Context, managerID uint64, name, address string, kitchenRate, storageRate uint32) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO locations (manager_id, name, address, kitchen_rate_cents, storage_rate_cents) VALUES (?,?,?,?,?)",
		managerID, name, address, kitchenRate, storageRate)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a location. sql.ErrNoRows when absent.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (model.Location, error) {
	var l model.Location
	err := r.db.QueryRowContext(ctx,
		`SELECT id, manager_id, name, address, kitchen_rate_cents, storage_rate_cents, created_at, updated_at
		 FROM locations WHERE id = ?`, id).
		Scan(&l.ID, &l.ManagerID, &l.Name, &l.Address, &l.KitchenRateCents, &l.StorageRateCents, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// OwnedBy reports whether the location exists and is managed by managerID.
// Returns sql.ErrNoRows when the location does not exist and ErrForbidden
// when it belongs to a different manager.
func (r *LocationRepo) OwnedBy(ctx context.Context, locationID, managerID uint64) error {
	var actual uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT manager_id FROM locations WHERE id = ?", locationID).Scan(&actual)
	if err != nil {
		return err
	}
	if actual != managerID {
		return ErrForbidden
	}
	return nil
}

// ListAll returns every location for public browsing, newest first.
func (r *LocationRepo) ListAll(ctx context.Context) ([]model.Location, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, manager_id, name, address, kitchen_rate_cents, storage_rate_cents, created_at, updated_at
		 FROM locations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Location, 0)
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.ManagerID, &l.Name, &l.Address, &l.KitchenRateCents, &l.StorageRateCents, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListByManager returns the manager's own locations.
func (r *LocationRepo) ListByManager(ctx context.Context, managerID uint64) ([]model.Location, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, manager_id, name, address, kitchen_rate_cents, storage_rate_cents, created_at, updated_at
		 FROM locations WHERE manager_id = ? ORDER BY created_at DESC`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Location, 0)
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.ManagerID, &l.Name, &l.Address, &l.KitchenRateCents, &l.StorageRateCents, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
