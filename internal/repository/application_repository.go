package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// ApplicationRepo provides CRUD operations for chef-kitchen applications.
// Tier and status transitions go through compare-and-swap updates keyed on
// the row's version column; a lost race surfaces as ErrVersionConflict so
// the caller can re-read and retry instead of silently overwriting a
// concurrent reviewer's decision.
type ApplicationRepo struct{ db *sql.DB }

func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

// DB exposes the underlying handle for transactional flows.
func (r *ApplicationRepo) DB() *sql.DB { return r.db }

const appColumns = `id, chef_id, location_id, first_name, last_name, email, phone,
	business_name, business_type, business_desc, experience_years,
	usage_frequency, session_hours, current_tier, tier_data, status, feedback,
	conversation_id, version, created_at, updated_at`

func scanApplication(scan func(dest ...interface{}) error) (model.KitchenApplication, error) {
	var a model.KitchenApplication
	var convID sql.NullInt64
	err := scan(&a.ID, &a.ChefID, &a.LocationID, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
		&a.BusinessName, &a.BusinessType, &a.BusinessDesc, &a.ExperienceYears,
		&a.UsageFrequency, &a.SessionHours, &a.CurrentTier, &a.TierData, &a.Status, &a.Feedback,
		&convID, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return a, err
	}
	if convID.Valid {
		id := uint64(convID.Int64)
		a.ConversationID = &id
	}
	return a, nil
}

// Create inserts a new application at tier 1 with status inReview. A
// duplicate (chef, location) pair returns ErrConflict.
func (r *ApplicationRepo) Create(ctx context.Context, a *model.KitchenApplication) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO chef_kitchen_applications
			(chef_id, location_id, first_name, last_name, email, phone,
			 business_name, business_type, business_desc, experience_years,
			 usage_frequency, session_hours, current_tier, tier_data, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ChefID, a.LocationID, a.FirstName, a.LastName, a.Email, a.Phone,
		a.BusinessName, a.BusinessType, a.BusinessDesc, a.ExperienceYears,
		a.UsageFrequency, a.SessionHours, model.MinTier, a.TierData, model.ApplicationInReview)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	a.CurrentTier = model.MinTier
	a.Status = model.ApplicationInReview
	return nil
}

// GetByID fetches an application. sql.ErrNoRows when absent.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uint64) (model.KitchenApplication, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+appColumns+" FROM chef_kitchen_applications WHERE id = ?", id)
	return scanApplication(row.Scan)
}

// GetByChefAndLocation fetches the single application for a (chef, location)
// pair. sql.ErrNoRows when absent.
func (r *ApplicationRepo) GetByChefAndLocation(ctx context.Context, chefID, locationID uint64) (model.KitchenApplication, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+appColumns+" FROM chef_kitchen_applications WHERE chef_id = ? AND location_id = ?",
		chefID, locationID)
	return scanApplication(row.Scan)
}

// GetForManager fetches an application after verifying the caller manages
// the target location. Returns sql.ErrNoRows when the application does not
// exist and ErrForbidden on an ownership mismatch.
func (r *ApplicationRepo) GetForManager(ctx context.Context, id, managerID uint64) (model.KitchenApplication, error) {
	var actual uint64
	err := r.db.QueryRowContext(ctx, `
		SELECT l.manager_id
		FROM chef_kitchen_applications a
		JOIN locations l ON l.id = a.location_id
		WHERE a.id = ?`, id).Scan(&actual)
	if err != nil {
		return model.KitchenApplication{}, err
	}
	if actual != managerID {
		return model.KitchenApplication{}, ErrForbidden
	}
	return r.GetByID(ctx, id)
}

// ListByChef returns all of a chef's applications, newest first.
func (r *ApplicationRepo) ListByChef(ctx context.Context, chefID uint64) ([]model.KitchenApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+appColumns+" FROM chef_kitchen_applications WHERE chef_id = ? ORDER BY created_at DESC",
		chefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.KitchenApplication, 0)
	for rows.Next() {
		a, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListByLocation returns all applications for one location, newest first.
// Ownership must be verified by the caller.
func (r *ApplicationRepo) ListByLocation(ctx context.Context, locationID uint64) ([]model.KitchenApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+appColumns+" FROM chef_kitchen_applications WHERE location_id = ? ORDER BY created_at DESC",
		locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.KitchenApplication, 0)
	for rows.Next() {
		a, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AdvanceTier bumps current_tier and merges the new tier data, guarded by a
// version compare-and-swap. ErrVersionConflict when a concurrent transition
// won the race.
func (r *ApplicationRepo) AdvanceTier(ctx context.Context, id, fromVersion uint64, newTier uint8, tierData string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chef_kitchen_applications
		SET current_tier = ?, tier_data = ?, status = ?, feedback = '', version = version + 1
		WHERE id = ? AND version = ?`,
		newTier, tierData, model.ApplicationInReview, id, fromVersion)
	if err != nil {
		return err
	}
	return casOutcome(res)
}

// ApproveFinalTier promotes an application to the last tier and marks it
// approved in one statement, so the tier bump and the status flip commit
// together. A partial transition cannot be observed or left behind.
func (r *ApplicationRepo) ApproveFinalTier(ctx context.Context, id, fromVersion uint64, tierData string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chef_kitchen_applications
		SET current_tier = ?, tier_data = ?, status = ?, feedback = '', version = version + 1
		WHERE id = ? AND version = ?`,
		model.MaxTier, tierData, model.ApplicationApproved, id, fromVersion)
	if err != nil {
		return err
	}
	return casOutcome(res)
}

// SetStatus transitions the application status (and feedback) under the
// version compare-and-swap guard.
func (r *ApplicationRepo) SetStatus(ctx context.Context, id, fromVersion uint64, status, feedback string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chef_kitchen_applications
		SET status = ?, feedback = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		status, feedback, id, fromVersion)
	if err != nil {
		return err
	}
	return casOutcome(res)
}

// UpdateSubmission overwrites the applicant-editable fields on resubmission
// after a rejection. Tier is left untouched; status returns to inReview.
func (r *ApplicationRepo) UpdateSubmission(ctx context.Context, a model.KitchenApplication, fromVersion uint64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chef_kitchen_applications
		SET first_name = ?, last_name = ?, email = ?, phone = ?,
		    business_name = ?, business_type = ?, business_desc = ?, experience_years = ?,
		    usage_frequency = ?, session_hours = ?, tier_data = ?,
		    status = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		a.FirstName, a.LastName, a.Email, a.Phone,
		a.BusinessName, a.BusinessType, a.BusinessDesc, a.ExperienceYears,
		a.UsageFrequency, a.SessionHours, a.TierData,
		model.ApplicationInReview, a.ID, fromVersion)
	if err != nil {
		return err
	}
	return casOutcome(res)
}

// SetConversation links the lazily created chat thread to the application.
func (r *ApplicationRepo) SetConversation(ctx context.Context, id, conversationID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE chef_kitchen_applications SET conversation_id = ? WHERE id = ? AND conversation_id IS NULL",
		conversationID, id)
	return err
}

// casOutcome maps a zero-row UPDATE under a version guard to
// ErrVersionConflict.
func casOutcome(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}
