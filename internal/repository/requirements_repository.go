package repository

import (
	"context"
	"database/sql"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// RequirementsRepo persists per-location application requirement
// configuration. A row is written on the first manager edit; locations
// without a row fall back to model.DefaultRequirements. Rows carry the full
// configuration, so presence of a row replaces the defaults wholesale.
type RequirementsRepo struct{ db *sql.DB }

func NewRequirementsRepo(db *sql.DB) *RequirementsRepo { return &RequirementsRepo{db: db} }

const reqColumns = `location_id,
	req_first_name, req_last_name, req_email, req_phone,
	req_business_name, req_business_type, req_business_desc, req_experience,
	req_food_handler_cert, req_cert_expiry, req_establish_cert,
	req_usage_frequency, req_session_duration,
	req_insurance_doc, req_allergen_plan,
	floor_plan_url, ventilation_spec,
	grace_period_days, penalty_rate_percent, max_penalty_cents, tax_rate_percent,
	created_at, updated_at`

func scanRequirements(row *sql.Row) (model.LocationRequirements, error) {
	var q model.LocationRequirements
	err := row.Scan(&q.LocationID,
		&q.RequireFirstName, &q.RequireLastName, &q.RequireEmail, &q.RequirePhone,
		&q.RequireBusinessName, &q.RequireBusinessType, &q.RequireBusinessDesc, &q.RequireExperience,
		&q.RequireFoodHandlerCert, &q.RequireCertExpiry, &q.RequireEstablishCert,
		&q.RequireUsageFrequency, &q.RequireSessionDuration,
		&q.RequireInsuranceDoc, &q.RequireAllergenPlan,
		&q.FloorPlanURL, &q.VentilationSpec,
		&q.GracePeriodDays, &q.PenaltyRatePercent, &q.MaxPenaltyCents, &q.TaxRatePercent,
		&q.CreatedAt, &q.UpdatedAt)
	return q, err
}

// Get returns the stored configuration for a location, or the documented
// defaults when no row exists. The bool result reports whether a stored row
// was found.
func (r *RequirementsRepo) Get(ctx context.Context, locationID uint64) (model.LocationRequirements, bool, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+reqColumns+" FROM location_requirements WHERE location_id = ?", locationID)
	q, err := scanRequirements(row)
	if err == sql.ErrNoRows {
		return model.DefaultRequirements(locationID), false, nil
	}
	if err != nil {
		return model.LocationRequirements{}, false, err
	}
	return q, true, nil
}

// Upsert writes the full configuration for a location, creating the row
// lazily on first edit. The caller is responsible for range validation and
// ownership checks.
func (r *RequirementsRepo) Upsert(ctx context.Context, q model.LocationRequirements) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO location_requirements (
			location_id,
			req_first_name, req_last_name, req_email, req_phone,
			req_business_name, req_business_type, req_business_desc, req_experience,
			req_food_handler_cert, req_cert_expiry, req_establish_cert,
			req_usage_frequency, req_session_duration,
			req_insurance_doc, req_allergen_plan,
			floor_plan_url, ventilation_spec,
			grace_period_days, penalty_rate_percent, max_penalty_cents, tax_rate_percent
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
			req_first_name=VALUES(req_first_name), req_last_name=VALUES(req_last_name),
			req_email=VALUES(req_email), req_phone=VALUES(req_phone),
			req_business_name=VALUES(req_business_name), req_business_type=VALUES(req_business_type),
			req_business_desc=VALUES(req_business_desc), req_experience=VALUES(req_experience),
			req_food_handler_cert=VALUES(req_food_handler_cert), req_cert_expiry=VALUES(req_cert_expiry),
			req_establish_cert=VALUES(req_establish_cert), req_usage_frequency=VALUES(req_usage_frequency),
			req_session_duration=VALUES(req_session_duration), req_insurance_doc=VALUES(req_insurance_doc),
			req_allergen_plan=VALUES(req_allergen_plan), floor_plan_url=VALUES(floor_plan_url),
			ventilation_spec=VALUES(ventilation_spec), grace_period_days=VALUES(grace_period_days),
			penalty_rate_percent=VALUES(penalty_rate_percent), max_penalty_cents=VALUES(max_penalty_cents),
			tax_rate_percent=VALUES(tax_rate_percent)`,
		q.LocationID,
		q.RequireFirstName, q.RequireLastName, q.RequireEmail, q.RequirePhone,
		q.RequireBusinessName, q.RequireBusinessType, q.RequireBusinessDesc, q.RequireExperience,
		q.RequireFoodHandlerCert, q.RequireCertExpiry, q.RequireEstablishCert,
		q.RequireUsageFrequency, q.RequireSessionDuration,
		q.RequireInsuranceDoc, q.RequireAllergenPlan,
		q.FloorPlanURL, q.VentilationSpec,
		q.GracePeriodDays, q.PenaltyRatePercent, q.MaxPenaltyCents, q.TaxRatePercent)
	return err
}
