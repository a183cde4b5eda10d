package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
)

// ManagerRequirementsHandler serves the per-location requirement
// configuration: which fields and documents applicants must provide, plus
// the overstay penalty settings.
type ManagerRequirementsHandler struct {
	Reqs      *repository.RequirementsRepo
	Locations *repository.LocationRepo
}

func NewManagerRequirementsHandler(reqs *repository.RequirementsRepo, locations *repository.LocationRepo) *ManagerRequirementsHandler {
	if reqs == nil || locations == nil {
		panic("nil repository passed to NewManagerRequirementsHandler")
	}
	return &ManagerRequirementsHandler{Reqs: reqs, Locations: locations}
}

type requirementsBody struct {
	RequireFirstName       bool   `json:"require_first_name"`
	RequireLastName        bool   `json:"require_last_name"`
	RequireEmail           bool   `json:"require_email"`
	RequirePhone           bool   `json:"require_phone"`
	RequireBusinessName    bool   `json:"require_business_name"`
	RequireBusinessType    bool   `json:"require_business_type"`
	RequireBusinessDesc    bool   `json:"require_business_description"`
	RequireExperience      bool   `json:"require_experience"`
	RequireFoodHandlerCert bool   `json:"require_food_handler_cert"`
	RequireCertExpiry      bool   `json:"require_cert_expiry"`
	RequireEstablishCert   bool   `json:"require_establishment_cert"`
	RequireUsageFrequency  bool   `json:"require_usage_frequency"`
	RequireSessionDuration bool   `json:"require_session_duration"`
	RequireInsuranceDoc    bool   `json:"require_insurance_doc"`
	RequireAllergenPlan    bool   `json:"require_allergen_plan"`
	FloorPlanURL           string `json:"floor_plan_url"`
	VentilationSpec        string `json:"ventilation_spec"`
	GracePeriodDays        uint8  `json:"grace_period_days"`
	PenaltyRatePercent     uint8  `json:"penalty_rate_percent"`
	MaxPenaltyCents        uint32 `json:"max_penalty_cents"`
	TaxRatePercent         uint8  `json:"tax_rate_percent"`
}

func toRequirementsBody(q model.LocationRequirements) requirementsBody {
	return requirementsBody{
		RequireFirstName:       q.RequireFirstName,
		RequireLastName:        q.RequireLastName,
		RequireEmail:           q.RequireEmail,
		RequirePhone:           q.RequirePhone,
		RequireBusinessName:    q.RequireBusinessName,
		RequireBusinessType:    q.RequireBusinessType,
		RequireBusinessDesc:    q.RequireBusinessDesc,
		RequireExperience:      q.RequireExperience,
		RequireFoodHandlerCert: q.RequireFoodHandlerCert,
		RequireCertExpiry:      q.RequireCertExpiry,
		RequireEstablishCert:   q.RequireEstablishCert,
		RequireUsageFrequency:  q.RequireUsageFrequency,
		RequireSessionDuration: q.RequireSessionDuration,
		RequireInsuranceDoc:    q.RequireInsuranceDoc,
		RequireAllergenPlan:    q.RequireAllergenPlan,
		FloorPlanURL:           q.FloorPlanURL,
		VentilationSpec:        q.VentilationSpec,
		GracePeriodDays:        q.GracePeriodDays,
		PenaltyRatePercent:     q.PenaltyRatePercent,
		MaxPenaltyCents:        q.MaxPenaltyCents,
		TaxRatePercent:         q.TaxRatePercent,
	}
}

// Get returns the location's requirement configuration, falling back to
// the documented defaults when the manager has never edited it.
func (h *ManagerRequirementsHandler) Get(c echo.Context) error {
	managerID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	locationID, err := paramID(c, "location_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.ownLocation(ctx, c, locationID, managerID); err != nil {
		return nil
	}
	req, stored, err := h.Reqs.Get(ctx, locationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"location_id":  locationID,
		"configured":   stored,
		"requirements": toRequirementsBody(req),
	})
}

// Put replaces the location's requirement configuration. The row is
// created lazily on the first edit; numeric settings are range checked.
func (h *ManagerRequirementsHandler) Put(c echo.Context) error {
	managerID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	locationID, err := paramID(c, "location_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	var body requirementsBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.GracePeriodDays > 14 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "grace_period_days must be between 0 and 14"})
	}
	if body.PenaltyRatePercent > 50 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "penalty_rate_percent must be between 0 and 50"})
	}
	if body.TaxRatePercent > 30 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tax_rate_percent must be between 0 and 30"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.ownLocation(ctx, c, locationID, managerID); err != nil {
		return nil
	}

	q := model.LocationRequirements{
		LocationID:             locationID,
		RequireFirstName:       body.RequireFirstName,
		RequireLastName:        body.RequireLastName,
		RequireEmail:           body.RequireEmail,
		RequirePhone:           body.RequirePhone,
		RequireBusinessName:    body.RequireBusinessName,
		RequireBusinessType:    body.RequireBusinessType,
		RequireBusinessDesc:    body.RequireBusinessDesc,
		RequireExperience:      body.RequireExperience,
		RequireFoodHandlerCert: body.RequireFoodHandlerCert,
		RequireCertExpiry:      body.RequireCertExpiry,
		RequireEstablishCert:   body.RequireEstablishCert,
		RequireUsageFrequency:  body.RequireUsageFrequency,
		RequireSessionDuration: body.RequireSessionDuration,
		RequireInsuranceDoc:    body.RequireInsuranceDoc,
		RequireAllergenPlan:    body.RequireAllergenPlan,
		FloorPlanURL:           body.FloorPlanURL,
		VentilationSpec:        body.VentilationSpec,
		GracePeriodDays:        body.GracePeriodDays,
		PenaltyRatePercent:     body.PenaltyRatePercent,
		MaxPenaltyCents:        body.MaxPenaltyCents,
		TaxRatePercent:         body.TaxRatePercent,
	}
	if err := h.Reqs.Upsert(ctx, q); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"location_id":  locationID,
		"configured":   true,
		"requirements": toRequirementsBody(q),
	})
}

func (h *ManagerRequirementsHandler) ownLocation(ctx context.Context, c echo.Context, locationID, managerID uint64) error {
	err := h.Locations.OwnedBy(ctx, locationID, managerID)
	switch err {
	case nil:
		return nil
	case repository.ErrForbidden:
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case sql.ErrNoRows:
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
	default:
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return err
}
