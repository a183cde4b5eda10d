package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
)

// ManagerPenaltyHandler serves the overstay penalty review flow: listing
// penalties per location, approving or waiving them, and recording the
// charge against an external payment reference.
type ManagerPenaltyHandler struct {
	Penalties *repository.PenaltyRepo
	Locations *repository.LocationRepo
}

func NewManagerPenaltyHandler(penalties *repository.PenaltyRepo, locations *repository.LocationRepo) *ManagerPenaltyHandler {
	if penalties == nil || locations == nil {
		panic("nil repository passed to NewManagerPenaltyHandler")
	}
	return &ManagerPenaltyHandler{Penalties: penalties, Locations: locations}
}

type penaltyResp struct {
	ID              uint64     `json:"id"`
	BookingID       uint64     `json:"booking_id"`
	DaysOverdue     uint32     `json:"days_overdue"`
	CalculatedCents uint32     `json:"calculated_cents"`
	TaxCents        uint32     `json:"tax_cents"`
	FinalCents      uint32     `json:"final_cents"`
	Status          string     `json:"status"`
	PaymentRef      *string    `json:"payment_ref,omitempty"`
	RetryCount      uint8      `json:"retry_count"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ChargedAt       *time.Time `json:"charged_at,omitempty"`
}

func toPenaltyResp(p model.OverstayPenalty) penaltyResp {
	return penaltyResp{ID: p.ID, BookingID: p.BookingID, DaysOverdue: p.DaysOverdue,
		CalculatedCents: p.CalculatedCents, TaxCents: p.TaxCents, FinalCents: p.FinalCents,
		Status: p.Status, PaymentRef: p.PaymentRef, RetryCount: p.RetryCount,
		ApprovedAt: p.ApprovedAt, ChargedAt: p.ChargedAt}
}

// ListByLocation returns the penalties raised at one of the manager's
// locations.
func (h *ManagerPenaltyHandler) ListByLocation(c echo.Context) error {
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

	if err := h.Locations.OwnedBy(ctx, locationID, managerID); err != nil {
		if err == repository.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	penalties, err := h.Penalties.ListByLocation(ctx, locationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]penaltyResp, 0, len(penalties))
	for _, p := range penalties {
		out = append(out, toPenaltyResp(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Approve moves a pending penalty to approved.
func (h *ManagerPenaltyHandler) Approve(c echo.Context) error {
	p, ok := h.managedPenalty(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Penalties.Approve(ctx, p.ID); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "penalty is not pending"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approve failed"})
	}
	updated, err := h.Penalties.GetByID(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toPenaltyResp(updated))
}

// Waive forgives a pending or approved penalty.
func (h *ManagerPenaltyHandler) Waive(c echo.Context) error {
	p, ok := h.managedPenalty(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Penalties.Waive(ctx, p.ID); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "penalty cannot be waived"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "waive failed"})
	}
	updated, err := h.Penalties.GetByID(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toPenaltyResp(updated))
}

type chargeReq struct {
	PaymentRef string `json:"payment_ref"`
}

// Charge records a successful charge of an approved penalty against an
// external payment reference; an empty reference generates one. A failed
// prior attempt bumps the retry counter via the retry endpoint instead.
func (h *ManagerPenaltyHandler) Charge(c echo.Context) error {
	p, ok := h.managedPenalty(c)
	if !ok {
		return nil
	}
	var req chargeReq
	_ = c.Bind(&req)
	ref := strings.TrimSpace(req.PaymentRef)
	if ref == "" {
		ref = "pay_" + uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Penalties.MarkCharged(ctx, p.ID, ref); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "penalty is not approved"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "charge failed"})
	}
	updated, err := h.Penalties.GetByID(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toPenaltyResp(updated))
}

// Retry bumps the charge attempt counter after a failed external charge.
func (h *ManagerPenaltyHandler) Retry(c echo.Context) error {
	p, ok := h.managedPenalty(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Penalties.IncrementRetry(ctx, p.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "retry failed"})
	}
	updated, err := h.Penalties.GetByID(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toPenaltyResp(updated))
}

// managedPenalty loads the penalty and verifies the caller manages the
// location it was raised at, writing the error response on failure.
func (h *ManagerPenaltyHandler) managedPenalty(c echo.Context) (model.OverstayPenalty, bool) {
	managerID, ok := currentUser(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return model.OverstayPenalty{}, false
	}
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return model.OverstayPenalty{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Penalties.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "penalty not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return model.OverstayPenalty{}, false
	}
	owner, err := h.Penalties.ManagerFor(ctx, id)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		return model.OverstayPenalty{}, false
	}
	if owner != managerID {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return model.OverstayPenalty{}, false
	}
	return p, true
}
