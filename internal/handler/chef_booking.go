package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/workflow"
)

// ChefBookingHandler serves chef bookings: kitchen time and storage
// units. Booking requires an access grant for the location; checking a
// storage unit out late creates a pending overstay penalty.
type ChefBookingHandler struct {
	Bookings  *repository.BookingRepo
	Access    *repository.AccessRepo
	Locations *repository.LocationRepo
	Reqs      *repository.RequirementsRepo
	Penalties *repository.PenaltyRepo
}

func NewChefBookingHandler(bookings *repository.BookingRepo, access *repository.AccessRepo,
	locations *repository.LocationRepo, reqs *repository.RequirementsRepo, penalties *repository.PenaltyRepo) *ChefBookingHandler {
	if bookings == nil || access == nil || locations == nil || reqs == nil || penalties == nil {
		panic("nil repository passed to NewChefBookingHandler")
	}
	return &ChefBookingHandler{Bookings: bookings, Access: access, Locations: locations, Reqs: reqs, Penalties: penalties}
}

type createBookingReq struct {
	LocationID  uint64    `json:"location_id"`
	Kind        string    `json:"kind"` // KITCHEN | STORAGE
	StorageUnit string    `json:"storage_unit"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

type bookingResp struct {
	ID             uint64     `json:"id"`
	LocationID     uint64     `json:"location_id"`
	Kind           string     `json:"kind"`
	StorageUnit    string     `json:"storage_unit,omitempty"`
	StartsAt       time.Time  `json:"starts_at"`
	EndsAt         time.Time  `json:"ends_at"`
	DailyRateCents uint32     `json:"daily_rate_cents"`
	Status         string     `json:"status"`
	CheckedOutAt   *time.Time `json:"checked_out_at,omitempty"`
}

func toBookingResp(b model.Booking) bookingResp {
	return bookingResp{ID: b.ID, LocationID: b.LocationID, Kind: b.Kind, StorageUnit: b.StorageUnit,
		StartsAt: b.StartsAt, EndsAt: b.EndsAt, DailyRateCents: b.DailyRateCents,
		Status: b.Status, CheckedOutAt: b.CheckedOutAt}
}

// Create books kitchen time or a storage unit. The chef must hold an
// access grant for the location; storage units refuse overlapping
// bookings with 409.
func (h *ChefBookingHandler) Create(c echo.Context) error {
	chefID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Kind = strings.ToUpper(strings.TrimSpace(req.Kind))
	if req.Kind != model.BookingKitchen && req.Kind != model.BookingStorage {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind must be KITCHEN or STORAGE"})
	}
	if req.Kind == model.BookingStorage && strings.TrimSpace(req.StorageUnit) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "storage_unit required for storage bookings"})
	}
	if !req.EndsAt.After(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	granted, err := h.Access.Has(ctx, chefID, req.LocationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !granted {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no access grant for this location"})
	}

	loc, err := h.Locations.GetByID(ctx, req.LocationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	rate := loc.KitchenRateCents
	if req.Kind == model.BookingStorage {
		rate = loc.StorageRateCents
	}

	b := model.Booking{
		ChefID:         chefID,
		LocationID:     req.LocationID,
		Kind:           req.Kind,
		StorageUnit:    strings.TrimSpace(req.StorageUnit),
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		DailyRateCents: rate,
	}

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	if err := h.Bookings.CreateTx(ctx, tx, &b); err != nil {
		_ = tx.Rollback()
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "storage unit already booked for that period"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// List returns the chef's bookings, newest first.
func (h *ChefBookingHandler) List(c echo.Context) error {
	chefID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Bookings.ListByChef(ctx, chefID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]bookingResp, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, out)
}

// Cancel cancels an active booking belonging to the chef.
func (h *ChefBookingHandler) Cancel(c echo.Context) error {
	chefID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Bookings.Cancel(ctx, id, chefID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active booking found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled"})
}

// Checkout records the checkout of a storage booking. A checkout past the
// booking end beyond the location's grace period creates a pending
// overstay penalty for the manager to review.
func (h *ChefBookingHandler) Checkout(c echo.Context) error {
	chefID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Bookings.Checkout(ctx, id, chefID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active storage booking found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
	}

	resp := echo.Map{"booking": toBookingResp(b)}
	if b.CheckedOutAt != nil {
		if days := workflow.DaysOverdue(b.EndsAt, *b.CheckedOutAt); days > 0 {
			req, _, err := h.Reqs.Get(ctx, b.LocationID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load requirements failed"})
			}
			amounts := workflow.CalculatePenalty(req, b.DailyRateCents, days)
			if amounts.FinalCents > 0 {
				p := model.OverstayPenalty{
					BookingID:       b.ID,
					DaysOverdue:     amounts.DaysOverdue,
					CalculatedCents: amounts.CalculatedCents,
					TaxCents:        amounts.TaxCents,
					FinalCents:      amounts.FinalCents,
				}
				if err := h.Penalties.Create(ctx, &p); err != nil {
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record penalty failed"})
				}
				resp["penalty"] = toPenaltyResp(p)
			}
		}
	}
	return c.JSON(http.StatusOK, resp)
}
