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
)

// LocationHandler serves kitchen locations: a public browse surface and
// manager-side creation and listing.
type LocationHandler struct {
	Locations *repository.LocationRepo
}

func NewLocationHandler(locations *repository.LocationRepo) *LocationHandler {
	if locations == nil {
		panic("nil repository passed to NewLocationHandler")
	}
	return &LocationHandler{Locations: locations}
}

type createLocationReq struct {
	Name             string `json:"name"`
	Address          string `json:"address"`
	KitchenRateCents uint32 `json:"kitchen_rate_cents"`
	StorageRateCents uint32 `json:"storage_rate_cents"`
}

type locationResp struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name"`
	Address          string `json:"address"`
	KitchenRateCents uint32 `json:"kitchen_rate_cents"`
	StorageRateCents uint32 `json:"storage_rate_cents"`
}

func toLocationResp(l model.Location) locationResp {
	return locationResp{ID: l.ID, Name: l.Name, Address: l.Address,
		KitchenRateCents: l.KitchenRateCents, StorageRateCents: l.StorageRateCents}
}

// Browse lists every location for chefs shopping for a kitchen. Public,
// served behind the response cache.
func (h *LocationHandler) Browse(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	locs, err := h.Locations.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]locationResp, 0, len(locs))
	for _, l := range locs {
		out = append(out, toLocationResp(l))
	}
	return c.JSON(http.StatusOK, out)
}

// GetPublic returns one location by id.
func (h *LocationHandler) GetPublic(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Locations.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toLocationResp(l))
}

// Create registers a new location owned by the calling manager.
func (h *LocationHandler) Create(c echo.Context) error {
	managerID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createLocationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" || req.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/address required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Locations.Create(ctx, managerID, req.Name, req.Address, req.KitchenRateCents, req.StorageRateCents)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create location failed"})
	}
	return c.JSON(http.StatusCreated, locationResp{ID: id, Name: req.Name, Address: req.Address,
		KitchenRateCents: req.KitchenRateCents, StorageRateCents: req.StorageRateCents})
}

// ListMine lists the calling manager's locations.
func (h *LocationHandler) ListMine(c echo.Context) error {
	managerID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	locs, err := h.Locations.ListByManager(ctx, managerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]locationResp, 0, len(locs))
	for _, l := range locs {
		out = append(out, toLocationResp(l))
	}
	return c.JSON(http.StatusOK, out)
}
