package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/vehicle"
)

// MakeLookup resolves vehicle makes for a vehicle type. Satisfied by
// vehicle.Client.
type MakeLookup interface {
	MakesForVehicleType(ctx context.Context, vehicleType string) ([]vehicle.Make, error)
}

// VehicleHandler serves make lookups for the chef delivery profile.
type VehicleHandler struct {
	Lookup MakeLookup
}

func NewVehicleHandler(lookup MakeLookup) *VehicleHandler {
	if lookup == nil {
		panic("nil lookup passed to NewVehicleHandler")
	}
	return &VehicleHandler{Lookup: lookup}
}

// Makes returns the makes for the vehicle type in the query string.
func (h *VehicleHandler) Makes(c echo.Context) error {
	vt := c.QueryParam("type")
	if vt == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type query parameter required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	makes, err := h.Lookup.MakesForVehicleType(ctx, vt)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "vehicle lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"makes": makes})
}
