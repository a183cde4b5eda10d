package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
)

// ChefAccessHandler lists the chef's location access grants.
type ChefAccessHandler struct {
	Access *repository.AccessRepo
}

func NewChefAccessHandler(access *repository.AccessRepo) *ChefAccessHandler {
	if access == nil {
		panic("nil repository passed to NewChefAccessHandler")
	}
	return &ChefAccessHandler{Access: access}
}

type accessResp struct {
	LocationID uint64    `json:"location_id"`
	GrantedBy  uint64    `json:"granted_by"`
	GrantedAt  time.Time `json:"granted_at"`
}

// List returns every location the chef can book.
func (h *ChefAccessHandler) List(c echo.Context) error {
	chefID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	grants, err := h.Access.ListByChef(ctx, chefID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]accessResp, 0, len(grants))
	for _, g := range grants {
		out = append(out, accessResp{LocationID: g.LocationID, GrantedBy: g.GrantedBy, GrantedAt: g.GrantedAt})
	}
	return c.JSON(http.StatusOK, out)
}
