package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/handler"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/middleware"
)

// RegisterChef registers CHEF-scoped endpoints under /v1/chef. All routes
// require a valid JWT and the CHEF role.
func RegisterChef(e *echo.Echo, apps *handler.ChefApplicationHandler, bookings *handler.ChefBookingHandler,
	access *handler.ChefAccessHandler, jwtSecret string) {
	g := e.Group(
		"/v1/chef",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CHEF"),
	)

	// ---- Applications ----
	g.POST("/kitchen-applications", apps.Submit)
	g.GET("/kitchen-applications", apps.List)
	g.GET("/kitchen-applications/:id", apps.Get)
	g.PATCH("/kitchen-applications/:id/cancel", apps.Cancel)
	g.PATCH("/kitchen-applications/:id/resubmit", apps.Resubmit)
	g.PATCH("/kitchen-applications/:id/documents", apps.UpdateDocuments)

	// ---- Access grants ----
	g.GET("/access", access.List)

	// ---- Bookings ----
	g.POST("/bookings", bookings.Create)
	g.GET("/bookings", bookings.List)
	g.PATCH("/bookings/:id/cancel", bookings.Cancel)
	g.PATCH("/bookings/:id/checkout", bookings.Checkout)
}
