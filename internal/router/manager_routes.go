package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/handler"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/middleware"
)

// RegisterManager registers MANAGER-scoped endpoints under /v1/manager.
// All routes require a valid JWT and the MANAGER role.
func RegisterManager(e *echo.Echo, apps *handler.ManagerApplicationHandler, reqs *handler.ManagerRequirementsHandler,
	locations *handler.LocationHandler, penalties *handler.ManagerPenaltyHandler, jwtSecret string) {
	g := e.Group(
		"/v1/manager",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("MANAGER"),
	)

	// ---- Locations ----
	g.POST("/locations", locations.Create)
	g.GET("/locations", locations.ListMine)

	// ---- Requirements ----
	g.GET("/locations/:location_id/requirements", reqs.Get)
	g.PUT("/locations/:location_id/requirements", reqs.Put)

	// ---- Applications ----
	g.GET("/locations/:location_id/kitchen-applications", apps.ListByLocation)
	g.GET("/kitchen-applications/:id", apps.Get)
	g.PATCH("/kitchen-applications/:id/advance", apps.Advance)
	g.PATCH("/kitchen-applications/:id/reject", apps.Reject)
	g.PATCH("/kitchen-applications/:id/documents/:kind", apps.VerifyDocument)

	// ---- Overstay penalties ----
	g.GET("/locations/:location_id/penalties", penalties.ListByLocation)
	g.PATCH("/penalties/:id/approve", penalties.Approve)
	g.PATCH("/penalties/:id/waive", penalties.Waive)
	g.PATCH("/penalties/:id/charge", penalties.Charge)
	g.PATCH("/penalties/:id/retry", penalties.Retry)
}
