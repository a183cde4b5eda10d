package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/handler"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/middleware"
)

// RegisterShared registers endpoints available to both marketplace roles:
// the application chat thread, the notification center and the vehicle
// make lookup.
func RegisterShared(e *echo.Echo, chat *handler.ChatHandler, notifications *handler.NotificationHandler,
	vehicles *handler.VehicleHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CHEF", "MANAGER"),
	)

	g.GET("/kitchen-applications/:id/messages", chat.ListMessages)
	g.POST("/kitchen-applications/:id/messages", chat.PostMessage)

	g.GET("/notifications", notifications.List)
	g.PATCH("/notifications/:id/read", notifications.MarkRead)

	if vehicles != nil {
		g.GET("/vehicles/makes", vehicles.Makes)
	}
}

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, mail *handler.AdminEmailHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.POST("/emails/send", mail.Send)
}
