// Package router defines how HTTP routes are registered for the API.
// Each surface (auth, public browse, chef, manager, admin) gets its own
// registration function so cmd/server can wire them independently.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/handler"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes. Unauthenticated
// operations live under /v1/auth, protected ones under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a refresh token in the body or a bearer
	// token, so it lives outside the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated location browse surface.
// The optional cache middleware serves repeat reads from redis.
func RegisterPublic(e *echo.Echo, l *handler.LocationHandler, cache echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{}
	if cache != nil {
		mws = append(mws, cache)
	}
	e.GET("/v1/locations", l.Browse, mws...)
	e.GET("/v1/locations/:id", l.GetPublic, mws...)
}
