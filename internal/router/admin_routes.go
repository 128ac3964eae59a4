package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kzaleska/cinema-ticketing/internal/handler"
	"github.com/kzaleska/cinema-ticketing/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped catalog management endpoints under
// /v1/admin.  All routes require a valid JWT and the ADMIN role.  Extra
// middleware (the browse cache invalidator) runs after the auth checks.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		append([]echo.MiddlewareFunc{
			middleware.JWTAuth(jwtSecret),
			middleware.RequireRole("ADMIN"),
		}, mw...)...,
	)

	// ---- Movies and categories ----
	g.POST("/movies", h.CreateMovie)
	g.DELETE("/movies/:id", h.DeleteMovie)
	g.POST("/categories", h.CreateCategory)

	// ---- Cinemas and repertoires ----
	g.POST("/cinemas", h.CreateCinema)
	g.POST("/cinemas/:id/repertoire", h.AddToRepertoire)

	// ---- Rooms ----
	// Rooms are keyed by their physical number, so PUT is a natural upsert.
	g.PUT("/rooms/:number", h.UpsertRoom)

	// ---- Screenings ----
	g.POST("/screenings", h.CreateScreening)
	g.DELETE("/screenings/:id", h.DeleteScreening)
}
