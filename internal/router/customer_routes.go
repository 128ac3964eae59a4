package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kzaleska/cinema-ticketing/internal/handler"
	"github.com/kzaleska/cinema-ticketing/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT; any authenticated account can book a seat,
// list its reservations, view a single reservation and cancel one before
// the screening starts.  Admins book like everyone else.
func RegisterCustomer(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		append([]echo.MiddlewareFunc{
			middleware.JWTAuth(jwtSecret),
			middleware.RequireRole("USER", "ADMIN"),
		}, mw...)...,
	)
	// Booking commits immediately: there is no hold step, the seat either
	// becomes the caller's or the request ends in a 409.
	g.POST("/screenings/:id/reservations", h.ReserveSeat)
	g.GET("/reservations", h.ListMyReservations)
	g.GET("/reservations/:id", h.GetReservation)
	g.DELETE("/reservations/:id", h.DeleteReservation)
}
