package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kzaleska/cinema-ticketing/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints.  Guests can
// explore the catalog and check seat availability for any screening without
// logging in; only the booking itself requires an account.  These routes
// carry no JWT or role middleware and are the primary candidates for the
// response cache.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, res *handler.ReservationHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/movies", cat.ListMovies)
	g.GET("/movies/:id", cat.GetMovie)
	g.GET("/categories", cat.ListCategories)
	g.GET("/cinemas", cat.ListCinemas)
	g.GET("/cinemas/:id/repertoire", cat.ListRepertoire)
	g.GET("/repertoire/:id/screenings", cat.ListScreenings)
	g.GET("/screenings/:id", cat.GetScreening)
	// Seat availability is a point-in-time view; a seat shown free can be
	// lost to a faster booking between the read and the reserve call.
	g.GET("/screenings/:id/seats", res.ScreeningSeats)
}
