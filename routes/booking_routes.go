package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wekesadev/park_spot/handlers"
	"github.com/wekesadev/park_spot/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Post("", handlers.CreateBooking)
	booking.Post("/:bookingId/cancel", handlers.CancelBooking)

	lenderBooking := api.Group("/lender/bookings", middleware.Protected(), middleware.LenderRequired())
	lenderBooking.Get("", handlers.GetLenderBookings)
	lenderBooking.Post("/:bookingId/complete", handlers.CompleteBooking)
}
