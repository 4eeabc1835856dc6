package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onebyte2016/alx-travel-app-0x03/handlers"
	"github.com/onebyte2016/alx-travel-app-0x03/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Guests may create bookings; everything else needs a session.
	api.Post("/bookings", middleware.OptionalAuth(), handlers.CreateBooking)

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Get("/:bookingId", handlers.GetBooking)
}
