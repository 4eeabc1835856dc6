package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onebyte2016/alx-travel-app-0x03/handlers"
	"github.com/onebyte2016/alx-travel-app-0x03/middleware"
)

func PaymentRoutes(app *fiber.App, h *handlers.PaymentHandler) {
	api := app.Group("/api/v1")

	// Server-to-server callback from Chapa, no session.
	api.Get("/payments/chapa/callback", h.ChapaCallback)
	api.Post("/payments/chapa/callback", h.ChapaCallback)

	protected := api.Group("", middleware.Protected())
	protected.Post("/bookings/:bookingId/pay", h.InitiateBookingPayment)
	protected.Get("/payments/verify", h.VerifyPayment)
	protected.Post("/payments/verify", h.VerifyPayment)
	protected.Post("/payments/cancel", h.CancelPayment)
}
