package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onebyte2016/alx-travel-app-0x03/handlers"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/listings", handlers.GetListings)
	api.Get("/listings/:listingId", handlers.GetListing)
	api.Get("/listings/:listingId/reviews", handlers.GetListingReviews)
}
