package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onebyte2016/alx-travel-app-0x03/handlers"
	"github.com/onebyte2016/alx-travel-app-0x03/middleware"
)

func ListingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/listings", middleware.Protected(), middleware.AdminRequired())
	admin.Post("", handlers.CreateListing)
	admin.Put("/:listingId", handlers.UpdateListing)
	admin.Delete("/:listingId", handlers.DeleteListing)

	review := api.Group("/listings", middleware.Protected())
	review.Post("/:listingId/reviews", handlers.CreateReview)
}
