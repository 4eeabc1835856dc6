package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onebyte2016/alx-travel-app-0x03/handlers"
	"github.com/onebyte2016/alx-travel-app-0x03/middleware"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	uploads := api.Group("/uploads", middleware.Protected(), middleware.AdminRequired())
	uploads.Get("/signature", handlers.GenerateUploadSignature)
}
