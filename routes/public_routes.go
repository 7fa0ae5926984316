package routes

import (
	"github.com/anjiri1684/consult_marketplace/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/providers", handlers.BrowseProviders)
	api.Get("/providers/:providerId/availability", handlers.GetProviderAvailability)
}
