package routes

import (
	"github.com/anjiri1684/consult_marketplace/handlers"
	"github.com/anjiri1684/consult_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile", middleware.Protected())
	profile.Get("", handlers.GetMyProfile)
	profile.Put("", handlers.UpdateMyProfile)
	profile.Delete("", handlers.DeleteMyAccount)
}
