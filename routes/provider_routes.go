package routes

import (
	"github.com/anjiri1684/consult_marketplace/handlers"
	"github.com/anjiri1684/consult_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProviderRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/providers/apply", middleware.Protected(), handlers.ApplyAsProvider)

	provider := api.Group("/provider", middleware.Protected(), middleware.ProviderRequired())
	provider.Put("/profile", handlers.UpdateProviderProfile)

	slots := provider.Group("/slots")
	slots.Post("", handlers.CreateAvailabilitySlot)
	slots.Get("", handlers.GetMySlots)
	slots.Delete("/:slotId", handlers.DeleteAvailabilitySlot)

	bankAccounts := provider.Group("/bank-accounts")
	bankAccounts.Post("", handlers.AddBankAccount)
	bankAccounts.Get("", handlers.GetMyBankAccounts)
	bankAccounts.Post("/:accountId/verify", handlers.VerifyPennyAmount)
	bankAccounts.Delete("/:accountId", handlers.DeleteBankAccount)

	payouts := provider.Group("/payouts")
	payouts.Post("", handlers.RequestPayout)
	payouts.Get("", handlers.GetMyPayouts)
}
