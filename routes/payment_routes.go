package routes

import (
	"github.com/anjiri1684/consult_marketplace/handlers"
	"github.com/anjiri1684/consult_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Gateway callback, authenticated by signature rather than JWT.
	api.Post("/payments/webhook", handlers.HandlePaymentWebhook)

	wallet := api.Group("/wallet", middleware.Protected())
	wallet.Get("", handlers.GetMyWallet)
	wallet.Get("/transactions", handlers.GetMyTransactions)
	wallet.Post("/topup", handlers.InitiateTopup)
}
