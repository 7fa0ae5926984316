package routes

import (
	"github.com/anjiri1684/consult_marketplace/handlers"
	"github.com/anjiri1684/consult_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Employees and admins share the day-to-day moderation surface.
	staff := api.Group("/staff", middleware.Protected(), middleware.StaffRequired())

	staff.Get("/applications/pending", handlers.ListPendingProviderApplications)
	staff.Put("/applications/:userId", handlers.ReviewProviderApplication)

	staff.Get("/disputes", handlers.ListOpenDisputes)
	staff.Post("/disputes/:disputeId/resolve", handlers.ResolveDispute)

	staff.Get("/bank-accounts/pending", handlers.ListPendingBankAccounts)
	staff.Post("/bank-accounts/:accountId/penny-test", handlers.SendPennyTest)

	staff.Get("/unmatched-requests", handlers.ListUnmatchedRequests)
	staff.Put("/unmatched-requests/:requestId/close", handlers.CloseUnmatchedRequest)

	// Destructive and money-moving operations stay admin only.
	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	users := admin.Group("/users")
	users.Get("", handlers.ListUsers)
	users.Put("/:userId/status", handlers.ToggleUserStatus)
	users.Delete("/:userId", handlers.AdminDeleteUser)

	admin.Get("/payout-requests", handlers.ListPayoutRequests)
	admin.Post("/payout-requests/:payoutId/process", handlers.ProcessPayoutRequest)
	admin.Post("/payout-requests/:payoutId/processing", handlers.MarkPayoutProcessing)
	admin.Post("/payout-requests/:payoutId/completed", handlers.MarkPayoutCompleted)
	admin.Post("/payout-requests/:payoutId/failed", handlers.MarkPayoutFailed)

	admin.Get("/dashboard-analytics", handlers.GetDashboardAnalytics)
	admin.Get("/bookings", handlers.ListAllBookings)

	reports := admin.Group("/reports")
	reports.Get("/transactions", handlers.ExportTransactionsCSV)
}
