package routes

import (
	"github.com/anjiri1684/consult_marketplace/handlers"
	"github.com/anjiri1684/consult_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	bookings := api.Group("/bookings", middleware.Protected())
	bookings.Post("", handlers.CreateBooking)
	bookings.Get("/my", handlers.GetMyBookings)
	bookings.Get("/provider", middleware.ProviderRequired(), handlers.GetMyProviderBookings)
	bookings.Post("/:bookingId/retry-payment", handlers.RetryPayment)
	bookings.Post("/:bookingId/cancel", handlers.CancelBooking)
	bookings.Post("/:bookingId/complete", middleware.ProviderRequired(), handlers.CompleteBooking)
	bookings.Post("/:bookingId/dispute", handlers.OpenDispute)
	bookings.Get("/:bookingId/session", handlers.GetBookingSession)
	bookings.Get("/:bookingId/conversation", handlers.GetBookingConversation)

	api.Post("/unmatched-requests", middleware.Protected(), handlers.CreateUnmatchedRequest)
}
