package handlers

import (
	"errors"

	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/notifications"
	"github.com/anjiri1684/consult_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type OpenDisputeRequest struct {
	Reason      string  `json:"reason" validate:"required,min=10"`
	EvidenceURL *string `json:"evidence_url,omitempty"`
}

func OpenDispute(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	initiatorID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var req OpenDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	dispute, err := services.OpenDispute(database.DB, bookingID, initiatorID, req.Reason, req.EvidenceURL)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		case errors.Is(err, services.ErrNotBookingParty):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not a party to this booking"})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(dispute)
}

func ListOpenDisputes(c *fiber.Ctx) error {
	var disputes []models.Dispute
	database.DB.
		Preload("Booking").
		Where("status = ?", models.DisputeStatusOpen).
		Order("created_at asc").
		Find(&disputes)
	return c.JSON(disputes)
}

type ResolveDisputeRequest struct {
	Resolution    string `json:"resolution" validate:"required,oneof=REFUND_SEEKER FAVOR_PROVIDER PARTIAL_REFUND"`
	PartialAmount *int64 `json:"partial_amount,omitempty"`
	Note          string `json:"note" validate:"required"`
}

func ResolveDispute(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	resolverID, _ := uuid.Parse(claims["user_id"].(string))
	disputeID, err := uuid.Parse(c.Params("disputeId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid dispute ID"})
	}

	var req ResolveDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	dispute, err := services.ResolveDispute(database.DB, disputeID, resolverID, req.Resolution, req.PartialAmount, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDisputeNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Dispute not found"})
		case errors.Is(err, services.ErrDisputeAlreadyResolved):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Dispute has already been resolved"})
		case errors.Is(err, services.ErrInvalidRefundAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve dispute"})
		}
	}

	go notifyDisputeParties(dispute)

	return c.JSON(fiber.Map{"message": "Dispute resolved.", "dispute": dispute})
}

func notifyDisputeParties(dispute *models.Dispute) {
	var booking models.Booking
	if err := database.DB.Preload("Seeker").Preload("Provider").First(&booking, "id = ?", dispute.BookingID).Error; err != nil {
		return
	}

	body := "<h1>Dispute Resolved</h1><p>Your dispute has been reviewed by our team. Check your dashboard for the outcome.</p>"
	notifications.SendEmail("", booking.Seeker.Email, "Update on Your Dispute", body)
	notifications.SendEmail("", booking.Provider.Email, "Update on Your Dispute", body)
}
