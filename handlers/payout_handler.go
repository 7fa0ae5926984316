package handlers

import (
	"errors"
	"fmt"

	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/notifications"
	"github.com/anjiri1684/consult_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayoutRequestBody struct {
	BankAccountID string `json:"bank_account_id" validate:"required,uuid"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
}

func RequestPayout(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))

	var req PayoutRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	bankAccountID, _ := uuid.Parse(req.BankAccountID)

	payout, err := services.RequestPayout(database.DB, providerID, bankAccountID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientBalance):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Insufficient available balance for this payout request"})
		case errors.Is(err, services.ErrBelowMinimumPayout):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("Minimum payout amount is %d", services.MinPayoutAmount())})
		case errors.Is(err, services.ErrBankAccountNotVerified):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Your bank account must be verified before requesting a payout"})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payout request submitted successfully.",
		"payout":  payout,
	})
}

func GetMyPayouts(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))

	var payouts []models.Payout
	database.DB.
		Preload("AuditLogs").
		Where("provider_id = ?", providerID).
		Order("created_at desc").
		Find(&payouts)
	return c.JSON(payouts)
}

func ListPayoutRequests(c *fiber.Ctx) error {
	status := c.Query("status", models.PayoutStatusRequested)
	var payouts []models.Payout
	database.DB.
		Preload("Provider").
		Preload("BankAccount").
		Where("status = ?", status).
		Order("created_at asc").
		Find(&payouts)
	return c.JSON(payouts)
}

type ProcessPayoutRequestBody struct {
	Decision        string `json:"decision" validate:"required,oneof=approve reject"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// ProcessPayoutRequest is the admin decision on a REQUESTED payout:
// approve fixes the post-fee amount, reject demands a reason and returns the
// reserved funds.
func ProcessPayoutRequest(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	adminID, _ := uuid.Parse(claims["user_id"].(string))
	payoutID, err := uuid.Parse(c.Params("payoutId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout ID"})
	}

	var req ProcessPayoutRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var payout *models.Payout
	if req.Decision == "approve" {
		payout, err = services.ApprovePayout(database.DB, payoutID, adminID)
	} else {
		if req.RejectionReason == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rejection_reason is required when rejecting"})
		}
		payout, err = services.RejectPayout(database.DB, payoutID, adminID, req.RejectionReason)
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPayoutNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payout request not found"})
		case errors.Is(err, services.ErrInvalidPayoutState):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Payout has already been processed"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process payout request"})
		}
	}

	go notifyPayoutDecision(payout, req.Decision, req.RejectionReason)

	return c.JSON(fiber.Map{"message": "Payout request processed.", "payout": payout})
}

// MarkPayoutProcessing, MarkPayoutCompleted and MarkPayoutFailed walk an
// approved payout through the transfer lifecycle.
func MarkPayoutProcessing(c *fiber.Ctx) error {
	return advancePayoutHandler(c, services.MarkPayoutProcessing)
}

func MarkPayoutCompleted(c *fiber.Ctx) error {
	return advancePayoutHandler(c, services.MarkPayoutCompleted)
}

func MarkPayoutFailed(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	adminID, _ := uuid.Parse(claims["user_id"].(string))
	payoutID, err := uuid.Parse(c.Params("payoutId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout ID"})
	}

	type Request struct {
		Details string `json:"details"`
	}
	var req Request
	c.BodyParser(&req)

	payout, err := services.MarkPayoutFailed(database.DB, payoutID, adminID, req.Details)
	if err != nil {
		return payoutServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payout marked as failed and funds returned.", "payout": payout})
}

func advancePayoutHandler(c *fiber.Ctx, fn func(db *gorm.DB, payoutID, adminID uuid.UUID) (*models.Payout, error)) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	adminID, _ := uuid.Parse(claims["user_id"].(string))
	payoutID, err := uuid.Parse(c.Params("payoutId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout ID"})
	}

	payout, err := fn(database.DB, payoutID, adminID)
	if err != nil {
		return payoutServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payout updated.", "payout": payout})
}

func payoutServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPayoutNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payout request not found"})
	case errors.Is(err, services.ErrInvalidPayoutState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Payout is not in a state that allows this action"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update payout"})
	}
}

func notifyPayoutDecision(payout *models.Payout, decision, reason string) {
	var provider models.User
	if err := database.DB.First(&provider, "id = ?", payout.ProviderID).Error; err != nil {
		return
	}

	if decision == "approve" {
		notifications.SendEmail("", provider.Email,
			"Your Payout Has Been Approved",
			fmt.Sprintf("<h1>Payout Approved</h1><p>Your payout request for ₹%d has been approved and will be transferred shortly.</p>", payout.RequestedAmount),
		)
	} else {
		notifications.SendEmail("", provider.Email,
			"Update on Your Payout Request",
			fmt.Sprintf("<h1>Payout Request Update</h1><p>Your payout request for ₹%d was rejected. The funds have been returned to your wallet balance.</p><p><b>Reason:</b> %s</p>", payout.RequestedAmount, reason),
		)
	}
}
