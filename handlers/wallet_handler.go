package handlers

import (
	"fmt"
	"log"

	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/payments"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func GetMyWallet(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var wallet models.Wallet
	if err := database.DB.First(&wallet, "user_id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wallet not found"})
	}

	return c.JSON(wallet)
}

func GetMyTransactions(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	query := database.DB.Where("user_id = ?", userID)
	if txnType := c.Query("type"); txnType != "" {
		query = query.Where("type = ?", txnType)
	}

	var transactions []models.Transaction
	query.Order("created_at desc").Limit(100).Find(&transactions)
	return c.JSON(transactions)
}

type TopupRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Phone  string `json:"phone,omitempty"`
}

// InitiateTopup creates a pending TOPUP transaction and a gateway order. The
// wallet is only credited when the success webhook lands.
func InitiateTopup(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req TopupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	txn := models.Transaction{
		UserID: userID,
		Amount: req.Amount,
		Type:   models.TxnTypeTopup,
		Status: models.TxnStatusPending,
	}
	if err := database.DB.Create(&txn).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create transaction"})
	}

	orderID := fmt.Sprintf("topup_%s", txn.ID)
	order, err := payments.CreateOrder(orderID, req.Amount, userID.String(), user.Email, req.Phone)
	if err != nil {
		log.Printf("🔥 Failed to create topup order for user %s: %v", userID, err)
		database.DB.Model(&txn).Update("status", models.TxnStatusFailed)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to initiate payment with gateway"})
	}

	if err := database.DB.Model(&models.Transaction{}).
		Where("id = ?", txn.ID).
		Update("gateway_order_id", orderID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save gateway order reference"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction_id":     txn.ID,
		"order_id":           orderID,
		"payment_session_id": order.PaymentSessionID,
	})
}

// ExportTransactionsCSV streams the full transaction ledger for offline
// reconciliation.
func ExportTransactionsCSV(c *fiber.Ctx) error {
	var transactions []models.Transaction
	if err := database.DB.Order("created_at asc").Find(&transactions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load transactions"})
	}

	csv := "id,user_id,booking_id,amount,type,status,gateway_order_id,created_at\n"
	for _, t := range transactions {
		bookingID := ""
		if t.BookingID != nil {
			bookingID = t.BookingID.String()
		}
		orderID := ""
		if t.GatewayOrderID != nil {
			orderID = *t.GatewayOrderID
		}
		csv += fmt.Sprintf("%s,%s,%s,%d,%s,%s,%s,%s\n",
			t.ID, t.UserID, bookingID, t.Amount, t.Type, t.Status, orderID,
			t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=transactions.csv")
	return c.SendString(csv)
}
