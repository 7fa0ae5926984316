package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	config "github.com/anjiri1684/consult_marketplace/configs"
	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/notifications"
	"github.com/anjiri1684/consult_marketplace/payments"
	"github.com/anjiri1684/consult_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateBookingRequest struct {
	AvailabilitySlotID string `json:"availability_slot_id" validate:"required,uuid"`
	Phone              string `json:"phone,omitempty"`
}

func CreateBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	seekerID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	slotID, _ := uuid.Parse(req.AvailabilitySlotID)

	var seeker models.User
	if err := database.DB.First(&seeker, "id = ?", seekerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var booking models.Booking
	var txn models.Transaction
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var slot models.AvailabilitySlot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&slot, "id = ?", slotID).Error; err != nil {
			return errors.New("availability slot not found")
		}
		if slot.Status != models.SlotStatusAvailable {
			return errors.New("this slot is no longer available")
		}
		if slot.StartTime.Before(time.Now().Add(models.PaymentDeadlineWindow)) {
			return errors.New("this slot starts too soon to complete payment")
		}

		var provider models.Provider
		if err := tx.First(&provider, "user_id = ? AND status = ?", slot.ProviderID, models.ProviderStatusActive).Error; err != nil {
			return errors.New("provider is not available for bookings")
		}

		slot.Status = models.SlotStatusBooked
		if err := tx.Save(&slot).Error; err != nil {
			return err
		}

		booking = models.Booking{
			SeekerID:           seekerID,
			ProviderID:         slot.ProviderID,
			AvailabilitySlotID: &slot.ID,
			StartTime:          slot.StartTime,
			EndTime:            slot.EndTime,
			Amount:             provider.RatePerSession,
			Status:             models.BookingStatusPending,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		txn = models.Transaction{
			UserID:    seekerID,
			BookingID: &booking.ID,
			Amount:    booking.Amount,
			Type:      models.TxnTypeBookingPayment,
			Status:    models.TxnStatusPending,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	orderID := fmt.Sprintf("booking_%s", txn.ID)
	order, err := payments.CreateOrder(orderID, booking.Amount, seekerID.String(), seeker.Email, req.Phone)
	if err != nil {
		log.Printf("🔥 CRITICAL: Cashfree order creation failed for booking %s: %v", booking.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Payment could not be initiated, please try again."})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		txn.GatewayOrderID = &order.OrderID
		if err := tx.Save(&txn).Error; err != nil {
			return err
		}
		return services.TransitionBooking(tx, &booking, models.BookingStatusPaymentPending)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record payment order"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"booking":            booking,
		"payment_session_id": order.PaymentSessionID,
		"order_id":           order.OrderID,
	})
}

// RetryPayment opens a fresh gateway order for a booking stuck in
// PAYMENT_PENDING after a failed or dropped attempt.
func RetryPayment(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	seekerID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.SeekerID != seekerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your booking"})
	}
	if booking.Status != models.BookingStatusPaymentPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only bookings awaiting payment can retry"})
	}
	if !time.Now().Before(booking.PaymentDeadline()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "The payment deadline for this booking has passed"})
	}

	var seeker models.User
	if err := database.DB.First(&seeker, "id = ?", seekerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	txn := models.Transaction{
		UserID:    seekerID,
		BookingID: &booking.ID,
		Amount:    booking.Amount,
		Type:      models.TxnTypeBookingPayment,
		Status:    models.TxnStatusPending,
	}
	if err := database.DB.Create(&txn).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment attempt"})
	}

	orderID := fmt.Sprintf("booking_%s", txn.ID)
	order, err := payments.CreateOrder(orderID, booking.Amount, seekerID.String(), seeker.Email, "")
	if err != nil {
		log.Printf("🔥 Cashfree order creation failed on retry for booking %s: %v", booking.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Payment could not be initiated, please try again."})
	}

	txn.GatewayOrderID = &order.OrderID
	database.DB.Save(&txn)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment_session_id": order.PaymentSessionID,
		"order_id":           order.OrderID,
	})
}

func CancelBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	seekerID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	booking, err := services.CancelBookingBySeeker(database.DB, bookingID, seekerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		case errors.Is(err, services.ErrNotBookingParty):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your booking"})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Booking cancelled. Any completed payment has been refunded to your wallet.",
		"booking": booking,
	})
}

func GetMyBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	seekerID, _ := uuid.Parse(claims["user_id"].(string))

	var bookings []models.Booking
	database.DB.
		Preload("Provider").
		Where("seeker_id = ?", seekerID).
		Order("start_time desc").
		Find(&bookings)

	return c.JSON(bookings)
}

func GetMyProviderBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))

	var bookings []models.Booking
	database.DB.
		Preload("Seeker").
		Where("provider_id = ?", providerID).
		Order("start_time desc").
		Find(&bookings)

	return c.JSON(bookings)
}

func CompleteBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.ProviderID != providerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the provider for this booking"})
	}
	if booking.Status != models.BookingStatusConfirmed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only confirmed bookings can be marked as complete"})
	}
	if booking.EndTime.After(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot mark a session as complete before it has ended"})
	}

	completed, err := services.CompleteBooking(database.DB, bookingID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete booking"})
	}

	go services.GenerateSessionReceipt(*completed)

	return c.JSON(fiber.Map{"message": "Booking marked as complete and earnings have been credited."})
}

type UnmatchedRequestBody struct {
	Topic         string `json:"topic" validate:"required,min=3"`
	PreferredTime string `json:"preferred_time,omitempty"`
	Budget        *int64 `json:"budget,omitempty"`
}

func CreateUnmatchedRequest(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	seekerID, _ := uuid.Parse(claims["user_id"].(string))

	var req UnmatchedRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	request := models.UnmatchedRequest{
		SeekerID: seekerID,
		Topic:    req.Topic,
		Budget:   req.Budget,
		Status:   "open",
	}
	if req.PreferredTime != "" {
		preferred, err := time.Parse(time.RFC3339, req.PreferredTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "preferred_time must be RFC3339"})
		}
		request.PreferredTime = &preferred
	}

	if err := database.DB.Create(&request).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save request"})
	}

	go notifications.SendEmail("", config.Config("ADMIN_EMAIL"), "New Unmatched Request", fmt.Sprintf("<p>A seeker is looking for: %s</p>", req.Topic))

	return c.Status(fiber.StatusCreated).JSON(request)
}
