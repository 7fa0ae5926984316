package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	config "github.com/anjiri1684/consult_marketplace/configs"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/notifications"
	"github.com/anjiri1684/consult_marketplace/utils"
	"gorm.io/gorm"
)

// Webhook event types delivered by the payment gateway. Anything else is
// logged and ignored.
const (
	EventPaymentSuccess     = "PAYMENT_SUCCESS_WEBHOOK"
	EventPaymentFailed      = "PAYMENT_FAILED_WEBHOOK"
	EventPaymentUserDropped = "PAYMENT_USER_DROPPED_WEBHOOK"
)

type WebhookEvent struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

type WebhookData struct {
	Order struct {
		OrderID string `json:"order_id"`
	} `json:"order"`
	Payment struct {
		CfPaymentID   string `json:"cf_payment_id"`
		PaymentAmount int64  `json:"payment_amount"`
	} `json:"payment"`
}

// HandlePaymentSuccess drives a gateway success event through the booking
// lifecycle. It tolerates at-least-once delivery: a missing transaction or
// booking, or one already completed, is a logged no-op. The deadline check
// uses the wall clock passed in by the caller; a success arriving at or after
// startTime minus the payment window deletes the orphaned booking and
// transaction instead of confirming a slot that may have been reassigned.
// The returned emails must be dispatched only after the transaction commits.
func HandlePaymentSuccess(db *gorm.DB, event WebhookEvent, now time.Time) ([]notifications.Email, error) {
	var emails []notifications.Email

	err := db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.Where("gateway_order_id = ?", event.Data.Order.OrderID).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Webhook success for unknown order %s, ignoring", event.Data.Order.OrderID)
				return nil
			}
			return err
		}

		if txn.Status == models.TxnStatusCompleted {
			log.Printf("Webhook for order %s already processed", event.Data.Order.OrderID)
			return nil
		}

		if txn.Type == models.TxnTypeTopup {
			return completeTopup(tx, &txn, event)
		}

		if txn.BookingID == nil {
			log.Printf("Webhook success for order %s has no booking, ignoring", event.Data.Order.OrderID)
			return nil
		}

		var booking models.Booking
		if err := tx.First(&booking, "id = ?", txn.BookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Booking for order %s no longer exists, ignoring", event.Data.Order.OrderID)
				return nil
			}
			return err
		}

		if booking.Status == models.BookingStatusConfirmed {
			return nil
		}

		if !now.Before(booking.PaymentDeadline()) {
			log.Printf("Late payment success for booking %s, deleting orphaned rows", booking.ID)
			return ExpireUnpaidBooking(tx, &booking)
		}

		txn.Status = models.TxnStatusCompleted
		if event.Data.Payment.CfPaymentID != "" {
			txn.GatewayPaymentID = &event.Data.Payment.CfPaymentID
		}
		if err := tx.Save(&txn).Error; err != nil {
			return err
		}

		meetURL := utils.GenerateMeetURL()
		booking.MeetURL = &meetURL
		if err := TransitionBooking(tx, &booking, models.BookingStatusConfirmed); err != nil {
			return err
		}

		chatWindow := time.Duration(config.ConfigInt64("CHAT_WINDOW_HOURS", 72)) * time.Hour
		session := models.Session{
			BookingID:     booking.ID,
			ChatExpiresAt: booking.EndTime.Add(chatWindow),
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		emails = confirmationEmails(tx, &booking, meetURL)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func completeTopup(tx *gorm.DB, txn *models.Transaction, event WebhookEvent) error {
	result := tx.Model(&models.Wallet{}).
		Where("user_id = ?", txn.UserID).
		Update("balance", gorm.Expr("balance + ?", txn.Amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("wallet not found for topup")
	}
	txn.Status = models.TxnStatusCompleted
	if event.Data.Payment.CfPaymentID != "" {
		txn.GatewayPaymentID = &event.Data.Payment.CfPaymentID
	}
	return tx.Save(txn).Error
}

// HandlePaymentFailure marks the transaction failed; the booking stays in
// PAYMENT_PENDING so the seeker can retry.
func HandlePaymentFailure(db *gorm.DB, event WebhookEvent) error {
	return markTransactionDead(db, event, models.TxnStatusFailed)
}

// HandlePaymentDropped marks the transaction cancelled after the payer
// abandoned the gateway checkout.
func HandlePaymentDropped(db *gorm.DB, event WebhookEvent) error {
	return markTransactionDead(db, event, models.TxnStatusCancelled)
}

func markTransactionDead(db *gorm.DB, event WebhookEvent, status string) error {
	var txn models.Transaction
	if err := db.Where("gateway_order_id = ?", event.Data.Order.OrderID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Webhook %s for unknown order %s, ignoring", event.Type, event.Data.Order.OrderID)
			return nil
		}
		return err
	}
	if txn.Status == models.TxnStatusCompleted {
		// A success already landed; a late failure event changes nothing.
		return nil
	}
	return db.Model(&txn).Update("status", status).Error
}

func confirmationEmails(tx *gorm.DB, booking *models.Booking, meetURL string) []notifications.Email {
	var emails []notifications.Email

	var seeker, provider models.User
	var seekerProfile, providerProfile models.Profile
	if err := tx.First(&seeker, "id = ?", booking.SeekerID).Error; err != nil {
		return nil
	}
	if err := tx.First(&provider, "id = ?", booking.ProviderID).Error; err != nil {
		return nil
	}
	tx.First(&seekerProfile, "user_id = ?", booking.SeekerID)
	tx.First(&providerProfile, "user_id = ?", booking.ProviderID)

	body := fmt.Sprintf(
		"<h1>Booking Confirmed</h1><p>Your consultation on %s is confirmed.</p><p><b>Meeting Link:</b> <a href='%s'>Join Session</a></p>",
		booking.StartTime.Format("Monday, January 2 at 3:04 PM"), meetURL,
	)

	emails = append(emails, notifications.Email{
		ToName:  seekerProfile.FullName,
		ToEmail: seeker.Email,
		Subject: "Your Booking is Confirmed!",
		HTML:    body,
	})
	emails = append(emails, notifications.Email{
		ToName:  providerProfile.FullName,
		ToEmail: provider.Email,
		Subject: "You Have a New Booking!",
		HTML:    body,
	})
	return emails
}
