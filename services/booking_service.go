package services

import (
	"errors"
	"log"
	"math"
	"time"

	config "github.com/anjiri1684/consult_marketplace/configs"
	"github.com/anjiri1684/consult_marketplace/metrics"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound       = errors.New("booking not found")
	ErrInvalidTransition     = errors.New("invalid booking status transition")
	ErrNotBookingParty       = errors.New("you are not a party to this booking")
	ErrBookingAlreadyEnded   = errors.New("this booking has already ended")
	ErrBookingAlreadyStarted = errors.New("a booking that has started can no longer be cancelled")
)

// bookingTransitions is the only source of truth for the booking lifecycle.
// DISPUTED is terminal here; dispute resolution settles the booking into
// CANCELLED or COMPLETED through its own path.
var bookingTransitions = map[string][]string{
	models.BookingStatusPending:        {models.BookingStatusPaymentPending, models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusPaymentPending: {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed:      {models.BookingStatusCompleted, models.BookingStatusDisputed, models.BookingStatusCancelled},
	models.BookingStatusCompleted:      {models.BookingStatusDisputed},
	models.BookingStatusDisputed:       {models.BookingStatusCancelled, models.BookingStatusCompleted},
}

func CanTransitionBooking(from, to string) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionBooking applies a lifecycle edge, rejecting anything outside the
// graph.
func TransitionBooking(tx *gorm.DB, booking *models.Booking, to string) error {
	if !CanTransitionBooking(booking.Status, to) {
		return ErrInvalidTransition
	}
	booking.Status = to
	if err := tx.Save(booking).Error; err != nil {
		return err
	}
	metrics.BookingTransitions.WithLabelValues(to).Inc()
	return nil
}

// CommissionAmount is the platform's cut of a provider earning base.
func CommissionAmount(base int64) int64 {
	rate := config.ConfigFloat("PLATFORM_COMMISSION_RATE", 0.20)
	return int64(math.Round(rate * float64(base)))
}

// RefundableAmount is what the seeker can still get back on a booking:
// completed payments minus refunds already issued. The result is never
// negative.
func RefundableAmount(tx *gorm.DB, bookingID uuid.UUID) (int64, error) {
	var paid, refunded int64
	err := tx.Model(&models.Transaction{}).
		Where("booking_id = ? AND type = ? AND status = ?", bookingID, models.TxnTypeBookingPayment, models.TxnStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&paid).Error
	if err != nil {
		return 0, err
	}
	err = tx.Model(&models.Transaction{}).
		Where("booking_id = ? AND type = ? AND status = ?", bookingID, models.TxnTypeRefund, models.TxnStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&refunded).Error
	if err != nil {
		return 0, err
	}
	if refunded >= paid {
		return 0, nil
	}
	return paid - refunded, nil
}

// CancelBookingBySeeker cancels an unstarted booking and refunds whatever the
// seeker has actually paid, crediting their wallet inside one transaction.
func CancelBookingBySeeker(db *gorm.DB, bookingID, seekerID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, "id = ?", bookingID).Error; err != nil {
			return ErrBookingNotFound
		}
		if booking.SeekerID != seekerID {
			return ErrNotBookingParty
		}
		if !CanTransitionBooking(booking.Status, models.BookingStatusCancelled) {
			return ErrInvalidTransition
		}
		// Once a confirmed session has started the dispute path is the only
		// way to money back; a unilateral cancel would refund a session the
		// seeker may have sat through.
		if booking.Status == models.BookingStatusConfirmed && !time.Now().Before(booking.StartTime) {
			return ErrBookingAlreadyStarted
		}

		refund, err := RefundableAmount(tx, booking.ID)
		if err != nil {
			return err
		}
		if refund > 0 {
			if _, err := CreditWallet(tx, booking.SeekerID, refund, models.TxnTypeRefund, &booking.ID); err != nil {
				return err
			}
		}

		// Pending payment attempts for a cancelled booking are dead.
		if err := tx.Model(&models.Transaction{}).
			Where("booking_id = ? AND status = ?", booking.ID, models.TxnStatusPending).
			Update("status", models.TxnStatusCancelled).Error; err != nil {
			return err
		}

		if err := freeSlot(tx, booking.AvailabilitySlotID); err != nil {
			return err
		}

		return TransitionBooking(tx, &booking, models.BookingStatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CompleteBooking settles a confirmed booking whose session has elapsed:
// the provider's wallet is credited with the price minus the platform
// commission, and the commission itself is recorded as a ledger entry so the
// per-booking money movement reconciles.
func CompleteBooking(db *gorm.DB, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, "id = ?", bookingID).Error; err != nil {
			return ErrBookingNotFound
		}
		if err := TransitionBooking(tx, &booking, models.BookingStatusCompleted); err != nil {
			return err
		}
		if err := settleProviderEarnings(tx, &booking, booking.Amount); err != nil {
			return err
		}
		now := tx.NowFunc()
		return tx.Model(&models.Session{}).
			Where("booking_id = ? AND ended_at IS NULL", booking.ID).
			Update("ended_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// settleProviderEarnings credits the provider for the retained portion of a
// booking and records the commission. It is a no-op when the booking has
// already been settled, so dispute resolution after completion cannot pay a
// provider twice.
func settleProviderEarnings(tx *gorm.DB, booking *models.Booking, retained int64) error {
	var settled int64
	err := tx.Model(&models.Transaction{}).
		Where("booking_id = ? AND type = ?", booking.ID, models.TxnTypeCommission).
		Count(&settled).Error
	if err != nil {
		return err
	}
	if settled > 0 || retained <= 0 {
		return nil
	}

	commission := CommissionAmount(retained)
	earnings := retained - commission
	if earnings > 0 {
		if _, err := CreditWallet(tx, booking.ProviderID, earnings, models.TxnTypeBookingPayment, &booking.ID); err != nil {
			return err
		}
	}

	commissionTxn := models.Transaction{
		UserID:    booking.ProviderID,
		BookingID: &booking.ID,
		Amount:    commission,
		Type:      models.TxnTypeCommission,
		Status:    models.TxnStatusCompleted,
	}
	return tx.Create(&commissionTxn).Error
}

// ExpireUnpaidBooking removes a booking whose payment deadline has passed
// without a completed payment. Rows are deleted rather than soft-cancelled
// so the slot can be rebooked immediately.
// TODO: issue a gateway-side refund when a late success is dropped here.
func ExpireUnpaidBooking(tx *gorm.DB, booking *models.Booking) error {
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusPaymentPending {
		return ErrInvalidTransition
	}

	if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	if err := freeSlot(tx, booking.AvailabilitySlotID); err != nil {
		return err
	}
	if err := tx.Delete(booking).Error; err != nil {
		return err
	}
	metrics.BookingTransitions.WithLabelValues("EXPIRED").Inc()
	return nil
}

func freeSlot(tx *gorm.DB, slotID *uuid.UUID) error {
	if slotID == nil {
		return nil
	}
	return tx.Model(&models.AvailabilitySlot{}).
		Where("id = ?", slotID).
		Update("status", models.SlotStatusAvailable).Error
}

// DeleteUserCascade removes a user and everything hanging off them in one
// atomic transaction. Live bookings are force-cancelled first, refunding
// completed payments into the counterparty's wallet, then dependents are
// deleted in referential-integrity order.
func DeleteUserCascade(db *gorm.DB, userID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return errors.New("user not found")
		}

		var liveBookings []models.Booking
		liveStatuses := []string{models.BookingStatusPending, models.BookingStatusPaymentPending, models.BookingStatusConfirmed}
		if err := tx.Where("(seeker_id = ? OR provider_id = ?) AND status IN ?", userID, userID, liveStatuses).
			Find(&liveBookings).Error; err != nil {
			return err
		}

		for i := range liveBookings {
			booking := &liveBookings[i]

			refund, err := RefundableAmount(tx, booking.ID)
			if err != nil {
				return err
			}
			if refund > 0 {
				counterparty := booking.SeekerID
				if counterparty == userID {
					counterparty = booking.ProviderID
				}
				// No booking reference on these refunds: the booking rows
				// are deleted below and the credit has to stay auditable.
				if _, err := CreditWallet(tx, counterparty, refund, models.TxnTypeRefund, nil); err != nil {
					return err
				}
			}
			if err := freeSlot(tx, booking.AvailabilitySlotID); err != nil {
				return err
			}
			booking.Status = models.BookingStatusCancelled
			if err := tx.Save(booking).Error; err != nil {
				return err
			}
		}

		var bookingIDs []uuid.UUID
		if err := tx.Model(&models.Booking{}).
			Where("seeker_id = ? OR provider_id = ?", userID, userID).
			Pluck("id", &bookingIDs).Error; err != nil {
			return err
		}

		if len(bookingIDs) > 0 {
			if err := tx.Where("booking_id IN ?", bookingIDs).Delete(&models.Dispute{}).Error; err != nil {
				return err
			}
			if err := tx.Where("booking_id IN ?", bookingIDs).Delete(&models.Session{}).Error; err != nil {
				return err
			}

			var conversationIDs []uuid.UUID
			if err := tx.Model(&models.Conversation{}).
				Where("booking_id IN ?", bookingIDs).
				Pluck("id", &conversationIDs).Error; err != nil {
				return err
			}
			if len(conversationIDs) > 0 {
				if err := tx.Where("conversation_id IN ?", conversationIDs).Delete(&models.Message{}).Error; err != nil {
					return err
				}
				if err := tx.Exec("DELETE FROM conversation_participants WHERE conversation_id IN ?", conversationIDs).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", conversationIDs).Delete(&models.Conversation{}).Error; err != nil {
					return err
				}
			}

			if err := tx.Where("booking_id IN ?", bookingIDs).Delete(&models.Transaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", bookingIDs).Delete(&models.Booking{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}

		var payoutIDs []uuid.UUID
		if err := tx.Model(&models.Payout{}).Where("provider_id = ?", userID).Pluck("id", &payoutIDs).Error; err != nil {
			return err
		}
		if len(payoutIDs) > 0 {
			if err := tx.Where("payout_id IN ?", payoutIDs).Delete(&models.PayoutAuditLog{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", payoutIDs).Delete(&models.Payout{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("provider_id = ?", userID).Delete(&models.BankAccount{}).Error; err != nil {
			return err
		}
		if err := tx.Where("provider_id = ?", userID).Delete(&models.AvailabilitySlot{}).Error; err != nil {
			return err
		}
		if err := tx.Where("seeker_id = ?", userID).Delete(&models.UnmatchedRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Provider{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Wallet{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(&user).Error; err != nil {
			return err
		}

		log.Printf("Deleted user %s and %d associated booking(s)", userID, len(bookingIDs))
		return nil
	})
}
