package services

import (
	"errors"

	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDisputeNotFound        = errors.New("dispute not found")
	ErrDisputeAlreadyResolved = errors.New("dispute has already been resolved")
	ErrInvalidRefundAmount    = errors.New("refund amount must be positive and not exceed the booking amount")
	ErrBookingNotDisputable   = errors.New("only confirmed or completed bookings can be disputed")
)

// OpenDispute raises a dispute on a confirmed or completed booking. Either
// party may initiate.
func OpenDispute(db *gorm.DB, bookingID, initiatorID uuid.UUID, reason string, evidenceURL *string) (*models.Dispute, error) {
	var dispute models.Dispute
	err := db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, "id = ?", bookingID).Error; err != nil {
			return ErrBookingNotFound
		}
		if booking.SeekerID != initiatorID && booking.ProviderID != initiatorID {
			return ErrNotBookingParty
		}
		if booking.Status != models.BookingStatusConfirmed && booking.Status != models.BookingStatusCompleted {
			return ErrBookingNotDisputable
		}

		if err := TransitionBooking(tx, &booking, models.BookingStatusDisputed); err != nil {
			return err
		}

		dispute = models.Dispute{
			BookingID:   bookingID,
			InitiatorID: initiatorID,
			Reason:      reason,
			EvidenceURL: evidenceURL,
			Status:      models.DisputeStatusOpen,
		}
		return tx.Create(&dispute).Error
	})
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

// ResolveDispute settles a dispute exactly once. REFUND_SEEKER refunds the
// full paid amount, PARTIAL_REFUND a validated slice of it, FAVOR_PROVIDER
// nothing. The refund transaction and the seeker's wallet credit land in the
// same database transaction as the dispute record; whatever the provider
// retains is settled as their earning.
func ResolveDispute(db *gorm.DB, disputeID, resolverID uuid.UUID, resolution string, partialAmount *int64, note string) (*models.Dispute, error) {
	var dispute models.Dispute
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&dispute, "id = ?", disputeID).Error; err != nil {
			return ErrDisputeNotFound
		}
		if dispute.Status != models.DisputeStatusOpen {
			return ErrDisputeAlreadyResolved
		}

		var booking models.Booking
		if err := tx.First(&booking, "id = ?", dispute.BookingID).Error; err != nil {
			return ErrBookingNotFound
		}

		refundable, err := RefundableAmount(tx, booking.ID)
		if err != nil {
			return err
		}

		var refund int64
		switch resolution {
		case models.ResolutionRefundSeeker:
			refund = refundable
		case models.ResolutionFavorProvider:
			refund = 0
		case models.ResolutionPartialRefund:
			if partialAmount == nil || *partialAmount <= 0 || *partialAmount > booking.Amount {
				return ErrInvalidRefundAmount
			}
			refund = *partialAmount
			if refund > refundable {
				return ErrInvalidRefundAmount
			}
		default:
			return errors.New("unknown resolution outcome")
		}

		if refund > 0 {
			if _, err := CreditWallet(tx, booking.SeekerID, refund, models.TxnTypeRefund, &booking.ID); err != nil {
				return err
			}
		}

		if err := settleProviderEarnings(tx, &booking, booking.Amount-refund); err != nil {
			return err
		}

		// A fully refunded booking ends cancelled; otherwise the session
		// stands as delivered.
		final := models.BookingStatusCompleted
		if resolution == models.ResolutionRefundSeeker {
			final = models.BookingStatusCancelled
		}
		if err := TransitionBooking(tx, &booking, final); err != nil {
			return err
		}

		now := tx.NowFunc()
		dispute.Status = models.DisputeStatusResolved
		dispute.Resolution = &resolution
		dispute.ResolvedByID = &resolverID
		dispute.ResolutionNote = &note
		dispute.ResolvedAt = &now
		if refund > 0 {
			dispute.RefundedAmount = &refund
		}
		return tx.Save(&dispute).Error
	})
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}
