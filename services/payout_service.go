package services

import (
	"errors"
	"fmt"
	"math"

	config "github.com/anjiri1684/consult_marketplace/configs"
	"github.com/anjiri1684/consult_marketplace/metrics"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPayoutNotFound         = errors.New("payout request not found")
	ErrBankAccountNotVerified = errors.New("bank account is not verified")
	ErrBelowMinimumPayout     = errors.New("requested amount is below the platform minimum")
	ErrInvalidPayoutState     = errors.New("payout is not in a state that allows this action")
)

func MinPayoutAmount() int64 {
	return config.ConfigInt64("MIN_PAYOUT_AMOUNT", 500)
}

func payoutFee(amount int64) int64 {
	rate := config.ConfigFloat("PAYOUT_FEE_RATE", 0.02)
	return int64(math.Round(rate * float64(amount)))
}

func appendPayoutLog(tx *gorm.DB, payoutID uuid.UUID, action, details string, performedBy uuid.UUID) error {
	entry := models.PayoutAuditLog{
		PayoutID:    payoutID,
		Action:      action,
		PerformedBy: performedBy,
	}
	if details != "" {
		entry.Details = &details
	}
	return tx.Create(&entry).Error
}

// RequestPayout reserves wallet funds and opens a REQUESTED payout. The
// provider must own a VERIFIED bank account, the amount must meet the
// platform minimum, and only the spendable balance counts; funds already
// held for other payouts cannot back a new one.
func RequestPayout(db *gorm.DB, providerID, bankAccountID uuid.UUID, amount int64) (*models.Payout, error) {
	if amount < MinPayoutAmount() {
		return nil, ErrBelowMinimumPayout
	}

	var payout models.Payout
	err := db.Transaction(func(tx *gorm.DB) error {
		var account models.BankAccount
		if err := tx.Where("id = ? AND provider_id = ?", bankAccountID, providerID).First(&account).Error; err != nil {
			return errors.New("bank account not found")
		}
		if account.VerificationStatus != models.BankVerificationVerified {
			return ErrBankAccountNotVerified
		}

		if err := ReserveForPayout(tx, providerID, amount); err != nil {
			return err
		}

		payout = models.Payout{
			ProviderID:      providerID,
			BankAccountID:   bankAccountID,
			RequestedAmount: amount,
			Status:          models.PayoutStatusRequested,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return err
		}

		txn := models.Transaction{
			UserID: providerID,
			Amount: amount,
			Type:   models.TxnTypePayout,
			Status: models.TxnStatusPending,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		return appendPayoutLog(tx, payout.ID, "REQUESTED",
			fmt.Sprintf("payout of %d requested", amount), providerID)
	})
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// ApprovePayout moves REQUESTED → APPROVED and fixes the actual amount after
// the transfer fee.
func ApprovePayout(db *gorm.DB, payoutID, adminID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payout, "id = ?", payoutID).Error; err != nil {
			return ErrPayoutNotFound
		}
		if payout.Status != models.PayoutStatusRequested {
			return ErrInvalidPayoutState
		}

		actual := payout.RequestedAmount - payoutFee(payout.RequestedAmount)
		payout.Status = models.PayoutStatusApproved
		payout.ActualAmount = &actual
		if err := tx.Save(&payout).Error; err != nil {
			return err
		}

		return appendPayoutLog(tx, payout.ID, "APPROVED",
			fmt.Sprintf("actual amount after fee: %d", actual), adminID)
	})
	if err != nil {
		return nil, err
	}
	metrics.PayoutDecisions.WithLabelValues("approved").Inc()
	return &payout, nil
}

// RejectPayout moves REQUESTED → REJECTED with a mandatory reason and returns
// the reserved funds to the provider's wallet.
func RejectPayout(db *gorm.DB, payoutID, adminID uuid.UUID, reason string) (*models.Payout, error) {
	if reason == "" {
		return nil, errors.New("rejection reason is required")
	}

	var payout models.Payout
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payout, "id = ?", payoutID).Error; err != nil {
			return ErrPayoutNotFound
		}
		if payout.Status != models.PayoutStatusRequested {
			return ErrInvalidPayoutState
		}

		if err := ReleasePayoutHold(tx, payout.ProviderID, payout.RequestedAmount); err != nil {
			return err
		}
		if err := cancelPendingPayoutTxn(tx, payout.ProviderID, payout.RequestedAmount, models.TxnStatusCancelled); err != nil {
			return err
		}

		payout.Status = models.PayoutStatusRejected
		payout.RejectionReason = &reason
		if err := tx.Save(&payout).Error; err != nil {
			return err
		}

		return appendPayoutLog(tx, payout.ID, "REJECTED", reason, adminID)
	})
	if err != nil {
		return nil, err
	}
	metrics.PayoutDecisions.WithLabelValues("rejected").Inc()
	return &payout, nil
}

// MarkPayoutProcessing moves APPROVED → PROCESSING when the transfer is
// handed to the bank.
func MarkPayoutProcessing(db *gorm.DB, payoutID, adminID uuid.UUID) (*models.Payout, error) {
	return advancePayout(db, payoutID, adminID, models.PayoutStatusApproved, models.PayoutStatusProcessing, "PROCESSING", "")
}

// MarkPayoutCompleted settles the payout: the pending hold is burned and the
// PAYOUT ledger entry completes.
func MarkPayoutCompleted(db *gorm.DB, payoutID, adminID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payout, "id = ?", payoutID).Error; err != nil {
			return ErrPayoutNotFound
		}
		if payout.Status != models.PayoutStatusProcessing {
			return ErrInvalidPayoutState
		}

		if err := SettlePayoutHold(tx, payout.ProviderID, payout.RequestedAmount); err != nil {
			return err
		}
		if err := cancelPendingPayoutTxn(tx, payout.ProviderID, payout.RequestedAmount, models.TxnStatusCompleted); err != nil {
			return err
		}

		now := tx.NowFunc()
		payout.Status = models.PayoutStatusCompleted
		payout.ProcessedAt = &now
		if err := tx.Save(&payout).Error; err != nil {
			return err
		}

		return appendPayoutLog(tx, payout.ID, "COMPLETED", "", adminID)
	})
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// MarkPayoutFailed returns funds after a transfer that bounced post-approval.
func MarkPayoutFailed(db *gorm.DB, payoutID, adminID uuid.UUID, details string) (*models.Payout, error) {
	var payout models.Payout
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payout, "id = ?", payoutID).Error; err != nil {
			return ErrPayoutNotFound
		}
		if payout.Status != models.PayoutStatusApproved && payout.Status != models.PayoutStatusProcessing {
			return ErrInvalidPayoutState
		}

		if err := ReleasePayoutHold(tx, payout.ProviderID, payout.RequestedAmount); err != nil {
			return err
		}
		if err := cancelPendingPayoutTxn(tx, payout.ProviderID, payout.RequestedAmount, models.TxnStatusFailed); err != nil {
			return err
		}

		payout.Status = models.PayoutStatusFailed
		if err := tx.Save(&payout).Error; err != nil {
			return err
		}

		return appendPayoutLog(tx, payout.ID, "FAILED", details, adminID)
	})
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func advancePayout(db *gorm.DB, payoutID, performerID uuid.UUID, from, to, action, details string) (*models.Payout, error) {
	var payout models.Payout
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payout, "id = ?", payoutID).Error; err != nil {
			return ErrPayoutNotFound
		}
		if payout.Status != from {
			return ErrInvalidPayoutState
		}
		payout.Status = to
		if err := tx.Save(&payout).Error; err != nil {
			return err
		}
		return appendPayoutLog(tx, payout.ID, action, details, performerID)
	})
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func cancelPendingPayoutTxn(tx *gorm.DB, providerID uuid.UUID, amount int64, status string) error {
	var txn models.Transaction
	err := tx.Where("user_id = ? AND type = ? AND status = ? AND amount = ?",
		providerID, models.TxnTypePayout, models.TxnStatusPending, amount).
		Order("created_at asc").First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return tx.Model(&txn).Update("status", status).Error
}
