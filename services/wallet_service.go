package services

import (
	"errors"

	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreditWallet adds funds to a user's wallet and records the matching
// completed Transaction row in the same database transaction. A wallet is
// never mutated without its ledger entry.
func CreditWallet(tx *gorm.DB, userID uuid.UUID, amount int64, txnType string, bookingID *uuid.UUID) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, errors.New("credit amount must be positive")
	}

	result := tx.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errors.New("wallet not found")
	}

	txn := models.Transaction{
		UserID:    userID,
		BookingID: bookingID,
		Amount:    amount,
		Type:      txnType,
		Status:    models.TxnStatusCompleted,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// ReserveForPayout moves funds from the spendable balance into the pending
// hold. The balance check and debit are a single conditional UPDATE, so a
// concurrent request cannot overdraw.
func ReserveForPayout(tx *gorm.DB, userID uuid.UUID, amount int64) error {
	result := tx.Model(&models.Wallet{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance":        gorm.Expr("balance - ?", amount),
			"pending_amount": gorm.Expr("pending_amount + ?", amount),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// ReleasePayoutHold returns reserved funds to the spendable balance after a
// rejected or failed payout.
func ReleasePayoutHold(tx *gorm.DB, userID uuid.UUID, amount int64) error {
	result := tx.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":        gorm.Expr("balance + ?", amount),
			"pending_amount": gorm.Expr("pending_amount - ?", amount),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("wallet not found")
	}
	return nil
}

// SettlePayoutHold burns the pending hold once a payout has been paid out.
func SettlePayoutHold(tx *gorm.DB, userID uuid.UUID, amount int64) error {
	result := tx.Model(&models.Wallet{}).
		Where("user_id = ? AND pending_amount >= ?", userID, amount).
		Update("pending_amount", gorm.Expr("pending_amount - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("pending amount does not cover this payout")
	}
	return nil
}

var ErrInsufficientBalance = errors.New("insufficient wallet balance")
