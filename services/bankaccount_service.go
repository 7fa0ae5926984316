package services

import (
	"errors"
	"log"

	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/payments"
	"github.com/anjiri1684/consult_marketplace/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBankAccountNotFound     = errors.New("bank account not found")
	ErrPennyTestNotSent        = errors.New("no penny test is pending on this account")
	ErrPennyAmountMismatch     = errors.New("submitted amount does not match the deposit")
	ErrPennyAttemptsExhausted  = errors.New("penny test attempts exhausted, account rejected")
	ErrPennyTestAlreadyPending = errors.New("a penny test is already pending on this account")
)

// SendPennyTest moves a PENDING bank account to PENNY_TEST_SENT with a fresh
// random deposit amount. The actual transfer to the bank is best-effort; the
// verification state machine does not wait on it.
func SendPennyTest(db *gorm.DB, accountID, staffID uuid.UUID) (*models.BankAccount, error) {
	var account models.BankAccount
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, "id = ?", accountID).Error; err != nil {
			return ErrBankAccountNotFound
		}
		if account.VerificationStatus == models.BankVerificationPennyTestSent {
			return ErrPennyTestAlreadyPending
		}
		if account.VerificationStatus != models.BankVerificationPending {
			return errors.New("penny tests can only be sent to pending accounts")
		}

		amount := utils.GeneratePennyAmount()
		account.VerificationStatus = models.BankVerificationPennyTestSent
		account.PennyAmount = &amount
		account.PennyTestAttempts = 0
		return tx.Save(&account).Error
	})
	if err != nil {
		return nil, err
	}

	// The amount is copied out before the goroutine starts; PennyAmount on
	// the struct is cleared again once verification settles.
	pennyAmount := *account.PennyAmount
	go func() {
		if err := payments.InitiatePennyDrop(account.AccountNumber, account.IFSCCode, pennyAmount); err != nil {
			log.Printf("🔥 Penny drop transfer for account %s failed: %v", account.ID, err)
		}
	}()

	return &account, nil
}

// VerifyPennyAmount checks the amount the account owner claims to have
// received. Three wrong answers reject the account outright; after that every
// further submission is refused and the provider must re-submit the account.
func VerifyPennyAmount(db *gorm.DB, accountID, providerID uuid.UUID, amount int64) (*models.BankAccount, error) {
	var account models.BankAccount

	// A wrong guess still has to commit its attempt counter, so the closure
	// only returns errors that should roll back; the verdict for the caller
	// is mapped after the transaction.
	var verdict error
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND provider_id = ?", accountID, providerID).First(&account).Error; err != nil {
			return ErrBankAccountNotFound
		}

		switch account.VerificationStatus {
		case models.BankVerificationRejected:
			return ErrPennyAttemptsExhausted
		case models.BankVerificationPennyTestSent:
			// proceed
		default:
			return ErrPennyTestNotSent
		}

		if account.PennyAmount != nil && amount == *account.PennyAmount {
			account.VerificationStatus = models.BankVerificationVerified
			account.PennyAmount = nil
			return tx.Save(&account).Error
		}

		account.PennyTestAttempts++
		if account.PennyTestAttempts >= models.MaxPennyTestAttempts {
			account.VerificationStatus = models.BankVerificationRejected
			account.PennyAmount = nil
			verdict = ErrPennyAttemptsExhausted
		} else {
			verdict = ErrPennyAmountMismatch
		}
		return tx.Save(&account).Error
	})
	if err != nil {
		return &account, err
	}
	if verdict != nil {
		return &account, verdict
	}
	return &account, nil
}
