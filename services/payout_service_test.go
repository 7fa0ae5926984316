package services

import (
	"errors"
	"testing"

	"github.com/anjiri1684/consult_marketplace/models"
)

func TestRequestPayoutReservesFunds(t *testing.T) {
	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	account := verifiedBankAccount(t, db, provider.ID)
	setWalletBalance(t, db, provider.ID, 2000, 0)

	payout, err := RequestPayout(db, provider.ID, account.ID, 1000)
	if err != nil {
		t.Fatalf("RequestPayout returned error: %v", err)
	}
	if payout.Status != models.PayoutStatusRequested {
		t.Fatalf("expected REQUESTED, got %s", payout.Status)
	}

	wallet := getWallet(t, db, provider.ID)
	if wallet.Balance != 1000 || wallet.PendingAmount != 1000 {
		t.Fatalf("expected balance 1000 / pending 1000, got %d / %d", wallet.Balance, wallet.PendingAmount)
	}

	var logCount int64
	db.Model(&models.PayoutAuditLog{}).Where("payout_id = ?", payout.ID).Count(&logCount)
	if logCount != 1 {
		t.Fatalf("expected one audit log entry, got %d", logCount)
	}

	var txn models.Transaction
	if err := db.First(&txn, "user_id = ? AND type = ?", provider.ID, models.TxnTypePayout).Error; err != nil {
		t.Fatalf("expected a pending payout ledger entry: %v", err)
	}
	if txn.Status != models.TxnStatusPending {
		t.Fatalf("expected pending payout transaction, got %s", txn.Status)
	}
}

func TestRequestPayoutPendingFundsDoNotCount(t *testing.T) {
	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	account := verifiedBankAccount(t, db, provider.ID)

	// A large pending hold cannot back a new request; only spendable
	// balance counts.
	setWalletBalance(t, db, provider.ID, 300, 10000)

	if _, err := RequestPayout(db, provider.ID, account.ID, 600); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	wallet := getWallet(t, db, provider.ID)
	if wallet.Balance != 300 || wallet.PendingAmount != 10000 {
		t.Fatalf("failed request must not touch the wallet, got %d / %d", wallet.Balance, wallet.PendingAmount)
	}
}

func TestRequestPayoutBelowMinimum(t *testing.T) {
	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	account := verifiedBankAccount(t, db, provider.ID)
	setWalletBalance(t, db, provider.ID, 2000, 0)

	if _, err := RequestPayout(db, provider.ID, account.ID, 499); !errors.Is(err, ErrBelowMinimumPayout) {
		t.Fatalf("expected ErrBelowMinimumPayout, got %v", err)
	}
}

func TestRequestPayoutUnverifiedAccount(t *testing.T) {
	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	setWalletBalance(t, db, provider.ID, 2000, 0)

	account := models.BankAccount{
		ProviderID:         provider.ID,
		AccountHolderName:  "Test Provider",
		AccountNumber:      "123456789012",
		IFSCCode:           "HDFC0001234",
		BankName:           "HDFC Bank",
		VerificationStatus: models.BankVerificationPending,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("failed to create bank account: %v", err)
	}

	if _, err := RequestPayout(db, provider.ID, account.ID, 1000); !errors.Is(err, ErrBankAccountNotVerified) {
		t.Fatalf("expected ErrBankAccountNotVerified, got %v", err)
	}
}

func TestPayoutLifecycleToCompletion(t *testing.T) {
	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	admin := createUser(t, db, "admin@test.in", models.RoleSuperAdmin)
	account := verifiedBankAccount(t, db, provider.ID)
	setWalletBalance(t, db, provider.ID, 2000, 0)

	payout, err := RequestPayout(db, provider.ID, account.ID, 1000)
	if err != nil {
		t.Fatalf("RequestPayout returned error: %v", err)
	}

	approved, err := ApprovePayout(db, payout.ID, admin.ID)
	if err != nil {
		t.Fatalf("ApprovePayout returned error: %v", err)
	}
	// 2% transfer fee on 1000.
	if approved.ActualAmount == nil || *approved.ActualAmount != 980 {
		t.Fatalf("expected actual amount 980 after fee, got %v", approved.ActualAmount)
	}

	if _, err := MarkPayoutProcessing(db, payout.ID, admin.ID); err != nil {
		t.Fatalf("MarkPayoutProcessing returned error: %v", err)
	}
	completed, err := MarkPayoutCompleted(db, payout.ID, admin.ID)
	if err != nil {
		t.Fatalf("MarkPayoutCompleted returned error: %v", err)
	}
	if completed.Status != models.PayoutStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", completed.Status)
	}
	if completed.ProcessedAt == nil {
		t.Fatal("expected processed_at to be set")
	}

	wallet := getWallet(t, db, provider.ID)
	if wallet.Balance != 1000 || wallet.PendingAmount != 0 {
		t.Fatalf("expected balance 1000 / pending 0 after settlement, got %d / %d", wallet.Balance, wallet.PendingAmount)
	}

	var txn models.Transaction
	db.First(&txn, "user_id = ? AND type = ?", provider.ID, models.TxnTypePayout)
	if txn.Status != models.TxnStatusCompleted {
		t.Fatalf("expected payout transaction completed, got %s", txn.Status)
	}

	var logCount int64
	db.Model(&models.PayoutAuditLog{}).Where("payout_id = ?", payout.ID).Count(&logCount)
	if logCount != 4 {
		t.Fatalf("expected four audit log entries for the full lifecycle, got %d", logCount)
	}
}

func TestRejectPayoutReturnsFunds(t *testing.T) {
	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	admin := createUser(t, db, "admin@test.in", models.RoleSuperAdmin)
	account := verifiedBankAccount(t, db, provider.ID)
	setWalletBalance(t, db, provider.ID, 2000, 0)

	payout, err := RequestPayout(db, provider.ID, account.ID, 1000)
	if err != nil {
		t.Fatalf("RequestPayout returned error: %v", err)
	}

	if _, err := RejectPayout(db, payout.ID, admin.ID, ""); err == nil {
		t.Fatal("rejection without a reason must fail")
	}

	rejected, err := RejectPayout(db, payout.ID, admin.ID, "bank account name mismatch")
	if err != nil {
		t.Fatalf("RejectPayout returned error: %v", err)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "bank account name mismatch" {
		t.Fatal("expected the rejection reason to be recorded")
	}

	wallet := getWallet(t, db, provider.ID)
	if wallet.Balance != 2000 || wallet.PendingAmount != 0 {
		t.Fatalf("expected funds returned in full, got %d / %d", wallet.Balance, wallet.PendingAmount)
	}

	var txn models.Transaction
	db.First(&txn, "user_id = ? AND type = ?", provider.ID, models.TxnTypePayout)
	if txn.Status != models.TxnStatusCancelled {
		t.Fatalf("expected payout transaction cancelled, got %s", txn.Status)
	}
}

func TestMarkPayoutFailedReturnsFunds(t *testing.T) {
	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	admin := createUser(t, db, "admin@test.in", models.RoleSuperAdmin)
	account := verifiedBankAccount(t, db, provider.ID)
	setWalletBalance(t, db, provider.ID, 2000, 0)

	payout, err := RequestPayout(db, provider.ID, account.ID, 1000)
	if err != nil {
		t.Fatalf("RequestPayout returned error: %v", err)
	}
	if _, err := ApprovePayout(db, payout.ID, admin.ID); err != nil {
		t.Fatalf("ApprovePayout returned error: %v", err)
	}

	failed, err := MarkPayoutFailed(db, payout.ID, admin.ID, "bank rejected the transfer")
	if err != nil {
		t.Fatalf("MarkPayoutFailed returned error: %v", err)
	}
	if failed.Status != models.PayoutStatusFailed {
		t.Fatalf("expected FAILED, got %s", failed.Status)
	}

	wallet := getWallet(t, db, provider.ID)
	if wallet.Balance != 2000 || wallet.PendingAmount != 0 {
		t.Fatalf("expected funds returned after failure, got %d / %d", wallet.Balance, wallet.PendingAmount)
	}
}

func TestPayoutStateGuards(t *testing.T) {
	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	admin := createUser(t, db, "admin@test.in", models.RoleSuperAdmin)
	account := verifiedBankAccount(t, db, provider.ID)
	setWalletBalance(t, db, provider.ID, 2000, 0)

	payout, err := RequestPayout(db, provider.ID, account.ID, 1000)
	if err != nil {
		t.Fatalf("RequestPayout returned error: %v", err)
	}

	// REQUESTED cannot jump straight to PROCESSING or COMPLETED.
	if _, err := MarkPayoutProcessing(db, payout.ID, admin.ID); !errors.Is(err, ErrInvalidPayoutState) {
		t.Fatalf("expected ErrInvalidPayoutState, got %v", err)
	}
	if _, err := MarkPayoutCompleted(db, payout.ID, admin.ID); !errors.Is(err, ErrInvalidPayoutState) {
		t.Fatalf("expected ErrInvalidPayoutState, got %v", err)
	}

	if _, err := ApprovePayout(db, payout.ID, admin.ID); err != nil {
		t.Fatalf("ApprovePayout returned error: %v", err)
	}
	// An approved payout can no longer be approved or rejected.
	if _, err := ApprovePayout(db, payout.ID, admin.ID); !errors.Is(err, ErrInvalidPayoutState) {
		t.Fatalf("expected ErrInvalidPayoutState on double approval, got %v", err)
	}
	if _, err := RejectPayout(db, payout.ID, admin.ID, "too late"); !errors.Is(err, ErrInvalidPayoutState) {
		t.Fatalf("expected ErrInvalidPayoutState on post-approval rejection, got %v", err)
	}
}
