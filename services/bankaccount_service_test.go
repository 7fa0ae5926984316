package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anjiri1684/consult_marketplace/models"
)

func TestPennyTestVerificationSucceeds(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()
	t.Setenv("CASHFREE_BASE_URL", gateway.URL)

	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	staff := createUser(t, db, "staff@test.in", models.RoleEmployee)

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

	sent, err := SendPennyTest(db, account.ID, staff.ID)
	if err != nil {
		t.Fatalf("SendPennyTest returned error: %v", err)
	}
	if sent.VerificationStatus != models.BankVerificationPennyTestSent {
		t.Fatalf("expected PENNY_TEST_SENT, got %s", sent.VerificationStatus)
	}
	if sent.PennyAmount == nil || *sent.PennyAmount < 1 || *sent.PennyAmount > 99 {
		t.Fatalf("expected a penny amount between 1 and 99 paise, got %v", sent.PennyAmount)
	}

	verified, err := VerifyPennyAmount(db, account.ID, provider.ID, *sent.PennyAmount)
	if err != nil {
		t.Fatalf("VerifyPennyAmount returned error: %v", err)
	}
	if verified.VerificationStatus != models.BankVerificationVerified {
		t.Fatalf("expected VERIFIED, got %s", verified.VerificationStatus)
	}
	if verified.PennyAmount != nil {
		t.Fatal("expected the penny amount to be cleared after verification")
	}
}

func TestPennyTestCannotBeSentTwice(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()
	t.Setenv("CASHFREE_BASE_URL", gateway.URL)

	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	staff := createUser(t, db, "staff@test.in", models.RoleEmployee)

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

	if _, err := SendPennyTest(db, account.ID, staff.ID); err != nil {
		t.Fatalf("first penny test failed: %v", err)
	}
	if _, err := SendPennyTest(db, account.ID, staff.ID); !errors.Is(err, ErrPennyTestAlreadyPending) {
		t.Fatalf("expected ErrPennyTestAlreadyPending, got %v", err)
	}
}

func TestPennyTestAttemptsExhausted(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()
	t.Setenv("CASHFREE_BASE_URL", gateway.URL)

	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	staff := createUser(t, db, "staff@test.in", models.RoleEmployee)

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

	sent, err := SendPennyTest(db, account.ID, staff.ID)
	if err != nil {
		t.Fatalf("SendPennyTest returned error: %v", err)
	}
	// A wrong answer that can never collide with the real 1-99 range.
	wrong := *sent.PennyAmount + 100

	for attempt := 1; attempt <= 2; attempt++ {
		if _, err := VerifyPennyAmount(db, account.ID, provider.ID, wrong); !errors.Is(err, ErrPennyAmountMismatch) {
			t.Fatalf("attempt %d with a wrong amount must fail with ErrPennyAmountMismatch, got %v", attempt, err)
		}

		// The failed attempt must be on disk, not rolled back with the
		// error, or the cap is meaningless.
		var reloaded models.BankAccount
		db.First(&reloaded, "id = ?", account.ID)
		if reloaded.PennyTestAttempts != attempt {
			t.Fatalf("expected %d persisted attempt(s), got %d", attempt, reloaded.PennyTestAttempts)
		}
		if reloaded.VerificationStatus != models.BankVerificationPennyTestSent {
			t.Fatalf("account must stay PENNY_TEST_SENT before the cap, got %s", reloaded.VerificationStatus)
		}
	}

	// Third wrong attempt rejects the account outright.
	if _, err := VerifyPennyAmount(db, account.ID, provider.ID, wrong); !errors.Is(err, ErrPennyAttemptsExhausted) {
		t.Fatalf("expected ErrPennyAttemptsExhausted on the third failure, got %v", err)
	}

	var rejected models.BankAccount
	db.First(&rejected, "id = ?", account.ID)
	if rejected.VerificationStatus != models.BankVerificationRejected {
		t.Fatalf("expected REJECTED after three failures, got %s", rejected.VerificationStatus)
	}

	// A fourth submission is refused even with the right amount.
	if _, err := VerifyPennyAmount(db, account.ID, provider.ID, *sent.PennyAmount); !errors.Is(err, ErrPennyAttemptsExhausted) {
		t.Fatalf("expected the fourth submission refused, got %v", err)
	}
}

func TestVerifyPennyAmountRequiresPendingTest(t *testing.T) {
	db := setupTestDB(t)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)

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

	if _, err := VerifyPennyAmount(db, account.ID, provider.ID, 42); !errors.Is(err, ErrPennyTestNotSent) {
		t.Fatalf("expected ErrPennyTestNotSent, got %v", err)
	}
}
