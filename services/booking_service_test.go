package services

import (
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/consult_marketplace/models"
)

func TestCanTransitionBooking(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.BookingStatusPending, models.BookingStatusPaymentPending, true},
		{models.BookingStatusPending, models.BookingStatusConfirmed, true},
		{models.BookingStatusPending, models.BookingStatusCancelled, true},
		{models.BookingStatusPending, models.BookingStatusCompleted, false},
		{models.BookingStatusPaymentPending, models.BookingStatusConfirmed, true},
		{models.BookingStatusPaymentPending, models.BookingStatusCancelled, true},
		{models.BookingStatusPaymentPending, models.BookingStatusDisputed, false},
		{models.BookingStatusConfirmed, models.BookingStatusCompleted, true},
		{models.BookingStatusConfirmed, models.BookingStatusDisputed, true},
		{models.BookingStatusConfirmed, models.BookingStatusCancelled, true},
		{models.BookingStatusCompleted, models.BookingStatusDisputed, true},
		{models.BookingStatusCompleted, models.BookingStatusConfirmed, false},
		{models.BookingStatusDisputed, models.BookingStatusCancelled, true},
		{models.BookingStatusDisputed, models.BookingStatusCompleted, true},
		{models.BookingStatusCancelled, models.BookingStatusConfirmed, false},
		{models.BookingStatusCancelled, models.BookingStatusDisputed, false},
	}

	for _, tc := range cases {
		if got := CanTransitionBooking(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionBooking(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCommissionAmount(t *testing.T) {
	if got := CommissionAmount(2700); got != 540 {
		t.Fatalf("CommissionAmount(2700) = %d, want 540", got)
	}
	if got := CommissionAmount(0); got != 0 {
		t.Fatalf("CommissionAmount(0) = %d, want 0", got)
	}
}

func TestCancelBookingBySeekerRefunds(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)

	start := time.Now().Add(24 * time.Hour)
	booking := createBookingWithPayment(t, db, seeker, provider, start, 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")

	cancelled, err := CancelBookingBySeeker(db, booking.ID, seeker.ID)
	if err != nil {
		t.Fatalf("CancelBookingBySeeker returned error: %v", err)
	}
	if cancelled.Status != models.BookingStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	wallet := getWallet(t, db, seeker.ID)
	if wallet.Balance != 2700 {
		t.Fatalf("expected full refund of 2700 in wallet, got %d", wallet.Balance)
	}

	var refundCount int64
	db.Model(&models.Transaction{}).
		Where("booking_id = ? AND type = ? AND status = ?", booking.ID, models.TxnTypeRefund, models.TxnStatusCompleted).
		Count(&refundCount)
	if refundCount != 1 {
		t.Fatalf("expected one refund ledger entry, got %d", refundCount)
	}

	var slot models.AvailabilitySlot
	db.First(&slot, "provider_id = ?", provider.ID)
	if slot.Status != models.SlotStatusAvailable {
		t.Fatalf("expected the slot to be released, got %s", slot.Status)
	}
}

func TestCancelBookingBySeekerRejectsOutsiders(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	stranger := createUser(t, db, "stranger@test.in", models.RoleSeeker)

	start := time.Now().Add(24 * time.Hour)
	booking := createBookingWithPayment(t, db, seeker, provider, start, 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")

	if _, err := CancelBookingBySeeker(db, booking.ID, stranger.ID); !errors.Is(err, ErrNotBookingParty) {
		t.Fatalf("expected ErrNotBookingParty, got %v", err)
	}
}

func TestCancelConfirmedBookingAfterStart(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)

	// The session started half an hour ago; any money back now goes through
	// a dispute, not a cancel.
	start := time.Now().Add(-30 * time.Minute)
	booking := createBookingWithPayment(t, db, seeker, provider, start, 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")

	if _, err := CancelBookingBySeeker(db, booking.ID, seeker.ID); !errors.Is(err, ErrBookingAlreadyStarted) {
		t.Fatalf("expected ErrBookingAlreadyStarted, got %v", err)
	}

	wallet := getWallet(t, db, seeker.ID)
	if wallet.Balance != 0 {
		t.Fatalf("a started booking must not refund, wallet has %d", wallet.Balance)
	}

	var updated models.Booking
	db.First(&updated, "id = ?", booking.ID)
	if updated.Status != models.BookingStatusConfirmed {
		t.Fatalf("expected booking untouched, got %s", updated.Status)
	}
}

func TestCancelUnpaidBookingRefundsNothing(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)

	start := time.Now().Add(24 * time.Hour)
	booking := createBookingWithPayment(t, db, seeker, provider, start, 2700,
		models.BookingStatusPaymentPending, models.TxnStatusPending, "unpaid_order")

	if _, err := CancelBookingBySeeker(db, booking.ID, seeker.ID); err != nil {
		t.Fatalf("CancelBookingBySeeker returned error: %v", err)
	}

	wallet := getWallet(t, db, seeker.ID)
	if wallet.Balance != 0 {
		t.Fatalf("unpaid booking must not refund anything, wallet has %d", wallet.Balance)
	}

	var txn models.Transaction
	db.First(&txn, "gateway_order_id = ?", "unpaid_order")
	if txn.Status != models.TxnStatusCancelled {
		t.Fatalf("expected pending payment attempt cancelled, got %s", txn.Status)
	}
}

func TestCompleteBookingSettlesProviderEarnings(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)

	start := time.Now().Add(-2 * time.Hour)
	booking := createBookingWithPayment(t, db, seeker, provider, start, 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")

	completed, err := CompleteBooking(db, booking.ID)
	if err != nil {
		t.Fatalf("CompleteBooking returned error: %v", err)
	}
	if completed.Status != models.BookingStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", completed.Status)
	}

	// 20% commission on 2700 leaves the provider 2160.
	wallet := getWallet(t, db, provider.ID)
	if wallet.Balance != 2160 {
		t.Fatalf("expected provider earnings 2160, got %d", wallet.Balance)
	}

	var commission models.Transaction
	if err := db.First(&commission, "booking_id = ? AND type = ?", booking.ID, models.TxnTypeCommission).Error; err != nil {
		t.Fatalf("expected a commission ledger entry: %v", err)
	}
	if commission.Amount != 540 {
		t.Fatalf("expected commission 540, got %d", commission.Amount)
	}

	if _, err := CompleteBooking(db, booking.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completing twice must fail with ErrInvalidTransition, got %v", err)
	}
}

func TestRefundableAmountNeverNegative(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)

	start := time.Now().Add(24 * time.Hour)
	booking := createBookingWithPayment(t, db, seeker, provider, start, 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")

	refund := models.Transaction{
		UserID:    seeker.ID,
		BookingID: &booking.ID,
		Amount:    3000,
		Type:      models.TxnTypeRefund,
		Status:    models.TxnStatusCompleted,
	}
	if err := db.Create(&refund).Error; err != nil {
		t.Fatalf("failed to create refund row: %v", err)
	}

	got, err := RefundableAmount(db, booking.ID)
	if err != nil {
		t.Fatalf("RefundableAmount returned error: %v", err)
	}
	if got != 0 {
		t.Fatalf("over-refunded booking must report 0 refundable, got %d", got)
	}
}

func TestExpireUnpaidBookingRejectsConfirmed(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)

	start := time.Now().Add(24 * time.Hour)
	booking := createBookingWithPayment(t, db, seeker, provider, start, 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")

	if err := ExpireUnpaidBooking(db, &booking); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for confirmed booking, got %v", err)
	}
}

func TestDeleteUserCascade(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)

	start := time.Now().Add(24 * time.Hour)
	booking := createBookingWithPayment(t, db, seeker, provider, start, 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")

	session := models.Session{BookingID: booking.ID, ChatExpiresAt: start.Add(73 * time.Hour)}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if err := DeleteUserCascade(db, provider.ID); err != nil {
		t.Fatalf("DeleteUserCascade returned error: %v", err)
	}

	// The seeker paid for a session that will never happen; the cascade
	// refunds them before the booking disappears.
	wallet := getWallet(t, db, seeker.ID)
	if wallet.Balance != 2700 {
		t.Fatalf("expected the seeker refunded 2700, got %d", wallet.Balance)
	}

	// The credit keeps its ledger row even though every booking-scoped
	// transaction is gone with the booking.
	var refund models.Transaction
	if err := db.First(&refund, "user_id = ? AND type = ?", seeker.ID, models.TxnTypeRefund).Error; err != nil {
		t.Fatalf("expected the refund ledger entry to survive the cascade: %v", err)
	}
	if refund.Status != models.TxnStatusCompleted {
		t.Fatalf("expected a completed refund entry, got %s", refund.Status)
	}

	var userCount, bookingCount, sessionCount, walletCount int64
	db.Model(&models.User{}).Where("id = ?", provider.ID).Count(&userCount)
	db.Model(&models.Booking{}).Where("id = ?", booking.ID).Count(&bookingCount)
	db.Model(&models.Session{}).Where("booking_id = ?", booking.ID).Count(&sessionCount)
	db.Model(&models.Wallet{}).Where("user_id = ?", provider.ID).Count(&walletCount)
	if userCount != 0 || bookingCount != 0 || sessionCount != 0 || walletCount != 0 {
		t.Fatalf("expected all provider rows removed, got user=%d booking=%d session=%d wallet=%d",
			userCount, bookingCount, sessionCount, walletCount)
	}
}
