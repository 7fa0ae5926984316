package services

import (
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func openTestDispute(t *testing.T, db *gorm.DB, bookingID, initiatorID uuid.UUID) *models.Dispute {
	t.Helper()

	dispute, err := OpenDispute(db, bookingID, initiatorID, "provider never showed up to the call", nil)
	if err != nil {
		t.Fatalf("OpenDispute returned error: %v", err)
	}
	return dispute
}

func TestOpenDisputeOnlyForParties(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	stranger := createUser(t, db, "stranger@test.in", models.RoleSeeker)

	booking := createBookingWithPayment(t, db, seeker, provider, time.Now().Add(-2*time.Hour), 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")

	if _, err := OpenDispute(db, booking.ID, stranger.ID, "I want a refund too", nil); !errors.Is(err, ErrNotBookingParty) {
		t.Fatalf("expected ErrNotBookingParty, got %v", err)
	}

	dispute := openTestDispute(t, db, booking.ID, seeker.ID)
	if dispute.Status != models.DisputeStatusOpen {
		t.Fatalf("expected open dispute, got %s", dispute.Status)
	}

	var updated models.Booking
	db.First(&updated, "id = ?", booking.ID)
	if updated.Status != models.BookingStatusDisputed {
		t.Fatalf("expected booking DISPUTED, got %s", updated.Status)
	}
}

func TestOpenDisputeRejectsUnpaidBooking(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)

	booking := createBookingWithPayment(t, db, seeker, provider, time.Now().Add(24*time.Hour), 2700,
		models.BookingStatusPaymentPending, models.TxnStatusPending, "unpaid_order")

	if _, err := OpenDispute(db, booking.ID, seeker.ID, "never got to pay", nil); !errors.Is(err, ErrBookingNotDisputable) {
		t.Fatalf("expected ErrBookingNotDisputable, got %v", err)
	}
}

func TestResolveDisputePartialRefund(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	admin := createUser(t, db, "admin@test.in", models.RoleSuperAdmin)

	booking := createBookingWithPayment(t, db, seeker, provider, time.Now().Add(-2*time.Hour), 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")
	dispute := openTestDispute(t, db, booking.ID, seeker.ID)

	partial := int64(1000)
	resolved, err := ResolveDispute(db, dispute.ID, admin.ID, models.ResolutionPartialRefund, &partial, "session ran half its length")
	if err != nil {
		t.Fatalf("ResolveDispute returned error: %v", err)
	}
	if resolved.Status != models.DisputeStatusResolved {
		t.Fatalf("expected resolved dispute, got %s", resolved.Status)
	}
	if resolved.RefundedAmount == nil || *resolved.RefundedAmount != 1000 {
		t.Fatal("expected refunded amount 1000 recorded on the dispute")
	}

	seekerWallet := getWallet(t, db, seeker.ID)
	if seekerWallet.Balance != 1000 {
		t.Fatalf("expected seeker refunded 1000, got %d", seekerWallet.Balance)
	}

	// The provider keeps 1700 minus 20% commission.
	providerWallet := getWallet(t, db, provider.ID)
	if providerWallet.Balance != 1360 {
		t.Fatalf("expected provider settled 1360, got %d", providerWallet.Balance)
	}

	var commission models.Transaction
	if err := db.First(&commission, "booking_id = ? AND type = ?", booking.ID, models.TxnTypeCommission).Error; err != nil {
		t.Fatalf("expected commission entry: %v", err)
	}
	if commission.Amount != 340 {
		t.Fatalf("expected commission 340 on the retained 1700, got %d", commission.Amount)
	}

	var updated models.Booking
	db.First(&updated, "id = ?", booking.ID)
	if updated.Status != models.BookingStatusCompleted {
		t.Fatalf("partially refunded booking must end COMPLETED, got %s", updated.Status)
	}
}

func TestResolveDisputeFullRefund(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	admin := createUser(t, db, "admin@test.in", models.RoleSuperAdmin)

	booking := createBookingWithPayment(t, db, seeker, provider, time.Now().Add(-2*time.Hour), 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")
	dispute := openTestDispute(t, db, booking.ID, seeker.ID)

	if _, err := ResolveDispute(db, dispute.ID, admin.ID, models.ResolutionRefundSeeker, nil, "provider absent"); err != nil {
		t.Fatalf("ResolveDispute returned error: %v", err)
	}

	if got := getWallet(t, db, seeker.ID).Balance; got != 2700 {
		t.Fatalf("expected seeker fully refunded, got %d", got)
	}
	if got := getWallet(t, db, provider.ID).Balance; got != 0 {
		t.Fatalf("fully refunded booking must not pay the provider, got %d", got)
	}

	var commissionCount int64
	db.Model(&models.Transaction{}).
		Where("booking_id = ? AND type = ?", booking.ID, models.TxnTypeCommission).
		Count(&commissionCount)
	if commissionCount != 0 {
		t.Fatal("fully refunded booking must not record a commission")
	}

	var updated models.Booking
	db.First(&updated, "id = ?", booking.ID)
	if updated.Status != models.BookingStatusCancelled {
		t.Fatalf("fully refunded booking must end CANCELLED, got %s", updated.Status)
	}
}

func TestResolveDisputeIsOneShot(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	admin := createUser(t, db, "admin@test.in", models.RoleSuperAdmin)

	booking := createBookingWithPayment(t, db, seeker, provider, time.Now().Add(-2*time.Hour), 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")
	dispute := openTestDispute(t, db, booking.ID, seeker.ID)

	if _, err := ResolveDispute(db, dispute.ID, admin.ID, models.ResolutionFavorProvider, nil, "evidence supports the provider"); err != nil {
		t.Fatalf("first resolution failed: %v", err)
	}
	if _, err := ResolveDispute(db, dispute.ID, admin.ID, models.ResolutionRefundSeeker, nil, "changed my mind"); !errors.Is(err, ErrDisputeAlreadyResolved) {
		t.Fatalf("expected ErrDisputeAlreadyResolved, got %v", err)
	}

	// The one-shot rule means the seeker never saw a refund.
	if got := getWallet(t, db, seeker.ID).Balance; got != 0 {
		t.Fatalf("expected no refund after FAVOR_PROVIDER, got %d", got)
	}
}

func TestResolveDisputeValidatesPartialAmount(t *testing.T) {
	db := setupTestDB(t)
	seeker := createUser(t, db, "seeker@test.in", models.RoleSeeker)
	provider := createUser(t, db, "provider@test.in", models.RoleProvider)
	admin := createUser(t, db, "admin@test.in", models.RoleSuperAdmin)

	booking := createBookingWithPayment(t, db, seeker, provider, time.Now().Add(-2*time.Hour), 2700,
		models.BookingStatusConfirmed, models.TxnStatusCompleted, "paid_order")
	dispute := openTestDispute(t, db, booking.ID, seeker.ID)

	for _, bad := range []int64{0, -100, 2701, 99999} {
		amount := bad
		if _, err := ResolveDispute(db, dispute.ID, admin.ID, models.ResolutionPartialRefund, &amount, "note"); !errors.Is(err, ErrInvalidRefundAmount) {
			t.Fatalf("partial amount %d must be rejected, got %v", bad, err)
		}
	}
	if _, err := ResolveDispute(db, dispute.ID, admin.ID, models.ResolutionPartialRefund, nil, "note"); !errors.Is(err, ErrInvalidRefundAmount) {
		t.Fatal("missing partial amount must be rejected")
	}
}
