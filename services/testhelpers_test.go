package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Wallet{},
		&models.Provider{},
		&models.AvailabilitySlot{},
		&models.Booking{},
		&models.Transaction{},
		&models.Session{},
		&models.Dispute{},
		&models.Payout{},
		&models.PayoutAuditLog{},
		&models.BankAccount{},
		&models.UnmatchedRequest{},
		&models.Conversation{},
		&models.Message{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()

	user := models.User{
		Email:    email,
		Password: "hashed",
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	profile := models.Profile{UserID: user.ID, FullName: "Test User"}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to create profile for %s: %v", email, err)
	}
	wallet := models.Wallet{UserID: user.ID}
	if err := db.Create(&wallet).Error; err != nil {
		t.Fatalf("failed to create wallet for %s: %v", email, err)
	}
	return user
}

func setWalletBalance(t *testing.T, db *gorm.DB, userID uuid.UUID, balance, pending int64) {
	t.Helper()

	err := db.Model(&models.Wallet{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{"balance": balance, "pending_amount": pending}).Error
	if err != nil {
		t.Fatalf("failed to set wallet balance: %v", err)
	}
}

func getWallet(t *testing.T, db *gorm.DB, userID uuid.UUID) models.Wallet {
	t.Helper()

	var wallet models.Wallet
	if err := db.First(&wallet, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("failed to load wallet: %v", err)
	}
	return wallet
}

// createBookingWithPayment builds a booking in the given status with a
// gateway-correlated payment transaction attached.
func createBookingWithPayment(t *testing.T, db *gorm.DB, seeker, provider models.User, startTime time.Time, amount int64, bookingStatus, txnStatus, orderID string) models.Booking {
	t.Helper()

	slot := models.AvailabilitySlot{
		ProviderID: provider.ID,
		StartTime:  startTime,
		EndTime:    startTime.Add(time.Hour),
		Status:     models.SlotStatusBooked,
	}
	if err := db.Create(&slot).Error; err != nil {
		t.Fatalf("failed to create slot: %v", err)
	}

	booking := models.Booking{
		SeekerID:           seeker.ID,
		ProviderID:         provider.ID,
		AvailabilitySlotID: &slot.ID,
		StartTime:          startTime,
		EndTime:            startTime.Add(time.Hour),
		Amount:             amount,
		Status:             bookingStatus,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	txn := models.Transaction{
		UserID:         seeker.ID,
		BookingID:      &booking.ID,
		Amount:         amount,
		Type:           models.TxnTypeBookingPayment,
		Status:         txnStatus,
		GatewayOrderID: &orderID,
	}
	if err := db.Create(&txn).Error; err != nil {
		t.Fatalf("failed to create transaction: %v", err)
	}
	return booking
}

func successEvent(orderID string) WebhookEvent {
	var event WebhookEvent
	event.Type = EventPaymentSuccess
	event.Data.Order.OrderID = orderID
	event.Data.Payment.CfPaymentID = "cf_12345"
	return event
}

func verifiedBankAccount(t *testing.T, db *gorm.DB, providerID uuid.UUID) models.BankAccount {
	t.Helper()

	account := models.BankAccount{
		ProviderID:         providerID,
		AccountHolderName:  "Test Provider",
		AccountNumber:      "123456789012",
		IFSCCode:           "HDFC0001234",
		BankName:           "HDFC Bank",
		VerificationStatus: models.BankVerificationVerified,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("failed to create bank account: %v", err)
	}
	return account
}
